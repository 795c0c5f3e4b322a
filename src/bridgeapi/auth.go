package bridgeapi

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Config is the bridge guard configuration. When Enabled is false every
// bridge route answers 403 before reading the payload; otherwise a bearer
// token is required and, if AllowedIPs is non-empty, the caller's address
// must match one of its entries.
type Config struct {
	Enabled    bool
	Token      string
	AllowedIPs []string
}

// clientIP extracts the caller address, preferring the first hop of
// X-Forwarded-For when a proxy fronts the service.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func (c Config) authorized(r *http.Request) error {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if c.Token == "" || token != c.Token {
		return fmt.Errorf("invalid bearer token")
	}

	if len(c.AllowedIPs) > 0 {
		ip := clientIP(r)

		found := false
		for _, allowed := range c.AllowedIPs {
			if ip == allowed {
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("address %s is not allowed", ip)
		}
	}

	return nil
}

// denyUnauthorized writes the appropriate refusal and reports whether the
// request was denied. Authorization runs before any payload parsing so a
// disabled or unauthenticated bridge never touches request bodies.
func (h *Handler) denyUnauthorized(w http.ResponseWriter, r *http.Request) bool {
	if !h.config.Enabled {
		setErrorResponse("bridge disabled", http.StatusForbidden, fmt.Errorf("mt5 bridge is disabled"), w)
		return true
	}

	if err := h.config.authorized(r); err != nil {
		log.Warnf("bridgeapi: unauthorized request to %s from %s: %v", r.URL.Path, clientIP(r), err)
		setErrorResponse("unauthorized", http.StatusUnauthorized, err, w)
		return true
	}

	return false
}
