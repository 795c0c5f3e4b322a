package agent

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// DiscoverOptionSymbols scans the terminal's market watch once at startup
// and returns option symbols whose ticker base matches one of the agent's
// configured underlyings, capped at limit. Discovery is startup-only; a
// restart picks up newly listed series.
func DiscoverOptionSymbols(terminal Terminal, codec *bridgemodels.Codec, underlyings []string, limit int) ([]string, error) {
	names, err := terminal.SymbolNames()
	if err != nil {
		return nil, err
	}

	roots := make(map[string]bool, len(underlyings))
	for _, symbol := range underlyings {
		base := tickerBaseOf(symbol)
		if base != "" {
			roots[base] = true
		}
	}

	var discovered []string
	for _, name := range names {
		if len(discovered) >= limit {
			log.Warnf("DiscoverOptionSymbols: hit discovery limit of %d symbols", limit)
			break
		}

		components, err := codec.Decode(bridgemodels.MT5Symbol(name))
		if err != nil {
			continue
		}

		if !roots[tickerBaseOf(string(components.Underlying))] {
			continue
		}

		discovered = append(discovered, strings.ToUpper(name))
	}

	return discovered, nil
}

func tickerBaseOf(symbol string) string {
	t := strings.ToUpper(strings.TrimSpace(symbol))

	j := len(t)
	for j > 0 && t[j-1] >= '0' && t[j-1] <= '9' {
		j--
	}

	return t[:j]
}
