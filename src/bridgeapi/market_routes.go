package bridgeapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/marketdata"
)

func (h *Handler) marketQuote(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	vars := mux.Vars(r)
	ticker := bridgemodels.StockSymbol(vars["ticker"])

	quote, err := h.provider.GetQuote(ticker)
	if err != nil {
		var unavailable *marketdata.UnavailableError
		if errors.As(err, &unavailable) {
			setErrorResponse("marketQuote: no data", http.StatusServiceUnavailable, err, w)
			return
		}

		setErrorResponse("marketQuote: failed to fetch quote", http.StatusInternalServerError, err, w)
		return
	}

	if err := setResponse(quote, http.StatusOK, w); err != nil {
		setErrorResponse("marketQuote: failed to set response", http.StatusInternalServerError, err, w)
	}
}

type marketOptionQuoteRequest struct {
	Strike     float64 `schema:"strike,required"`
	Type       string  `schema:"type,required"`
	Expiration string  `schema:"expiration,required"`
}

func (h *Handler) marketOptionQuote(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	vars := mux.Vars(r)
	ticker := bridgemodels.StockSymbol(vars["ticker"])

	var req marketOptionQuoteRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("marketOptionQuote: failed to decode query", http.StatusBadRequest, err, w)
		return
	}

	optionType := bridgemodels.OptionType(req.Type)
	if err := optionType.Validate(); err != nil {
		setErrorResponse("marketOptionQuote: invalid request", http.StatusBadRequest, err, w)
		return
	}

	expiration, err := time.Parse("2006-01-02", req.Expiration)
	if err != nil {
		setErrorResponse("marketOptionQuote: invalid expiration", http.StatusBadRequest, err, w)
		return
	}

	quote, err := h.provider.GetOptionQuote(ticker, req.Strike, expiration, optionType)
	if err != nil {
		var unavailable *marketdata.UnavailableError
		if errors.As(err, &unavailable) {
			setErrorResponse("marketOptionQuote: no data", http.StatusServiceUnavailable, err, w)
			return
		}

		setErrorResponse("marketOptionQuote: failed to fetch quote", http.StatusInternalServerError, err, w)
		return
	}

	if err := setResponse(quote, http.StatusOK, w); err != nil {
		setErrorResponse("marketOptionQuote: failed to set response", http.StatusInternalServerError, err, w)
	}
}

type marketHealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

func (h *Handler) marketHealth(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	response := marketHealthResponse{
		Status:   "ok",
		Provider: h.provider.Name(),
	}

	statusCode := http.StatusOK
	if !h.provider.HealthCheck() {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	if err := setResponse(response, statusCode, w); err != nil {
		setErrorResponse("marketHealth: failed to set response", http.StatusInternalServerError, err, w)
	}
}
