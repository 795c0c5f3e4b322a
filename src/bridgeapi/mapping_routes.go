package bridgeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/mappingregistry"
)

type MappingDTO struct {
	MT5Symbol  string   `json:"mt5_symbol"`
	Ticker     string   `json:"ticker"`
	AssetType  string   `json:"asset_type"`
	Strike     *float64 `json:"strike"`
	OptionType *string  `json:"type"`
	Expiration *string  `json:"expiration"`
	Source     string   `json:"source"`
}

func NewMappingDTO(record *mappingregistry.SymbolMappingRecord) MappingDTO {
	dto := MappingDTO{
		MT5Symbol: record.MT5Symbol,
		Ticker:    record.Ticker,
		AssetType: record.AssetType,
		Strike:    record.Strike,
		Source:    record.Source,
	}

	if record.OptionType != nil {
		optionType := *record.OptionType
		dto.OptionType = &optionType
	}

	if record.Expiration != nil {
		expiration := record.Expiration.Format("2006-01-02")
		dto.Expiration = &expiration
	}

	return dto
}

type RegisterMappingRequest struct {
	MT5Symbol  string  `json:"mt5_symbol"`
	Ticker     string  `json:"ticker"`
	Strike     float64 `json:"strike"`
	Type       string  `json:"type"`
	Expiration string  `json:"expiration"`
}

func (h *Handler) registerMapping(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var req RegisterMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("registerMapping: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	if req.MT5Symbol == "" || req.Ticker == "" {
		setErrorResponse("registerMapping: invalid request", http.StatusBadRequest, fmt.Errorf("mt5_symbol and ticker are required"), w)
		return
	}

	if req.Strike <= 0 {
		setErrorResponse("registerMapping: invalid request", http.StatusBadRequest, fmt.Errorf("strike must be greater than 0"), w)
		return
	}

	optionType := bridgemodels.OptionType(req.Type)
	if err := optionType.Validate(); err != nil {
		setErrorResponse("registerMapping: invalid request", http.StatusBadRequest, err, w)
		return
	}

	expiration, err := time.Parse("2006-01-02", req.Expiration)
	if err != nil {
		setErrorResponse("registerMapping: invalid expiration", http.StatusBadRequest, err, w)
		return
	}

	components := &bridgemodels.MT5SymbolComponents{
		Symbol:      bridgemodels.MT5Symbol(req.MT5Symbol),
		Underlying:  bridgemodels.StockSymbol(req.Ticker),
		StrikePrice: req.Strike,
		OptionType:  optionType,
		Month:       int(expiration.Month()),
		Expiration:  expiration,
	}

	if err := h.registry.Register(components); err != nil {
		setErrorResponse("registerMapping: failed to register mapping", http.StatusInternalServerError, err, w)
		return
	}

	record, err := h.registry.Lookup(components.Symbol)
	if err != nil || record == nil {
		setErrorResponse("registerMapping: failed to read back mapping", http.StatusInternalServerError, err, w)
		return
	}

	if err := setResponse(NewMappingDTO(record), http.StatusCreated, w); err != nil {
		setErrorResponse("registerMapping: failed to set response", http.StatusInternalServerError, err, w)
	}
}

func (h *Handler) lookupMapping(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	vars := mux.Vars(r)
	symbol := vars["symbol"]

	record, err := h.registry.Lookup(bridgemodels.MT5Symbol(symbol))
	if err != nil {
		setErrorResponse("lookupMapping: failed to look up mapping", http.StatusInternalServerError, err, w)
		return
	}

	if record == nil {
		setErrorResponse("lookupMapping: not found", http.StatusNotFound, fmt.Errorf("no mapping for %s", symbol), w)
		return
	}

	if err := setResponse(NewMappingDTO(record), http.StatusOK, w); err != nil {
		setErrorResponse("lookupMapping: failed to set response", http.StatusInternalServerError, err, w)
	}
}
