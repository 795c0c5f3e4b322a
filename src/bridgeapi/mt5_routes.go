package bridgeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/utils"
)

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var dto bridgemodels.HeartbeatDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		setErrorResponse("heartbeat: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	if dto.TerminalID == "" || dto.AccountNumber == "" {
		setErrorResponse("heartbeat: invalid request", http.StatusBadRequest, fmt.Errorf("terminal_id and account_number are required"), w)
		return
	}

	now := h.nowFn().UTC()

	h.store.UpsertHeartbeat(bridgemodels.Heartbeat{
		TerminalID:    dto.TerminalID,
		AccountNumber: dto.AccountNumber,
		Broker:        dto.Broker,
		Build:         dto.Build,
		Timestamp:     utils.ParseTimestamp(dto.Timestamp, now),
	})

	if err := setResponse(bridgemodels.NewStatusOKResponse(), http.StatusOK, w); err != nil {
		setErrorResponse("heartbeat: failed to set response", http.StatusInternalServerError, err, w)
	}
}

func (h *Handler) ingestQuotes(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var req bridgemodels.QuotesIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("ingestQuotes: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	if req.TerminalID == "" || req.AccountNumber == "" {
		setErrorResponse("ingestQuotes: invalid request", http.StatusBadRequest, fmt.Errorf("terminal_id and account_number are required"), w)
		return
	}

	now := h.nowFn().UTC()

	accepted := 0
	for _, dto := range req.Quotes {
		// Readers look up by the normalized symbol, so writes must match
		symbol := strings.ToUpper(strings.TrimSpace(dto.Symbol))
		if symbol == "" {
			continue
		}

		h.store.PutEquityQuote(bridgemodels.EquityQuote{
			Symbol:        bridgemodels.StockSymbol(symbol),
			Bid:           dto.Bid,
			Ask:           dto.Ask,
			Last:          dto.Last,
			Volume:        dto.Volume,
			TerminalID:    req.TerminalID,
			AccountNumber: req.AccountNumber,
			Timestamp:     utils.ParseTimestamp(dto.Timestamp, now),
		})

		accepted++
	}

	response := bridgemodels.QuotesIngestResponse{Accepted: accepted}

	if err := setResponse(response, http.StatusAccepted, w); err != nil {
		setErrorResponse("ingestQuotes: failed to set response", http.StatusInternalServerError, err, w)
	}
}

// ingestOptionQuotes resolves each batch element independently: a symbol
// that fails to resolve yields a mapping error for that element and never
// rejects the batch.
func (h *Handler) ingestOptionQuotes(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var req bridgemodels.OptionQuotesIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("ingestOptionQuotes: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	if req.TerminalID == "" || req.AccountNumber == "" {
		setErrorResponse("ingestOptionQuotes: invalid request", http.StatusBadRequest, fmt.Errorf("terminal_id and account_number are required"), w)
		return
	}

	now := h.nowFn().UTC()

	accepted := 0
	mappingErrors := make([]bridgemodels.MappingErrorDTO, 0)

	for i, dto := range req.OptionQuotes {
		components, err := h.registry.Resolve(bridgemodels.MT5Symbol(dto.MT5Symbol))
		if err != nil {
			log.Warnf("ingestOptionQuotes: failed to resolve %s: %v", dto.MT5Symbol, err)

			mappingErrors = append(mappingErrors, bridgemodels.MappingErrorDTO{
				Index:  i,
				Symbol: dto.MT5Symbol,
				Error:  err.Error(),
			})

			continue
		}

		h.store.PutOptionQuote(bridgemodels.OptionQuote{
			Key:           bridgemodels.NewOptionKey(components.Underlying, components.StrikePrice, components.OptionType, components.Expiration),
			Symbol:        components.Symbol,
			Bid:           dto.Bid,
			Ask:           dto.Ask,
			Last:          dto.Last,
			Volume:        dto.Volume,
			TerminalID:    req.TerminalID,
			AccountNumber: req.AccountNumber,
			Timestamp:     utils.ParseTimestamp(dto.Timestamp, now),
		})

		accepted++
	}

	response := bridgemodels.OptionQuotesIngestResponse{
		Accepted:      accepted,
		Total:         len(req.OptionQuotes),
		MappingErrors: mappingErrors,
	}

	if err := setResponse(response, http.StatusAccepted, w); err != nil {
		setErrorResponse("ingestOptionQuotes: failed to set response", http.StatusInternalServerError, err, w)
	}
}

func (h *Handler) pollCommands(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var req bridgemodels.PollCommandsRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("pollCommands: failed to decode query", http.StatusBadRequest, err, w)
		return
	}

	pending := h.queue.PollPending(req.TerminalID, req.AccountNumber)

	response := bridgemodels.PollCommandsResponse{
		Commands: make([]bridgemodels.CommandDTO, 0, len(pending)),
	}

	for _, cmd := range pending {
		response.Commands = append(response.Commands, bridgemodels.NewCommandDTO(cmd))
	}

	if err := setResponse(response, http.StatusOK, w); err != nil {
		setErrorResponse("pollCommands: failed to set response", http.StatusInternalServerError, err, w)
	}
}

func (h *Handler) executionReport(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var dto bridgemodels.ExecutionReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		setErrorResponse("executionReport: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	report, err := dto.ToExecutionReport(h.nowFn().UTC())
	if err != nil {
		setErrorResponse("executionReport: invalid report", http.StatusBadRequest, err, w)
		return
	}

	h.queue.ApplyReport(report)

	if err := setResponse(bridgemodels.NewStatusOKResponse(), http.StatusOK, w); err != nil {
		setErrorResponse("executionReport: failed to set response", http.StatusInternalServerError, err, w)
	}
}
