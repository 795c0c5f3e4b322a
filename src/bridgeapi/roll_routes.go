package bridgeapi

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

type ExecuteRollRequest struct {
	TerminalID    string                     `json:"terminal_id"`
	AccountNumber string                     `json:"account_number"`
	CloseLeg      bridgemodels.CommandLegDTO `json:"close_leg"`
	OpenLeg       bridgemodels.CommandLegDTO `json:"open_leg"`
}

type ExecuteRollResponse struct {
	CommandID string `json:"command_id"`
	Status    string `json:"status"`
}

// executeRoll dispatches a two-leg roll to a terminal. The command is
// queued here; execution happens asynchronously when the agent polls.
func (h *Handler) executeRoll(w http.ResponseWriter, r *http.Request) {
	if h.denyUnauthorized(w, r) {
		return
	}

	var req ExecuteRollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("executeRoll: failed to decode request", http.StatusBadRequest, err, w)
		return
	}

	closeLeg, err := req.CloseLeg.ToCommandLeg()
	if err != nil {
		setErrorResponse("executeRoll: invalid close leg", http.StatusBadRequest, err, w)
		return
	}

	openLeg, err := req.OpenLeg.ToCommandLeg()
	if err != nil {
		setErrorResponse("executeRoll: invalid open leg", http.StatusBadRequest, err, w)
		return
	}

	cmd, err := h.queue.Create(req.TerminalID, req.AccountNumber, closeLeg, openLeg)
	if err != nil {
		setErrorResponse("executeRoll: failed to queue command", http.StatusBadRequest, err, w)
		return
	}

	log.Infof("executeRoll: queued command %s for terminal %s", cmd.ID, cmd.TerminalID)

	response := ExecuteRollResponse{
		CommandID: cmd.ID.String(),
		Status:    string(cmd.Status),
	}

	if err := setResponse(response, http.StatusCreated, w); err != nil {
		setErrorResponse("executeRoll: failed to set response", http.StatusInternalServerError, err, w)
	}
}
