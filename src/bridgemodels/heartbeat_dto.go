package bridgemodels

type HeartbeatDTO struct {
	TerminalID    string `json:"terminal_id"`
	AccountNumber string `json:"account_number"`
	Broker        string `json:"broker"`
	Build         string `json:"build"`
	Timestamp     string `json:"timestamp"`
}

type StatusOKResponse struct {
	Status string `json:"status"`
}

func NewStatusOKResponse() StatusOKResponse {
	return StatusOKResponse{Status: "ok"}
}
