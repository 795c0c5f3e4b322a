package bridgemodels

import "time"

// Heartbeat records the last known liveness of a terminal agent.
type Heartbeat struct {
	TerminalID    string
	AccountNumber string
	Broker        string
	Build         string
	Timestamp     time.Time
	UpdatedAt     time.Time
}
