package bridgemodels

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionReport is a status transition reported by the terminal agent for
// a dispatched command. Delivery is at-least-once: duplicates and reports
// for unknown or already-terminal commands are expected and ignored.
type ExecutionReport struct {
	CommandID uuid.UUID
	Status    CommandStatus
	OrderID   string
	FilledQty float64
	AvgPrice  float64
	Message   string
	Timestamp time.Time
}
