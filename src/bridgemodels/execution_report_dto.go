package bridgemodels

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ExecutionReportDTO struct {
	CommandID string  `json:"command_id"`
	Status    string  `json:"status"`
	OrderID   string  `json:"order_id"`
	FilledQty float64 `json:"filled_qty"`
	AvgPrice  float64 `json:"avg_price"`
	Timestamp string  `json:"ts"`
	Message   string  `json:"message"`
}

func (dto ExecutionReportDTO) ToExecutionReport(fallbackTime time.Time) (*ExecutionReport, error) {
	commandID, err := uuid.Parse(dto.CommandID)
	if err != nil {
		return nil, fmt.Errorf("ExecutionReportDTO.ToExecutionReport: invalid command id %q: %w", dto.CommandID, err)
	}

	status := CommandStatus(dto.Status)
	if err := status.Validate(); err != nil {
		return nil, fmt.Errorf("ExecutionReportDTO.ToExecutionReport: %w", err)
	}

	timestamp := fallbackTime
	if ts, parseErr := time.Parse(time.RFC3339, dto.Timestamp); parseErr == nil {
		timestamp = ts.UTC()
	}

	return &ExecutionReport{
		CommandID: commandID,
		Status:    status,
		OrderID:   dto.OrderID,
		FilledQty: dto.FilledQty,
		AvgPrice:  dto.AvgPrice,
		Message:   dto.Message,
		Timestamp: timestamp,
	}, nil
}

func NewExecutionReportDTO(report *ExecutionReport) ExecutionReportDTO {
	return ExecutionReportDTO{
		CommandID: report.CommandID.String(),
		Status:    string(report.Status),
		OrderID:   report.OrderID,
		FilledQty: report.FilledQty,
		AvgPrice:  report.AvgPrice,
		Timestamp: report.Timestamp.Format(time.RFC3339),
		Message:   report.Message,
	}
}
