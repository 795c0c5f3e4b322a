package commandqueue

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

type LegRecord struct {
	Ticker     string    `gorm:"type:text;not null"`
	Strike     float64   `gorm:"type:numeric;not null"`
	OptionType string    `gorm:"type:text;not null"`
	Expiration time.Time `gorm:"type:date;not null"`
	Quantity   float64   `gorm:"type:numeric;not null"`
	Action     string    `gorm:"type:text;not null"`
}

// CommandRecord is the durable audit row for a dispatched command. The live
// queue is in-memory; records exist so operators can inspect outcomes,
// including stuck and partially-rolled commands.
type CommandRecord struct {
	gorm.Model
	CommandID     uuid.UUID `gorm:"column:command_id;type:uuid;uniqueIndex;not null"`
	CommandType   string    `gorm:"column:command_type;type:text;not null"`
	TerminalID    string    `gorm:"column:terminal_id;type:text;not null"`
	AccountNumber string    `gorm:"column:account_number;type:text;not null"`
	Status        string    `gorm:"column:status;type:text;not null"`
	Delivered     bool      `gorm:"column:delivered;not null"`
	CloseLeg      LegRecord `gorm:"embedded;embeddedPrefix:close_"`
	OpenLeg       LegRecord `gorm:"embedded;embeddedPrefix:open_"`
}

type ExecutionReportRecord struct {
	gorm.Model
	CommandID  uuid.UUID `gorm:"column:command_id;type:uuid;index;not null"`
	Status     string    `gorm:"column:status;type:text;not null"`
	OrderID    string    `gorm:"column:order_id;type:text"`
	FilledQty  float64   `gorm:"column:filled_qty;type:numeric"`
	AvgPrice   float64   `gorm:"column:avg_price;type:numeric"`
	Message    string    `gorm:"column:message;type:text"`
	ReportedAt time.Time `gorm:"column:reported_at;type:timestamp;not null"`
}

func newLegRecord(leg bridgemodels.CommandLeg) LegRecord {
	return LegRecord{
		Ticker:     string(leg.Ticker),
		Strike:     leg.Strike,
		OptionType: string(leg.OptionType),
		Expiration: leg.Expiration,
		Quantity:   leg.Quantity,
		Action:     string(leg.Action),
	}
}

func NewCommandRecord(cmd *bridgemodels.RollCommand) *CommandRecord {
	return &CommandRecord{
		CommandID:     cmd.ID,
		CommandType:   string(cmd.Type),
		TerminalID:    cmd.TerminalID,
		AccountNumber: cmd.AccountNumber,
		Status:        string(cmd.Status),
		Delivered:     cmd.Delivered,
		CloseLeg:      newLegRecord(cmd.CloseLeg),
		OpenLeg:       newLegRecord(cmd.OpenLeg),
	}
}

func NewExecutionReportRecord(report *bridgemodels.ExecutionReport) *ExecutionReportRecord {
	return &ExecutionReportRecord{
		CommandID:  report.CommandID,
		Status:     string(report.Status),
		OrderID:    report.OrderID,
		FilledQty:  report.FilledQty,
		AvgPrice:   report.AvgPrice,
		Message:    report.Message,
		ReportedAt: report.Timestamp,
	}
}
