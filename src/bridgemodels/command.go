package bridgemodels

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CommandStatus string

const (
	CommandStatusDispatched CommandStatus = "DISPATCHED"
	CommandStatusAccepted   CommandStatus = "ACCEPTED"
	CommandStatusPartial    CommandStatus = "PARTIAL"
	CommandStatusFilled     CommandStatus = "FILLED"
	CommandStatusRejected   CommandStatus = "REJECTED"
	CommandStatusFailed     CommandStatus = "FAILED"
)

func (s CommandStatus) Validate() error {
	switch s {
	case CommandStatusDispatched, CommandStatusAccepted, CommandStatusPartial, CommandStatusFilled, CommandStatusRejected, CommandStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid command status: %s", s)
	}
}

func (s CommandStatus) IsTerminal() bool {
	return s == CommandStatusFilled || s == CommandStatusRejected || s == CommandStatusFailed
}

// commandTransitions is the allowed execution state machine:
// DISPATCHED -> ACCEPTED -> PARTIAL -> {FILLED | FAILED}, with a direct
// ACCEPTED -> REJECTED edge. FILLED is unreachable without PARTIAL.
var commandTransitions = map[CommandStatus][]CommandStatus{
	CommandStatusDispatched: {CommandStatusAccepted},
	CommandStatusAccepted:   {CommandStatusPartial, CommandStatusRejected},
	CommandStatusPartial:    {CommandStatusFilled, CommandStatusFailed},
}

func (s CommandStatus) CanTransitionTo(next CommandStatus) bool {
	for _, allowed := range commandTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

type LegAction string

const (
	LegActionBuyToClose LegAction = "buy_to_close"
	LegActionSellToOpen LegAction = "sell_to_open"
)

func (a LegAction) Validate() error {
	if a != LegActionBuyToClose && a != LegActionSellToOpen {
		return fmt.Errorf("invalid leg action: %s", a)
	}

	return nil
}

// CommandLeg is one side of a roll: the contract being closed or the
// contract replacing it.
type CommandLeg struct {
	Ticker     StockSymbol
	Strike     float64
	OptionType OptionType
	Expiration time.Time
	Quantity   float64
	Action     LegAction
}

func (l CommandLeg) Validate() error {
	if l.Ticker == "" {
		return fmt.Errorf("missing ticker")
	}

	if l.Strike <= 0 {
		return fmt.Errorf("strike must be greater than 0")
	}

	if err := l.OptionType.Validate(); err != nil {
		return err
	}

	if l.Expiration.IsZero() {
		return fmt.Errorf("missing expiration")
	}

	if l.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}

	return l.Action.Validate()
}

type CommandType string

const CommandTypeRoll CommandType = "roll"

// RollCommand is a two-leg roll order dispatched to a terminal agent. It is
// immutable once created, except for its status and delivery flag.
type RollCommand struct {
	ID            uuid.UUID
	Type          CommandType
	TerminalID    string
	AccountNumber string
	CloseLeg      CommandLeg
	OpenLeg       CommandLeg
	Status        CommandStatus
	Delivered     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
