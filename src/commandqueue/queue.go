package commandqueue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/eventpubsub"
)

// Queue holds dispatched roll commands for the terminal to poll. The live
// state is in memory; an optional Store mirrors every change for audit.
type Queue struct {
	mutex    sync.Mutex
	commands map[uuid.UUID]*bridgemodels.RollCommand
	order    []uuid.UUID

	store Store
	nowFn func() time.Time
}

func NewQueue(store Store) *Queue {
	return &Queue{
		commands: make(map[uuid.UUID]*bridgemodels.RollCommand),
		store:    store,
		nowFn:    time.Now,
	}
}

// SetNowFn overrides the clock. Test hook.
func (q *Queue) SetNowFn(nowFn func() time.Time) {
	q.nowFn = nowFn
}

// Create validates and enqueues a new roll command in DISPATCHED state.
func (q *Queue) Create(terminalID, accountNumber string, closeLeg, openLeg bridgemodels.CommandLeg) (*bridgemodels.RollCommand, error) {
	if terminalID == "" {
		return nil, fmt.Errorf("Queue.Create: terminal id is required")
	}

	if accountNumber == "" {
		return nil, fmt.Errorf("Queue.Create: account number is required")
	}

	if err := closeLeg.Validate(); err != nil {
		return nil, fmt.Errorf("Queue.Create: invalid close leg: %w", err)
	}

	if err := openLeg.Validate(); err != nil {
		return nil, fmt.Errorf("Queue.Create: invalid open leg: %w", err)
	}

	if closeLeg.Action != bridgemodels.LegActionBuyToClose {
		return nil, fmt.Errorf("Queue.Create: close leg action must be %s", bridgemodels.LegActionBuyToClose)
	}

	if openLeg.Action != bridgemodels.LegActionSellToOpen {
		return nil, fmt.Errorf("Queue.Create: open leg action must be %s", bridgemodels.LegActionSellToOpen)
	}

	now := q.nowFn().UTC()

	cmd := &bridgemodels.RollCommand{
		ID:            uuid.New(),
		Type:          bridgemodels.CommandTypeRoll,
		TerminalID:    terminalID,
		AccountNumber: accountNumber,
		CloseLeg:      closeLeg,
		OpenLeg:       openLeg,
		Status:        bridgemodels.CommandStatusDispatched,
		Delivered:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	q.mutex.Lock()
	q.commands[cmd.ID] = cmd
	q.order = append(q.order, cmd.ID)
	snapshot := *cmd
	q.mutex.Unlock()

	if q.store != nil {
		if err := q.store.SaveCommand(&snapshot); err != nil {
			log.Warnf("Queue.Create: failed to persist command %s: %v", cmd.ID, err)
		}
	}

	log.Infof("Queue.Create: dispatched roll command %s for terminal %s", cmd.ID, terminalID)

	return &snapshot, nil
}

// PollPending returns the undelivered commands for a terminal and marks them
// delivered. Each command is handed out exactly once; redelivery requires a
// new command.
func (q *Queue) PollPending(terminalID, accountNumber string) []*bridgemodels.RollCommand {
	now := q.nowFn().UTC()

	q.mutex.Lock()

	var pending []*bridgemodels.RollCommand
	for _, id := range q.order {
		cmd, found := q.commands[id]
		if !found {
			continue
		}

		if cmd.Delivered || cmd.TerminalID != terminalID || cmd.AccountNumber != accountNumber {
			continue
		}

		cmd.Delivered = true
		cmd.UpdatedAt = now

		snapshot := *cmd
		pending = append(pending, &snapshot)
	}

	q.mutex.Unlock()

	if q.store != nil {
		for _, cmd := range pending {
			if err := q.store.UpdateCommand(cmd.ID, cmd.Status, cmd.Delivered); err != nil {
				log.Warnf("Queue.PollPending: failed to persist delivery of command %s: %v", cmd.ID, err)
			}
		}
	}

	return pending
}

// ApplyReport advances a command's state machine from an execution report.
// Unknown commands, repeated statuses, and invalid transitions are logged
// and ignored so a chatty terminal cannot corrupt queue state.
func (q *Queue) ApplyReport(report *bridgemodels.ExecutionReport) {
	q.mutex.Lock()

	cmd, found := q.commands[report.CommandID]
	if !found {
		q.mutex.Unlock()
		log.Warnf("Queue.ApplyReport: report for unknown command %s ignored", report.CommandID)
		return
	}

	if cmd.Status == report.Status {
		q.mutex.Unlock()
		log.Warnf("Queue.ApplyReport: command %s already in status %s, duplicate report ignored", cmd.ID, cmd.Status)
		return
	}

	if cmd.Status.IsTerminal() {
		q.mutex.Unlock()
		log.Warnf("Queue.ApplyReport: command %s is terminal (%s), report with status %s ignored", cmd.ID, cmd.Status, report.Status)
		return
	}

	if !cmd.Status.CanTransitionTo(report.Status) {
		q.mutex.Unlock()
		log.Warnf("Queue.ApplyReport: invalid transition %s -> %s for command %s ignored", cmd.Status, report.Status, cmd.ID)
		return
	}

	cmd.Status = report.Status
	cmd.UpdatedAt = q.nowFn().UTC()

	snapshot := *cmd
	q.mutex.Unlock()

	if q.store != nil {
		if err := q.store.AppendReport(report); err != nil {
			log.Warnf("Queue.ApplyReport: failed to persist report for command %s: %v", report.CommandID, err)
		}

		if err := q.store.UpdateCommand(snapshot.ID, snapshot.Status, snapshot.Delivered); err != nil {
			log.Warnf("Queue.ApplyReport: failed to persist status of command %s: %v", snapshot.ID, err)
		}
	}

	switch snapshot.Status {
	case bridgemodels.CommandStatusFilled:
		log.Infof("Queue.ApplyReport: command %s filled", snapshot.ID)
		eventpubsub.Publish(eventpubsub.CommandFilledEvent, &snapshot)
	case bridgemodels.CommandStatusRejected:
		log.Infof("Queue.ApplyReport: command %s rejected: %s", snapshot.ID, report.Message)
		eventpubsub.Publish(eventpubsub.CommandRejectedEvent, &snapshot)
	case bridgemodels.CommandStatusFailed:
		log.Errorf("Queue.ApplyReport: command %s failed after closing the old leg, account is partially rolled: %s", snapshot.ID, report.Message)
		eventpubsub.Publish(eventpubsub.CommandFailedEvent, &snapshot)
	}
}

// Get returns a copy of the command, or nil when unknown.
func (q *Queue) Get(id uuid.UUID) *bridgemodels.RollCommand {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	cmd, found := q.commands[id]
	if !found {
		return nil
	}

	snapshot := *cmd
	return &snapshot
}

// List returns copies of all commands in dispatch order.
func (q *Queue) List() []*bridgemodels.RollCommand {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	out := make([]*bridgemodels.RollCommand, 0, len(q.order))
	for _, id := range q.order {
		if cmd, found := q.commands[id]; found {
			snapshot := *cmd
			out = append(out, &snapshot)
		}
	}

	return out
}
