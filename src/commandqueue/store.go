package commandqueue

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// Store persists command lifecycle facts. The queue treats persistence as
// an audit trail: a store failure is logged, never surfaced to the agent.
type Store interface {
	SaveCommand(cmd *bridgemodels.RollCommand) error
	UpdateCommand(id uuid.UUID, status bridgemodels.CommandStatus, delivered bool) error
	AppendReport(report *bridgemodels.ExecutionReport) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) SaveCommand(cmd *bridgemodels.RollCommand) error {
	if err := s.db.Create(NewCommandRecord(cmd)).Error; err != nil {
		return fmt.Errorf("GormStore.SaveCommand: failed to insert command %s: %w", cmd.ID, err)
	}

	return nil
}

func (s *GormStore) UpdateCommand(id uuid.UUID, status bridgemodels.CommandStatus, delivered bool) error {
	err := s.db.Model(&CommandRecord{}).
		Where("command_id = ?", id).
		Updates(map[string]interface{}{
			"status":    string(status),
			"delivered": delivered,
		}).Error

	if err != nil {
		return fmt.Errorf("GormStore.UpdateCommand: failed to update command %s: %w", id, err)
	}

	return nil
}

func (s *GormStore) AppendReport(report *bridgemodels.ExecutionReport) error {
	if err := s.db.Create(NewExecutionReportRecord(report)).Error; err != nil {
		return fmt.Errorf("GormStore.AppendReport: failed to insert report for command %s: %w", report.CommandID, err)
	}

	return nil
}
