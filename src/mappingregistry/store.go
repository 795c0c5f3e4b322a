package mappingregistry

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary for symbol mappings. The gorm
// implementation backs production; tests substitute an in-memory fake.
type Store interface {
	// FindBySymbol returns nil, nil when no mapping exists.
	FindBySymbol(symbol string) (*SymbolMappingRecord, error)

	// Insert creates the record, silently keeping the existing row when
	// another writer got there first.
	Insert(record *SymbolMappingRecord) error

	// Save persists changes to an existing record.
	Save(record *SymbolMappingRecord) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindBySymbol(symbol string) (*SymbolMappingRecord, error) {
	var record SymbolMappingRecord

	if err := s.db.Where("mt5_symbol = ?", symbol).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("GormStore.FindBySymbol: failed to query mapping for %s: %w", symbol, err)
	}

	return &record, nil
}

func (s *GormStore) Insert(record *SymbolMappingRecord) error {
	// Concurrent auto-registration of the same symbol must be idempotent
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mt5_symbol"}},
		DoNothing: true,
	}).Create(record).Error

	if err != nil {
		return fmt.Errorf("GormStore.Insert: failed to insert mapping for %s: %w", record.MT5Symbol, err)
	}

	return nil
}

func (s *GormStore) Save(record *SymbolMappingRecord) error {
	if err := s.db.Save(record).Error; err != nil {
		return fmt.Errorf("GormStore.Save: failed to save mapping for %s: %w", record.MT5Symbol, err)
	}

	return nil
}
