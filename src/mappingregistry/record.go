package mappingregistry

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

type MappingSource string

const (
	MappingSourceAuto   MappingSource = "auto"
	MappingSourceManual MappingSource = "manual"
)

// SymbolMappingRecord is the persistent mapping from a terminal-side symbol
// to its normalized components. Exactly one record exists per symbol.
// Option mappings carry strike, option type and expiration together or not
// at all.
type SymbolMappingRecord struct {
	gorm.Model
	MT5Symbol  string     `gorm:"column:mt5_symbol;type:text;uniqueIndex;not null"`
	Ticker     string     `gorm:"column:ticker;type:text;not null"`
	AssetType  string     `gorm:"column:asset_type;type:text;not null"`
	Strike     *float64   `gorm:"column:strike;type:numeric"`
	OptionType *string    `gorm:"column:option_type;type:text"`
	Expiration *time.Time `gorm:"column:expiration;type:date"`
	Source     string     `gorm:"column:source;type:text;not null"`
}

func NewSymbolMappingRecord(components *bridgemodels.MT5SymbolComponents, source MappingSource) *SymbolMappingRecord {
	strike := components.StrikePrice
	optionType := string(components.OptionType)
	expiration := components.Expiration

	return &SymbolMappingRecord{
		MT5Symbol:  string(components.Symbol),
		Ticker:     string(components.Underlying),
		AssetType:  string(bridgemodels.AssetTypeOption),
		Strike:     &strike,
		OptionType: &optionType,
		Expiration: &expiration,
		Source:     string(source),
	}
}

// Components rebuilds the normalized form from a stored option mapping.
func (r *SymbolMappingRecord) Components() (*bridgemodels.MT5SymbolComponents, error) {
	if r.AssetType != string(bridgemodels.AssetTypeOption) {
		return nil, fmt.Errorf("SymbolMappingRecord.Components: mapping for %s is not an option mapping", r.MT5Symbol)
	}

	if r.Strike == nil || r.OptionType == nil || r.Expiration == nil {
		return nil, fmt.Errorf("SymbolMappingRecord.Components: option mapping for %s is missing strike, option type or expiration", r.MT5Symbol)
	}

	optionType := bridgemodels.OptionType(*r.OptionType)
	if err := optionType.Validate(); err != nil {
		return nil, fmt.Errorf("SymbolMappingRecord.Components: %w", err)
	}

	return &bridgemodels.MT5SymbolComponents{
		Symbol:      bridgemodels.MT5Symbol(r.MT5Symbol),
		Underlying:  bridgemodels.StockSymbol(r.Ticker),
		StrikePrice: *r.Strike,
		OptionType:  optionType,
		Month:       int(r.Expiration.Month()),
		Expiration:  *r.Expiration,
	}, nil
}
