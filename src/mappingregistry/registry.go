package mappingregistry

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// Registry resolves terminal-side symbols to normalized components.
// Explicitly registered mappings win; on a miss the heuristic codec decodes
// the symbol and the result is auto-registered for future lookups. A nil
// store runs the registry in memory-only mode (heuristic decode only).
type Registry struct {
	store Store
	codec *bridgemodels.Codec
}

func NewRegistry(store Store, codec *bridgemodels.Codec) *Registry {
	if codec == nil {
		codec = bridgemodels.NewCodec()
	}

	return &Registry{
		store: store,
		codec: codec,
	}
}

func (r *Registry) Codec() *bridgemodels.Codec {
	return r.codec
}

// Resolve maps a terminal-side symbol to its components. A registry lookup
// failure degrades to heuristic decode; a decode failure is returned to the
// caller so only the offending batch element is rejected.
func (r *Registry) Resolve(symbol bridgemodels.MT5Symbol) (*bridgemodels.MT5SymbolComponents, error) {
	normalized := strings.ToUpper(strings.TrimSpace(string(symbol)))
	if normalized == "" {
		return nil, fmt.Errorf("Registry.Resolve: empty symbol")
	}

	if r.store != nil {
		record, err := r.store.FindBySymbol(normalized)
		if err != nil {
			log.Warnf("Registry.Resolve: mapping lookup failed for %s, falling back to heuristic decode: %v", normalized, err)
		} else if record != nil {
			components, componentsErr := record.Components()
			if componentsErr == nil {
				return components, nil
			}

			log.Warnf("Registry.Resolve: stored mapping for %s is unusable, falling back to heuristic decode: %v", normalized, componentsErr)
		}
	}

	components, err := r.codec.Decode(bridgemodels.MT5Symbol(normalized))
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Insert(NewSymbolMappingRecord(components, MappingSourceAuto)); err != nil {
			// Resolution succeeded; losing the auto-registration only costs a
			// future decode
			log.Warnf("Registry.Resolve: failed to auto-register mapping for %s: %v", normalized, err)
		}
	}

	return components, nil
}

// Register stores an explicit mapping. An existing auto-derived record is
// upgraded to manual provenance; a manual record is updated in place.
func (r *Registry) Register(components *bridgemodels.MT5SymbolComponents) error {
	if r.store == nil {
		return fmt.Errorf("Registry.Register: no mapping store configured")
	}

	normalized := strings.ToUpper(strings.TrimSpace(string(components.Symbol)))
	if normalized == "" {
		return fmt.Errorf("Registry.Register: empty symbol")
	}

	existing, err := r.store.FindBySymbol(normalized)
	if err != nil {
		return fmt.Errorf("Registry.Register: %w", err)
	}

	record := NewSymbolMappingRecord(components, MappingSourceManual)
	record.MT5Symbol = normalized

	if existing == nil {
		if err := r.store.Insert(record); err != nil {
			return fmt.Errorf("Registry.Register: %w", err)
		}

		return nil
	}

	existing.Ticker = record.Ticker
	existing.AssetType = record.AssetType
	existing.Strike = record.Strike
	existing.OptionType = record.OptionType
	existing.Expiration = record.Expiration
	existing.Source = string(MappingSourceManual)

	if err := r.store.Save(existing); err != nil {
		return fmt.Errorf("Registry.Register: %w", err)
	}

	return nil
}

// Lookup returns the stored mapping for a symbol without decoding, or nil
// when none exists.
func (r *Registry) Lookup(symbol bridgemodels.MT5Symbol) (*SymbolMappingRecord, error) {
	if r.store == nil {
		return nil, fmt.Errorf("Registry.Lookup: no mapping store configured")
	}

	normalized := strings.ToUpper(strings.TrimSpace(string(symbol)))

	record, err := r.store.FindBySymbol(normalized)
	if err != nil {
		return nil, fmt.Errorf("Registry.Lookup: %w", err)
	}

	return record, nil
}
