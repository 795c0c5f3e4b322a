package marketdata

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/quotestore"
)

// HybridProvider serves quotes from the terminal cache when they are fresh
// and delegates to a fallback provider otherwise. Every result carries its
// source tag; there is no third origin.
type HybridProvider struct {
	store    *quotestore.Store
	fallback Provider
}

func NewHybridProvider(store *quotestore.Store, fallback Provider) *HybridProvider {
	log.Infof("Hybrid market data provider enabled, fallback=%s, ttl=%s", fallback.Name(), store.TTL())

	return &HybridProvider{
		store:    store,
		fallback: fallback,
	}
}

func (p *HybridProvider) Name() string {
	return "hybrid"
}

func (p *HybridProvider) GetQuote(symbol bridgemodels.StockSymbol) (*Quote, error) {
	normalized := bridgemodels.StockSymbol(strings.ToUpper(string(symbol)))

	if entry, found := p.store.GetEquityQuote(normalized); found {
		return &Quote{
			Symbol:       entry.Symbol,
			CurrentPrice: entry.CurrentPrice(),
			Bid:          entry.Bid,
			Ask:          entry.Ask,
			Volume:       entry.Volume,
			Timestamp:    entry.Timestamp,
			Source:       SourceMT5,
		}, nil
	}

	quote, err := p.fallback.GetQuote(normalized)
	if err != nil {
		return nil, fmt.Errorf("HybridProvider.GetQuote: fallback failed for %s: %w", normalized, err)
	}

	quote.Source = SourceFallback
	return quote, nil
}

func (p *HybridProvider) GetOptionQuote(symbol bridgemodels.StockSymbol, strike float64, expiration time.Time, optionType bridgemodels.OptionType) (*OptionQuote, error) {
	normalized := bridgemodels.StockSymbol(strings.ToUpper(string(symbol)))
	key := bridgemodels.NewOptionKey(normalized, strike, optionType, expiration)

	if entry, found := p.store.GetOptionQuote(key); found {
		return &OptionQuote{
			Symbol:     entry.Key.Underlying,
			Strike:     entry.Key.Strike,
			OptionType: entry.Key.OptionType,
			Expiration: entry.Key.Expiration,
			Premium:    entry.CurrentPrice(),
			Bid:        entry.Bid,
			Ask:        entry.Ask,
			Volume:     entry.Volume,
			Timestamp:  entry.Timestamp,
			Source:     SourceMT5,
		}, nil
	}

	quote, err := p.fallback.GetOptionQuote(normalized, strike, expiration, optionType)
	if err != nil {
		return nil, fmt.Errorf("HybridProvider.GetOptionQuote: fallback failed for %s: %w", normalized, err)
	}

	quote.Source = SourceFallback
	return quote, nil
}

func (p *HybridProvider) HealthCheck() bool {
	return p.fallback.HealthCheck()
}
