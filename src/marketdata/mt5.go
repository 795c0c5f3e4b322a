package marketdata

import (
	"strings"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/quotestore"
)

// MT5Provider is the strict variant: terminal cache or nothing. Stale or
// missing data surfaces as UnavailableError instead of falling back.
type MT5Provider struct {
	store *quotestore.Store
}

func NewMT5Provider(store *quotestore.Store) *MT5Provider {
	return &MT5Provider{store: store}
}

func (p *MT5Provider) Name() string {
	return "mt5"
}

func (p *MT5Provider) GetQuote(symbol bridgemodels.StockSymbol) (*Quote, error) {
	normalized := bridgemodels.StockSymbol(strings.ToUpper(string(symbol)))

	entry, found := p.store.GetEquityQuote(normalized)
	if !found {
		return nil, &UnavailableError{Symbol: string(normalized), Reason: "no fresh terminal quote"}
	}

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

func (p *MT5Provider) GetOptionQuote(symbol bridgemodels.StockSymbol, strike float64, expiration time.Time, optionType bridgemodels.OptionType) (*OptionQuote, error) {
	normalized := bridgemodels.StockSymbol(strings.ToUpper(string(symbol)))
	key := bridgemodels.NewOptionKey(normalized, strike, optionType, expiration)

	entry, found := p.store.GetOptionQuote(key)
	if !found {
		return nil, &UnavailableError{Symbol: string(normalized), Reason: "no fresh terminal option quote"}
	}

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

func (p *MT5Provider) HealthCheck() bool {
	return true
}
