package marketdata

import (
	"math"
	"strings"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// MockProvider serves deterministic quotes for development and tests.
type MockProvider struct {
	basePrices map[bridgemodels.StockSymbol]float64
	nowFn      func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		basePrices: map[bridgemodels.StockSymbol]float64{
			"PETR4": 28.50,
			"VALE3": 65.80,
			"BBAS3": 45.20,
			"ITUB4": 32.40,
			"B3SA3": 12.90,
			"BBDC4": 15.60,
			"WEGE3": 42.30,
			"RENT3": 56.70,
			"MGLU3": 4.20,
			"LREN3": 18.40,
		},
		nowFn: time.Now,
	}
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) GetQuote(symbol bridgemodels.StockSymbol) (*Quote, error) {
	normalized := bridgemodels.StockSymbol(strings.ToUpper(string(symbol)))

	price, found := p.basePrices[normalized]
	if !found {
		price = 50.00
	}

	bid := round2(price * 0.999)
	ask := round2(price * 1.001)
	volume := float64(1_000_000)

	return &Quote{
		Symbol:       normalized,
		CurrentPrice: &price,
		Bid:          &bid,
		Ask:          &ask,
		Volume:       &volume,
		Timestamp:    p.nowFn().UTC(),
		Source:       SourceFallback,
	}, nil
}

func (p *MockProvider) GetOptionQuote(symbol bridgemodels.StockSymbol, strike float64, expiration time.Time, optionType bridgemodels.OptionType) (*OptionQuote, error) {
	underlying, err := p.GetQuote(symbol)
	if err != nil {
		return nil, err
	}

	spot := *underlying.CurrentPrice

	// Intrinsic value plus a fixed time value keeps the numbers plausible
	// without randomness
	var intrinsic float64
	if optionType == bridgemodels.OptionTypeCall {
		intrinsic = math.Max(0, spot-strike)
	} else {
		intrinsic = math.Max(0, strike-spot)
	}

	premium := round2(intrinsic + spot*0.02)
	bid := round2(premium * 0.98)
	ask := round2(premium * 1.02)

	return &OptionQuote{
		Symbol:          underlying.Symbol,
		Strike:          strike,
		OptionType:      optionType,
		Expiration:      expiration.Format("2006-01-02"),
		Premium:         &premium,
		Bid:             &bid,
		Ask:             &ask,
		UnderlyingPrice: underlying.CurrentPrice,
		Timestamp:       p.nowFn().UTC(),
		Source:          SourceFallback,
	}, nil
}

func (p *MockProvider) HealthCheck() bool {
	return true
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
