package marketdata

import (
	"fmt"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// Source tags every resolved quote with its origin so consumers and logs
// can tell live terminal data from fallback data.
type Source string

const (
	SourceMT5      Source = "mt5"
	SourceFallback Source = "fallback"
)

type Quote struct {
	Symbol       bridgemodels.StockSymbol `json:"symbol"`
	CurrentPrice *float64                 `json:"current_price"`
	Bid          *float64                 `json:"bid"`
	Ask          *float64                 `json:"ask"`
	Volume       *float64                 `json:"volume"`
	Timestamp    time.Time                `json:"timestamp"`
	Source       Source                   `json:"source"`
}

type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

type OptionQuote struct {
	Symbol          bridgemodels.StockSymbol `json:"symbol"`
	Strike          float64                  `json:"strike"`
	OptionType      bridgemodels.OptionType  `json:"type"`
	Expiration      string                   `json:"expiration"`
	Premium         *float64                 `json:"premium"`
	Bid             *float64                 `json:"bid"`
	Ask             *float64                 `json:"ask"`
	Volume          *float64                 `json:"volume"`
	UnderlyingPrice *float64                 `json:"underlying_price,omitempty"`
	Greeks          *Greeks                  `json:"greeks,omitempty"`
	Timestamp       time.Time                `json:"timestamp"`
	Source          Source                   `json:"source"`
}

type Provider interface {
	Name() string
	GetQuote(symbol bridgemodels.StockSymbol) (*Quote, error)
	GetOptionQuote(symbol bridgemodels.StockSymbol, strike float64, expiration time.Time, optionType bridgemodels.OptionType) (*OptionQuote, error)
	HealthCheck() bool
}

// UnavailableError signals that no fresh data exists for a symbol and the
// provider has no fallback. Routes translate it to 503.
type UnavailableError struct {
	Symbol string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("market data unavailable for %s: %s", e.Symbol, e.Reason)
}
