package agent

import (
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// Terminal abstracts the trading terminal the agent runs next to. The
// production implementation talks to a live MT5 instance; tests and the
// bundled binary use SimulatedTerminal.
type Terminal interface {
	// SymbolNames lists every symbol visible in the terminal's market watch.
	SymbolNames() ([]string, error)

	// Quote returns the current tick for a symbol, or an error when the
	// symbol is unknown or has no tick yet.
	Quote(symbol string) (*TerminalQuote, error)

	// PlaceOrder submits a market order and blocks until the terminal
	// acknowledges it.
	PlaceOrder(req OrderRequest) (*OrderResult, error)
}

type TerminalQuote struct {
	Symbol    string
	Bid       *float64
	Ask       *float64
	Last      *float64
	Volume    *float64
	Timestamp time.Time
}

type OrderRequest struct {
	Symbol   string
	Action   bridgemodels.LegAction
	Quantity float64
}

type OrderResult struct {
	OrderID   string
	FilledQty float64
	AvgPrice  float64
}
