package bridgemodels

import (
	"fmt"
	"time"
)

// MT5SymbolComponents holds the normalized form of a terminal-side option
// symbol.
type MT5SymbolComponents struct {
	Symbol      MT5Symbol
	Underlying  StockSymbol
	StrikePrice float64
	OptionType  OptionType
	Month       int
	Expiration  time.Time
}

func (c *MT5SymbolComponents) Description() string {
	optionType := "Call"
	if c.OptionType == OptionTypePut {
		optionType = "Put"
	}

	return fmt.Sprintf("%s %s R$%.2f %s", c.Underlying, c.Expiration.Format("Jan 2 2006"), c.StrikePrice, optionType)
}
