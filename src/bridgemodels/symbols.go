package bridgemodels

import "fmt"

type StockSymbol string

// MT5Symbol is the compact instrument identifier understood by the MT5
// terminal agent, e.g. "VALEC125".
type MT5Symbol string

func (s MT5Symbol) String() string {
	return string(s)
}

type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

func (t OptionType) Validate() error {
	if t != OptionTypeCall && t != OptionTypePut {
		return fmt.Errorf("invalid option type: %s", t)
	}

	return nil
}

type AssetType string

const (
	AssetTypeEquity AssetType = "equity"
	AssetTypeOption AssetType = "option"
)
