package bridgemodels

import "time"

// EquityQuote is a single underlying quote snapshot pushed by a terminal.
type EquityQuote struct {
	Symbol        StockSymbol
	Bid           *float64
	Ask           *float64
	Last          *float64
	Volume        *float64
	TerminalID    string
	AccountNumber string
	Timestamp     time.Time
}

// CurrentPrice coalesces the best available price field, preferring the
// last trade over the book.
func (q *EquityQuote) CurrentPrice() *float64 {
	for _, price := range []*float64{q.Last, q.Bid, q.Ask} {
		if price != nil {
			return price
		}
	}

	return nil
}

// OptionKey is the normalized identity of an option contract. Expiration is
// a date string (2006-01-02) so the key stays comparable.
type OptionKey struct {
	Underlying StockSymbol
	Strike     float64
	OptionType OptionType
	Expiration string
}

func NewOptionKey(underlying StockSymbol, strike float64, optionType OptionType, expiration time.Time) OptionKey {
	return OptionKey{
		Underlying: underlying,
		Strike:     strike,
		OptionType: optionType,
		Expiration: expiration.Format("2006-01-02"),
	}
}

// OptionQuote is a single option quote snapshot pushed by a terminal,
// already resolved to its normalized key.
type OptionQuote struct {
	Key           OptionKey
	Symbol        MT5Symbol
	Bid           *float64
	Ask           *float64
	Last          *float64
	Volume        *float64
	TerminalID    string
	AccountNumber string
	Timestamp     time.Time
}

func (q *OptionQuote) CurrentPrice() *float64 {
	for _, price := range []*float64{q.Last, q.Bid, q.Ask} {
		if price != nil {
			return price
		}
	}

	return nil
}
