package bridgemodels

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/optionsops/options-bridge/src/utils"
)

// DefaultLowPriceThreshold splits the two strike encodings: codes whose
// /100 interpretation falls below the threshold are low-price strikes
// (x100 encoding), everything else uses the x2 encoding. The boundary is a
// heuristic recovered from observed terminal symbols, not an exchange rule:
// codes near 100x the threshold are inherently ambiguous, which is why the
// value is a field on Codec rather than a constant.
const DefaultLowPriceThreshold = 1.00

// Series letters: A-L encode call months 1-12, M-X encode put months 1-12.
const (
	callSeriesFirst = 'A'
	callSeriesLast  = 'L'
	putSeriesFirst  = 'M'
	putSeriesLast   = 'X'
)

// knownRoots expands bare B3 tickers to their canonical share class.
// Unknown roots pass through verbatim.
var knownRoots = map[string]StockSymbol{
	"VALE": "VALE3",
	"PETR": "PETR4",
	"BBAS": "BBAS3",
	"ITUB": "ITUB4",
	"BBDC": "BBDC4",
	"ABEV": "ABEV3",
	"MGLU": "MGLU3",
	"WEGE": "WEGE3",
	"RENT": "RENT3",
	"GGBR": "GGBR4",
	"USIM": "USIM5",
	"CSNA": "CSNA3",
	"SUZB": "SUZB3",
	"EMBR": "EMBR3",
	"CIEL": "CIEL3",
}

// Codec converts between MT5 option symbols and their normalized
// components. The conversion is heuristic and is not guaranteed to
// round-trip outside the documented strike domains.
type Codec struct {
	LowPriceThreshold float64
	Now               func() time.Time

	roots map[string]StockSymbol
}

func NewCodec() *Codec {
	return &Codec{
		LowPriceThreshold: DefaultLowPriceThreshold,
		Now:               time.Now,
		roots:             knownRoots,
	}
}

// Decode parses a terminal-side option symbol of the form
// [BASE][SERIES LETTER][STRIKE CODE], e.g. VALEC125.
func (c *Codec) Decode(symbol MT5Symbol) (*MT5SymbolComponents, error) {
	raw := strings.ToUpper(strings.TrimSpace(string(symbol)))

	i := len(raw)
	for i > 0 && raw[i-1] >= '0' && raw[i-1] <= '9' {
		i--
	}

	digits := raw[i:]
	if digits == "" {
		return nil, fmt.Errorf("Codec.Decode: no strike code in symbol %q", raw)
	}

	head := raw[:i]
	if head == "" {
		return nil, fmt.Errorf("Codec.Decode: no ticker base in symbol %q", raw)
	}

	series := head[len(head)-1]
	base := head[:len(head)-1]
	if base == "" {
		return nil, fmt.Errorf("Codec.Decode: empty ticker base in symbol %q", raw)
	}

	optionType, month, err := decodeSeriesLetter(series)
	if err != nil {
		return nil, fmt.Errorf("Codec.Decode: symbol %q: %w", raw, err)
	}

	code, err := strconv.Atoi(digits)
	if err != nil {
		return nil, fmt.Errorf("Codec.Decode: invalid strike code %q in symbol %q", digits, raw)
	}

	if code == 0 {
		return nil, fmt.Errorf("Codec.Decode: strike code must be greater than 0 in symbol %q", raw)
	}

	now := c.Now()
	year := now.Year()

	// A series month already behind us refers to next year's settlement
	if month < int(now.Month()) {
		year++
	}

	return &MT5SymbolComponents{
		Symbol:      MT5Symbol(raw),
		Underlying:  c.normalizeRoot(base),
		StrikePrice: c.decodeStrike(code),
		OptionType:  optionType,
		Month:       month,
		Expiration:  utils.ThirdFriday(year, time.Month(month)),
	}, nil
}

// Encode is the forward direction of the same heuristic, used by the
// terminal agent to turn a backend leg descriptor back into an MT5 symbol.
// Round-trip equality with Decode holds only for strikes that are exact
// multiples of the codec resolution: 0.01 below LowPriceThreshold, 0.5 at
// or above it.
func (c *Codec) Encode(ticker StockSymbol, strike float64, optionType OptionType, expiration time.Time) (MT5Symbol, error) {
	if err := optionType.Validate(); err != nil {
		return "", fmt.Errorf("Codec.Encode: %w", err)
	}

	if strike <= 0 {
		return "", fmt.Errorf("Codec.Encode: strike must be greater than 0, got %v", strike)
	}

	base := tickerBase(ticker)
	if base == "" {
		return "", fmt.Errorf("Codec.Encode: empty ticker base for %q", ticker)
	}

	month := int(expiration.Month())

	var series byte
	if optionType == OptionTypeCall {
		series = byte(callSeriesFirst + month - 1)
	} else {
		series = byte(putSeriesFirst + month - 1)
	}

	return MT5Symbol(fmt.Sprintf("%s%c%d", base, series, c.encodeStrike(strike))), nil
}

func (c *Codec) decodeStrike(code int) float64 {
	if price := float64(code) / 100; price < c.LowPriceThreshold {
		return price
	}

	return float64(code) / 2
}

func (c *Codec) encodeStrike(strike float64) int {
	if strike < c.LowPriceThreshold {
		return int(math.Round(strike * 100))
	}

	return int(math.Round(strike * 2))
}

func (c *Codec) normalizeRoot(base string) StockSymbol {
	// Bases already carrying a share-class digit pass through verbatim
	if last := base[len(base)-1]; last >= '0' && last <= '9' {
		return StockSymbol(base)
	}

	if ticker, found := c.roots[base]; found {
		return ticker
	}

	return StockSymbol(base)
}

func decodeSeriesLetter(series byte) (OptionType, int, error) {
	switch {
	case series >= callSeriesFirst && series <= callSeriesLast:
		return OptionTypeCall, int(series-callSeriesFirst) + 1, nil
	case series >= putSeriesFirst && series <= putSeriesLast:
		return OptionTypePut, int(series-putSeriesFirst) + 1, nil
	default:
		return "", 0, fmt.Errorf("invalid series letter %q", string(series))
	}
}

func tickerBase(ticker StockSymbol) string {
	t := strings.ToUpper(strings.TrimSpace(string(ticker)))

	j := len(t)
	for j > 0 && t[j-1] >= '0' && t[j-1] <= '9' {
		j--
	}

	return t[:j]
}
