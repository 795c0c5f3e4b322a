package agent

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/utils"
)

// SimulatedTerminal is a deterministic stand-in for a live MT5 terminal.
// Prices follow a slow sine drift around a fixed base so repeated runs
// produce stable, plausible ticks without randomness.
type SimulatedTerminal struct {
	mutex      sync.Mutex
	basePrices map[string]float64
	codec      *bridgemodels.Codec
	nowFn      func() time.Time
	orderSeq   int
}

func NewSimulatedTerminal() *SimulatedTerminal {
	return &SimulatedTerminal{
		basePrices: map[string]float64{
			"PETR4": 28.50,
			"VALE3": 65.80,
			"BBAS3": 45.20,
			"ITUB4": 32.40,
			"BBDC4": 15.60,
			"MGLU3": 4.20,
		},
		codec: bridgemodels.NewCodec(),
		nowFn: time.Now,
	}
}

// SymbolNames lists the simulated equities plus one near-month call and put
// series per equity, mirroring what a broker's market watch would show.
func (t *SimulatedTerminal) SymbolNames() ([]string, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.nowFn()
	expiration := utils.ThirdFriday(now.Year(), now.Month())
	if expiration.Before(now) {
		expiration = utils.ThirdFriday(now.AddDate(0, 1, 0).Year(), now.AddDate(0, 1, 0).Month())
	}

	var names []string
	for symbol, base := range t.basePrices {
		names = append(names, symbol)

		ticker := bridgemodels.StockSymbol(symbol)
		strike := math.Round(base*2) / 2

		if call, err := t.codec.Encode(ticker, strike, bridgemodels.OptionTypeCall, expiration); err == nil {
			names = append(names, string(call))
		}

		if put, err := t.codec.Encode(ticker, strike, bridgemodels.OptionTypePut, expiration); err == nil {
			names = append(names, string(put))
		}
	}

	return names, nil
}

func (t *SimulatedTerminal) Quote(symbol string) (*TerminalQuote, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	normalized := strings.ToUpper(symbol)
	now := t.nowFn()

	price, found := t.basePrices[normalized]
	if !found {
		components, err := t.codec.Decode(bridgemodels.MT5Symbol(normalized))
		if err != nil {
			return nil, fmt.Errorf("SimulatedTerminal.Quote: unknown symbol %s", symbol)
		}

		spot, ok := t.basePrices[string(components.Underlying)]
		if !ok {
			return nil, fmt.Errorf("SimulatedTerminal.Quote: unknown underlying %s for %s", components.Underlying, symbol)
		}

		var intrinsic float64
		if components.OptionType == bridgemodels.OptionTypeCall {
			intrinsic = math.Max(0, spot-components.StrikePrice)
		} else {
			intrinsic = math.Max(0, components.StrikePrice-spot)
		}

		price = intrinsic + spot*0.02
	}

	// Slow drift keeps consecutive ticks from being byte-identical
	drift := 1 + 0.002*math.Sin(float64(now.Unix()%3600)/3600*2*math.Pi)
	last := round2sim(price * drift)
	bid := round2sim(last * 0.999)
	ask := round2sim(last * 1.001)
	volume := float64(1000)

	return &TerminalQuote{
		Symbol:    normalized,
		Bid:       &bid,
		Ask:       &ask,
		Last:      &last,
		Volume:    &volume,
		Timestamp: now.UTC(),
	}, nil
}

func (t *SimulatedTerminal) PlaceOrder(req OrderRequest) (*OrderResult, error) {
	quote, err := t.Quote(req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("SimulatedTerminal.PlaceOrder: %w", err)
	}

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("SimulatedTerminal.PlaceOrder: quantity must be greater than 0")
	}

	var price float64
	if req.Action == bridgemodels.LegActionBuyToClose {
		price = *quote.Ask
	} else {
		price = *quote.Bid
	}

	t.mutex.Lock()
	t.orderSeq++
	orderID := fmt.Sprintf("SIM-%06d", t.orderSeq)
	t.mutex.Unlock()

	return &OrderResult{
		OrderID:   orderID,
		FilledQty: req.Quantity,
		AvgPrice:  price,
	}, nil
}

func round2sim(value float64) float64 {
	return math.Round(value*100) / 100
}
