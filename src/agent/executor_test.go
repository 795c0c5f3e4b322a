package agent

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

type fakeTerminal struct {
	failSymbols map[string]error
	orders      []OrderRequest
	orderSeq    int
}

func newFakeTerminal() *fakeTerminal {
	return &fakeTerminal{failSymbols: map[string]error{}}
}

func (t *fakeTerminal) SymbolNames() ([]string, error) {
	return nil, nil
}

func (t *fakeTerminal) Quote(symbol string) (*TerminalQuote, error) {
	return nil, fmt.Errorf("no tick")
}

func (t *fakeTerminal) PlaceOrder(req OrderRequest) (*OrderResult, error) {
	if err, found := t.failSymbols[req.Symbol]; found {
		return nil, err
	}

	t.orders = append(t.orders, req)
	t.orderSeq++

	return &OrderResult{
		OrderID:   fmt.Sprintf("ORD-%d", t.orderSeq),
		FilledQty: req.Quantity,
		AvgPrice:  1.25,
	}, nil
}

type capturedReports struct {
	reports []bridgemodels.ExecutionReportDTO
}

func (c *capturedReports) SendExecutionReport(dto bridgemodels.ExecutionReportDTO) error {
	c.reports = append(c.reports, dto)
	return nil
}

func (c *capturedReports) statuses() []string {
	var out []string
	for _, report := range c.reports {
		out = append(out, report.Status)
	}
	return out
}

func testCommand() bridgemodels.CommandDTO {
	return bridgemodels.CommandDTO{
		ID:   uuid.New().String(),
		Type: "roll",
		CloseLeg: bridgemodels.CommandLegDTO{
			Ticker: "PETR4", Strike: 35.00, Type: "call", Expiration: "2025-06-20", Quantity: 100, Action: "buy_to_close",
		},
		OpenLeg: bridgemodels.CommandLegDTO{
			Ticker: "PETR4", Strike: 36.00, Type: "call", Expiration: "2025-07-18", Quantity: 100, Action: "sell_to_open",
		},
	}
}

func fixedCodec() *bridgemodels.Codec {
	codec := bridgemodels.NewCodec()
	codec.Now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	return codec
}

func TestRollExecutorExecute(t *testing.T) {
	t.Run("successful roll reports accepted, partial, filled", func(t *testing.T) {
		terminal := newFakeTerminal()
		reports := &capturedReports{}
		executor := NewRollExecutor(terminal, reports, fixedCodec())

		require.NoError(t, executor.Execute(testCommand()))

		assert.Equal(t, []string{"ACCEPTED", "PARTIAL", "FILLED"}, reports.statuses())

		require.Len(t, terminal.orders, 2)
		assert.Equal(t, "PETRF70", terminal.orders[0].Symbol)
		assert.Equal(t, bridgemodels.LegActionBuyToClose, terminal.orders[0].Action)
		assert.Equal(t, "PETRG72", terminal.orders[1].Symbol)
		assert.Equal(t, bridgemodels.LegActionSellToOpen, terminal.orders[1].Action)
	})

	t.Run("close leg failure reports rejected and stops", func(t *testing.T) {
		terminal := newFakeTerminal()
		terminal.failSymbols["PETRF70"] = fmt.Errorf("no liquidity")

		reports := &capturedReports{}
		executor := NewRollExecutor(terminal, reports, fixedCodec())

		require.NoError(t, executor.Execute(testCommand()))

		assert.Equal(t, []string{"ACCEPTED", "REJECTED"}, reports.statuses())
		assert.Empty(t, terminal.orders)
	})

	t.Run("open leg failure reports failed, never retries", func(t *testing.T) {
		terminal := newFakeTerminal()
		terminal.failSymbols["PETRG72"] = fmt.Errorf("margin exceeded")

		reports := &capturedReports{}
		executor := NewRollExecutor(terminal, reports, fixedCodec())

		require.NoError(t, executor.Execute(testCommand()))

		assert.Equal(t, []string{"ACCEPTED", "PARTIAL", "FAILED"}, reports.statuses())

		// Only the close leg ever reached the terminal
		require.Len(t, terminal.orders, 1)
		assert.Equal(t, "PETRF70", terminal.orders[0].Symbol)
	})

	t.Run("malformed legs fail before any report", func(t *testing.T) {
		terminal := newFakeTerminal()
		reports := &capturedReports{}
		executor := NewRollExecutor(terminal, reports, fixedCodec())

		cmd := testCommand()
		cmd.CloseLeg.Expiration = "junk"

		assert.Error(t, executor.Execute(cmd))
		assert.Empty(t, reports.reports)
	})
}
