package agent

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// ReportSender delivers execution reports back to the backend.
type ReportSender interface {
	SendExecutionReport(dto bridgemodels.ExecutionReportDTO) error
}

// RollExecutor runs a roll command leg by leg, reporting each state
// transition as it happens. The close leg failing leaves the position
// untouched (REJECTED); the open leg failing leaves the account partially
// rolled (FAILED), which an operator must resolve by hand.
type RollExecutor struct {
	terminal Terminal
	reports  ReportSender
	codec    *bridgemodels.Codec
	nowFn    func() time.Time
}

func NewRollExecutor(terminal Terminal, reports ReportSender, codec *bridgemodels.Codec) *RollExecutor {
	if codec == nil {
		codec = bridgemodels.NewCodec()
	}

	return &RollExecutor{
		terminal: terminal,
		reports:  reports,
		codec:    codec,
		nowFn:    time.Now,
	}
}

func (e *RollExecutor) Execute(cmd bridgemodels.CommandDTO) error {
	closeLeg, err := cmd.CloseLeg.ToCommandLeg()
	if err != nil {
		return fmt.Errorf("RollExecutor.Execute: %w", err)
	}

	openLeg, err := cmd.OpenLeg.ToCommandLeg()
	if err != nil {
		return fmt.Errorf("RollExecutor.Execute: %w", err)
	}

	e.report(cmd.ID, bridgemodels.CommandStatusAccepted, "", 0, 0, "")

	closeSymbol, err := e.codec.Encode(closeLeg.Ticker, closeLeg.Strike, closeLeg.OptionType, closeLeg.Expiration)
	if err != nil {
		e.report(cmd.ID, bridgemodels.CommandStatusRejected, "", 0, 0, err.Error())
		return nil
	}

	closeResult, err := e.terminal.PlaceOrder(OrderRequest{
		Symbol:   string(closeSymbol),
		Action:   closeLeg.Action,
		Quantity: closeLeg.Quantity,
	})
	if err != nil {
		log.Warnf("RollExecutor.Execute: close leg for command %s rejected: %v", cmd.ID, err)
		e.report(cmd.ID, bridgemodels.CommandStatusRejected, "", 0, 0, err.Error())
		return nil
	}

	e.report(cmd.ID, bridgemodels.CommandStatusPartial, closeResult.OrderID, closeResult.FilledQty, closeResult.AvgPrice, "")

	openSymbol, err := e.codec.Encode(openLeg.Ticker, openLeg.Strike, openLeg.OptionType, openLeg.Expiration)
	if err != nil {
		log.Errorf("RollExecutor.Execute: command %s: close leg filled but open symbol is invalid, position is partially rolled: %v", cmd.ID, err)
		e.report(cmd.ID, bridgemodels.CommandStatusFailed, closeResult.OrderID, closeResult.FilledQty, closeResult.AvgPrice, err.Error())
		return nil
	}

	openResult, err := e.terminal.PlaceOrder(OrderRequest{
		Symbol:   string(openSymbol),
		Action:   openLeg.Action,
		Quantity: openLeg.Quantity,
	})
	if err != nil {
		// The close already filled; nothing here is retried because a blind
		// retry could double the open position
		log.Errorf("RollExecutor.Execute: command %s: open leg failed after close filled, position is partially rolled: %v", cmd.ID, err)
		e.report(cmd.ID, bridgemodels.CommandStatusFailed, closeResult.OrderID, closeResult.FilledQty, closeResult.AvgPrice, err.Error())
		return nil
	}

	e.report(cmd.ID, bridgemodels.CommandStatusFilled, openResult.OrderID, openResult.FilledQty, openResult.AvgPrice, "")

	return nil
}

func (e *RollExecutor) report(commandID string, status bridgemodels.CommandStatus, orderID string, filledQty, avgPrice float64, message string) {
	dto := bridgemodels.ExecutionReportDTO{
		CommandID: commandID,
		Status:    string(status),
		OrderID:   orderID,
		FilledQty: filledQty,
		AvgPrice:  avgPrice,
		Timestamp: e.nowFn().UTC().Format(time.RFC3339),
		Message:   message,
	}

	if err := e.reports.SendExecutionReport(dto); err != nil {
		log.Warnf("RollExecutor.report: failed to send %s report for command %s: %v", status, commandID, err)
	}
}
