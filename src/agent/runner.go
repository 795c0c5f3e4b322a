package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// Runner drives the agent's three loops: heartbeats, quote pushes, and the
// command poll. Each loop has its own ticker and all stop together when the
// context is cancelled.
type Runner struct {
	config   *Config
	terminal Terminal
	client   *BackendClient
	executor *RollExecutor
	codec    *bridgemodels.Codec

	optionSymbols []string
}

func NewRunner(config *Config, terminal Terminal, client *BackendClient) *Runner {
	codec := bridgemodels.NewCodec()

	return &Runner{
		config:   config,
		terminal: terminal,
		client:   client,
		executor: NewRollExecutor(terminal, client, codec),
		codec:    codec,
	}
}

// Start resolves the option symbol set, then runs the loops until the
// context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.loadOptionSymbols()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		r.heartbeatLoop(ctx)
	}()

	go func() {
		defer wg.Done()
		r.quotesLoop(ctx)
	}()

	go func() {
		defer wg.Done()
		r.commandLoop(ctx)
	}()

	log.Infof("Runner.Start: agent running for terminal %s", r.config.TerminalID)

	wg.Wait()
}

// loadOptionSymbols prefers an explicitly configured list; market watch
// discovery only runs when no list is given.
func (r *Runner) loadOptionSymbols() {
	if len(r.config.OptionSymbols) > 0 {
		r.optionSymbols = make([]string, 0, len(r.config.OptionSymbols))
		for _, symbol := range r.config.OptionSymbols {
			if trimmed := strings.ToUpper(strings.TrimSpace(symbol)); trimmed != "" {
				r.optionSymbols = append(r.optionSymbols, trimmed)
			}
		}

		log.Infof("Runner.loadOptionSymbols: using %d configured option symbols", len(r.optionSymbols))
		return
	}

	discovered, err := DiscoverOptionSymbols(r.terminal, r.codec, r.config.Symbols, r.config.DiscoveryLimit)
	if err != nil {
		log.Warnf("Runner.loadOptionSymbols: discovery failed, pushing equity quotes only: %v", err)
		return
	}

	r.optionSymbols = discovered
	log.Infof("Runner.loadOptionSymbols: discovered %d option symbols", len(discovered))
}

func (r *Runner) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.HeartbeatInterval())
	defer ticker.Stop()

	r.sendHeartbeat()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sendHeartbeat()
		}
	}
}

func (r *Runner) sendHeartbeat() {
	dto := bridgemodels.HeartbeatDTO{
		TerminalID:    r.config.TerminalID,
		AccountNumber: r.config.AccountNumber,
		Broker:        r.config.Broker,
		Build:         r.config.Build,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	if err := r.client.SendHeartbeat(dto); err != nil {
		log.Warnf("Runner.sendHeartbeat: %v", err)
	}
}

func (r *Runner) quotesLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.QuotesInterval())
	defer ticker.Stop()

	r.pushQuotes()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pushQuotes()
		}
	}
}

func (r *Runner) pushQuotes() {
	now := time.Now().UTC().Format(time.RFC3339)

	equities := bridgemodels.QuotesIngestRequest{
		TerminalID:    r.config.TerminalID,
		AccountNumber: r.config.AccountNumber,
	}

	for _, symbol := range r.config.Symbols {
		quote, err := r.terminal.Quote(symbol)
		if err != nil {
			log.Warnf("Runner.pushQuotes: no tick for %s: %v", symbol, err)
			continue
		}

		equities.Quotes = append(equities.Quotes, bridgemodels.QuoteDTO{
			Symbol:    quote.Symbol,
			Bid:       quote.Bid,
			Ask:       quote.Ask,
			Last:      quote.Last,
			Volume:    quote.Volume,
			Timestamp: now,
		})
	}

	if len(equities.Quotes) > 0 {
		if _, err := r.client.SendQuotes(equities); err != nil {
			log.Warnf("Runner.pushQuotes: %v", err)
		}
	}

	options := bridgemodels.OptionQuotesIngestRequest{
		TerminalID:    r.config.TerminalID,
		AccountNumber: r.config.AccountNumber,
	}

	for _, symbol := range r.optionSymbols {
		quote, err := r.terminal.Quote(symbol)
		if err != nil {
			continue
		}

		options.OptionQuotes = append(options.OptionQuotes, bridgemodels.OptionQuoteDTO{
			MT5Symbol: quote.Symbol,
			Bid:       quote.Bid,
			Ask:       quote.Ask,
			Last:      quote.Last,
			Volume:    quote.Volume,
			Timestamp: now,
		})
	}

	if len(options.OptionQuotes) > 0 {
		response, err := r.client.SendOptionQuotes(options)
		if err != nil {
			log.Warnf("Runner.pushQuotes: %v", err)
			return
		}

		for _, mappingErr := range response.MappingErrors {
			log.Warnf("Runner.pushQuotes: backend could not map %s: %s", mappingErr.Symbol, mappingErr.Error)
		}
	}
}

func (r *Runner) commandLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollAndExecute()
		}
	}
}

func (r *Runner) pollAndExecute() {
	response, err := r.client.PollCommands(r.config.TerminalID, r.config.AccountNumber)
	if err != nil {
		log.Warnf("Runner.pollAndExecute: %v", err)
		return
	}

	for _, cmd := range response.Commands {
		log.Infof("Runner.pollAndExecute: executing command %s", cmd.ID)

		if err := r.executor.Execute(cmd); err != nil {
			log.Errorf("Runner.pollAndExecute: command %s could not be executed: %v", cmd.ID, err)
		}
	}
}
