package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optionsops/options-bridge/src/bridgeapi"
	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/commandqueue"
	"github.com/optionsops/options-bridge/src/dbutils"
	"github.com/optionsops/options-bridge/src/eventpubsub"
	"github.com/optionsops/options-bridge/src/mappingregistry"
	"github.com/optionsops/options-bridge/src/marketdata"
	"github.com/optionsops/options-bridge/src/quotestore"
	"github.com/optionsops/options-bridge/src/utils"
)

var runCmd = &cobra.Command{
	Use:   "bridge_server",
	Short: "Run the MT5 bridge backend",
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			log.Fatalf("bridge_server: %v", err)
		}
	},
}

func run() error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("bridge_server: %v", err)
	}

	eventpubsub.Init()

	store := quotestore.NewStore(time.Duration(utils.GetIntEnvOrDefault("MT5_QUOTE_TTL_SECONDS", 10)) * time.Second)

	var mappingStore mappingregistry.Store
	var queueStore commandqueue.Store

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := dbutils.InitPostgresWithUrl(databaseURL)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}

		mappingStore = mappingregistry.NewGormStore(db)
		queueStore = commandqueue.NewGormStore(db)

		log.Info("bridge_server: postgres persistence enabled")
	} else {
		log.Warn("bridge_server: DATABASE_URL not set, running without persistence")
	}

	registry := mappingregistry.NewRegistry(mappingStore, bridgemodels.NewCodec())
	queue := commandqueue.NewQueue(queueStore)

	var fallback marketdata.Provider
	switch utils.GetEnvOrDefault("MARKET_DATA_HYBRID_FALLBACK", "mock") {
	case "brapi":
		fallback = marketdata.NewBrapiProvider(os.Getenv("MARKET_DATA_API_KEY"))
	default:
		fallback = marketdata.NewMockProvider()
	}

	provider := marketdata.NewHybridProvider(store, fallback)

	config := bridgeapi.Config{
		Enabled: utils.GetEnvOrDefault("MT5_BRIDGE_ENABLED", "true") == "true",
		Token:   os.Getenv("MT5_BRIDGE_TOKEN"),
	}

	if allowed := os.Getenv("MT5_BRIDGE_ALLOWED_IPS"); allowed != "" {
		for _, ip := range strings.Split(allowed, ",") {
			if trimmed := strings.TrimSpace(ip); trimmed != "" {
				config.AllowedIPs = append(config.AllowedIPs, trimmed)
			}
		}
	}

	if config.Enabled && config.Token == "" {
		return fmt.Errorf("run: MT5_BRIDGE_TOKEN must be set when the bridge is enabled")
	}

	if err := subscribeCommandEvents(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	router := mux.NewRouter()
	bridgeapi.SetupHandler(router.PathPrefix("/api").Subrouter(), bridgeapi.NewHandler(config, store, registry, queue, provider))

	port := utils.GetEnvOrDefault("PORT", "8080")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		log.Infof("bridge_server: listening on :%s", port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("bridge_server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("bridge_server: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// subscribeCommandEvents wires the operator-facing log stream for command
// outcomes.
func subscribeCommandEvents() error {
	if err := eventpubsub.Subscribe(eventpubsub.CommandFilledEvent, func(cmd *bridgemodels.RollCommand) {
		log.Infof("command %s filled: rolled %s -> %s", cmd.ID, cmd.CloseLeg.Ticker, cmd.OpenLeg.Ticker)
	}); err != nil {
		return err
	}

	if err := eventpubsub.Subscribe(eventpubsub.CommandRejectedEvent, func(cmd *bridgemodels.RollCommand) {
		log.Warnf("command %s rejected by terminal %s", cmd.ID, cmd.TerminalID)
	}); err != nil {
		return err
	}

	if err := eventpubsub.Subscribe(eventpubsub.CommandFailedEvent, func(cmd *bridgemodels.RollCommand) {
		log.Errorf("command %s failed on terminal %s: position is partially rolled and needs manual intervention", cmd.ID, cmd.TerminalID)
	}); err != nil {
		return err
	}

	return nil
}

func main() {
	if err := runCmd.Execute(); err != nil {
		log.Fatalf("bridge_server: %v", err)
	}
}
