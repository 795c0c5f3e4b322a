package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optionsops/options-bridge/src/agent"
)

var runCmd = &cobra.Command{
	Use:   "terminal_agent --config agent.yaml",
	Short: "Run the terminal-side bridge agent against a simulated terminal",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		config, err := agent.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("terminal_agent: %v", err)
		}

		client := agent.NewBackendClient(config.BackendURL, config.Token)
		terminal := agent.NewSimulatedTerminal()
		runner := agent.NewRunner(config, terminal, client)

		ctx, cancel := context.WithCancel(context.Background())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-stop
			log.Info("terminal_agent: shutting down")
			cancel()
		}()

		runner.Start(ctx)
	},
}

func main() {
	runCmd.Flags().String("config", "agent.yaml", "path to the agent configuration file")

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("terminal_agent: %v", err)
	}
}
