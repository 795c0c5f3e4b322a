package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads a full config", func(t *testing.T) {
		path := writeConfig(t, `
backend_url: http://localhost:8080
token: secret
terminal_id: term-1
account_number: "123"
broker: SimBroker
symbols:
  - PETR4
  - VALE3
heartbeat_interval_seconds: 60
quotes_interval_seconds: 2
poll_interval_seconds: 3
discovery_limit: 50
`)

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080", config.BackendURL)
		assert.Equal(t, []string{"PETR4", "VALE3"}, config.Symbols)
		assert.Empty(t, config.OptionSymbols)
		assert.Equal(t, time.Minute, config.HeartbeatInterval())
		assert.Equal(t, 2*time.Second, config.QuotesInterval())
		assert.Equal(t, 3*time.Second, config.PollInterval())
		assert.Equal(t, 50, config.DiscoveryLimit)
	})

	t.Run("loads an explicit option symbol list", func(t *testing.T) {
		path := writeConfig(t, `
backend_url: http://localhost:8080
token: secret
terminal_id: term-1
account_number: "123"
symbols:
  - PETR4
option_symbols:
  - PETRF70
  - PETRR70
`)

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"PETRF70", "PETRR70"}, config.OptionSymbols)
	})

	t.Run("applies interval defaults", func(t *testing.T) {
		path := writeConfig(t, `
backend_url: http://localhost:8080
token: secret
terminal_id: term-1
account_number: "123"
`)

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, config.HeartbeatInterval())
		assert.Equal(t, 5*time.Second, config.QuotesInterval())
		assert.Equal(t, 5*time.Second, config.PollInterval())
		assert.Equal(t, 200, config.DiscoveryLimit)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		path := writeConfig(t, `
backend_url: http://localhost:8080
token: secret
`)

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects a missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "backend_url: [unterminated")

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
