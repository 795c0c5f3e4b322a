package quotestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

func ptr(v float64) *float64 {
	return &v
}

func TestStoreTTL(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	newStoreAt := func(ttl time.Duration) (*Store, *time.Time) {
		now := base
		store := NewStore(ttl)
		store.SetNowFn(func() time.Time { return now })
		return store, &now
	}

	t.Run("entry is readable within the ttl", func(t *testing.T) {
		store, now := newStoreAt(10 * time.Second)

		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "PETR4", Last: ptr(28.50)})

		*now = base.Add(9 * time.Second)
		entry, found := store.GetEquityQuote("PETR4")
		require.True(t, found)
		assert.Equal(t, 28.50, *entry.Last)
	})

	t.Run("entry at exactly the ttl is still fresh", func(t *testing.T) {
		store, now := newStoreAt(10 * time.Second)

		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "PETR4", Last: ptr(28.50)})

		*now = base.Add(10 * time.Second)
		_, found := store.GetEquityQuote("PETR4")
		assert.True(t, found)
	})

	t.Run("entry past the ttl is absent", func(t *testing.T) {
		store, now := newStoreAt(10 * time.Second)

		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "PETR4", Last: ptr(28.50)})

		*now = base.Add(10*time.Second + time.Nanosecond)
		_, found := store.GetEquityQuote("PETR4")
		assert.False(t, found)
	})

	t.Run("a new write revives a stale symbol", func(t *testing.T) {
		store, now := newStoreAt(10 * time.Second)

		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "PETR4", Last: ptr(28.50)})

		*now = base.Add(time.Minute)
		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "PETR4", Last: ptr(29.00)})

		entry, found := store.GetEquityQuote("PETR4")
		require.True(t, found)
		assert.Equal(t, 29.00, *entry.Last)
	})

	t.Run("last writer wins", func(t *testing.T) {
		store, _ := newStoreAt(10 * time.Second)

		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "VALE3", Last: ptr(65.00)})
		store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "VALE3", Last: ptr(66.00)})

		entry, found := store.GetEquityQuote("VALE3")
		require.True(t, found)
		assert.Equal(t, 66.00, *entry.Last)
	})

	t.Run("zero ttl falls back to the default", func(t *testing.T) {
		store := NewStore(0)
		assert.Equal(t, DefaultQuoteTTL, store.TTL())
	})
}

func TestStoreOptionQuotes(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	expiration := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	t.Run("option keyspace is independent of equities", func(t *testing.T) {
		now := base
		store := NewStore(10 * time.Second)
		store.SetNowFn(func() time.Time { return now })

		key := bridgemodels.NewOptionKey("VALE3", 62.50, bridgemodels.OptionTypeCall, expiration)

		store.PutOptionQuote(bridgemodels.OptionQuote{Key: key, Symbol: "VALEC125", Last: ptr(1.20)})

		entry, found := store.GetOptionQuote(key)
		require.True(t, found)
		assert.Equal(t, 1.20, *entry.Last)

		_, found = store.GetEquityQuote("VALE3")
		assert.False(t, found)

		now = base.Add(11 * time.Second)
		_, found = store.GetOptionQuote(key)
		assert.False(t, found)
	})

	t.Run("distinct contracts do not collide", func(t *testing.T) {
		store := NewStore(10 * time.Second)

		callKey := bridgemodels.NewOptionKey("VALE3", 62.50, bridgemodels.OptionTypeCall, expiration)
		putKey := bridgemodels.NewOptionKey("VALE3", 62.50, bridgemodels.OptionTypePut, expiration)

		store.PutOptionQuote(bridgemodels.OptionQuote{Key: callKey, Last: ptr(1.20)})
		store.PutOptionQuote(bridgemodels.OptionQuote{Key: putKey, Last: ptr(2.40)})

		call, found := store.GetOptionQuote(callKey)
		require.True(t, found)
		assert.Equal(t, 1.20, *call.Last)

		put, found := store.GetOptionQuote(putKey)
		require.True(t, found)
		assert.Equal(t, 2.40, *put.Last)
	})
}

func TestStoreHeartbeat(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("heartbeats have no ttl", func(t *testing.T) {
		now := base
		store := NewStore(10 * time.Second)
		store.SetNowFn(func() time.Time { return now })

		store.UpsertHeartbeat(bridgemodels.Heartbeat{TerminalID: "term-1", AccountNumber: "123", Broker: "SimBroker"})

		now = base.Add(time.Hour)
		heartbeat, found := store.GetHeartbeat("term-1")
		require.True(t, found)
		assert.Equal(t, "SimBroker", heartbeat.Broker)
		assert.Equal(t, base, heartbeat.UpdatedAt)
	})

	t.Run("unknown terminal", func(t *testing.T) {
		store := NewStore(10 * time.Second)

		_, found := store.GetHeartbeat("nobody")
		assert.False(t, found)
	})
}
