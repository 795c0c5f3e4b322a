package quotestore

import (
	"sync"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

const DefaultQuoteTTL = 10 * time.Second

// EquityEntry is a stored equity quote plus its store-write timestamp.
type EquityEntry struct {
	bridgemodels.EquityQuote
	WrittenAt time.Time
}

// OptionEntry is a stored option quote plus its store-write timestamp.
type OptionEntry struct {
	bridgemodels.OptionQuote
	WrittenAt time.Time
}

// Store is the in-memory terminal data cache. Equity and option quotes live
// in independent keyspaces with identical mechanics: last writer wins, and
// an entry older than the TTL is treated as absent by readers without being
// removed. Each keyspace is guarded by its own mutex, held only for the
// combined check-TTL/read-or-write sequence; no I/O happens under a lock.
type Store struct {
	equityMu  sync.Mutex
	equities  map[bridgemodels.StockSymbol]*EquityEntry
	optionMu  sync.Mutex
	options   map[bridgemodels.OptionKey]*OptionEntry
	beatMu    sync.Mutex
	heartbeat map[string]*bridgemodels.Heartbeat

	ttl   time.Duration
	nowFn func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}

	return &Store{
		equities:  make(map[bridgemodels.StockSymbol]*EquityEntry),
		options:   make(map[bridgemodels.OptionKey]*OptionEntry),
		heartbeat: make(map[string]*bridgemodels.Heartbeat),
		ttl:       ttl,
		nowFn:     time.Now,
	}
}

// SetNowFn overrides the store clock. Tests use this to probe TTL
// boundaries.
func (s *Store) SetNowFn(nowFn func() time.Time) {
	s.nowFn = nowFn
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) PutEquityQuote(quote bridgemodels.EquityQuote) {
	entry := &EquityEntry{
		EquityQuote: quote,
		WrittenAt:   s.nowFn(),
	}

	s.equityMu.Lock()
	defer s.equityMu.Unlock()

	s.equities[quote.Symbol] = entry
}

// GetEquityQuote returns a copy of the freshest entry for the symbol, or
// false when there is none or it has outlived the TTL. Stale entries are
// skipped, not deleted; new writes simply overwrite them.
func (s *Store) GetEquityQuote(symbol bridgemodels.StockSymbol) (*EquityEntry, bool) {
	now := s.nowFn()

	s.equityMu.Lock()
	defer s.equityMu.Unlock()

	entry, found := s.equities[symbol]
	if !found || now.Sub(entry.WrittenAt) > s.ttl {
		return nil, false
	}

	entryCopy := *entry
	return &entryCopy, true
}

func (s *Store) PutOptionQuote(quote bridgemodels.OptionQuote) {
	entry := &OptionEntry{
		OptionQuote: quote,
		WrittenAt:   s.nowFn(),
	}

	s.optionMu.Lock()
	defer s.optionMu.Unlock()

	s.options[quote.Key] = entry
}

func (s *Store) GetOptionQuote(key bridgemodels.OptionKey) (*OptionEntry, bool) {
	now := s.nowFn()

	s.optionMu.Lock()
	defer s.optionMu.Unlock()

	entry, found := s.options[key]
	if !found || now.Sub(entry.WrittenAt) > s.ttl {
		return nil, false
	}

	entryCopy := *entry
	return &entryCopy, true
}

// UpsertHeartbeat records terminal liveness. Heartbeats have no TTL; the
// last one always wins and stays readable.
func (s *Store) UpsertHeartbeat(heartbeat bridgemodels.Heartbeat) {
	heartbeat.UpdatedAt = s.nowFn()

	s.beatMu.Lock()
	defer s.beatMu.Unlock()

	s.heartbeat[heartbeat.TerminalID] = &heartbeat
}

func (s *Store) GetHeartbeat(terminalID string) (*bridgemodels.Heartbeat, bool) {
	s.beatMu.Lock()
	defer s.beatMu.Unlock()

	heartbeat, found := s.heartbeat[terminalID]
	if !found {
		return nil, false
	}

	heartbeatCopy := *heartbeat
	return &heartbeatCopy, true
}
