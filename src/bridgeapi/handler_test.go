package bridgeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsops/options-bridge/src/bridgemodels"
	"github.com/optionsops/options-bridge/src/commandqueue"
	"github.com/optionsops/options-bridge/src/mappingregistry"
	"github.com/optionsops/options-bridge/src/marketdata"
	"github.com/optionsops/options-bridge/src/quotestore"
)

const testToken = "test-token"

type testServer struct {
	router *mux.Router
	store  *quotestore.Store
	queue  *commandqueue.Queue
}

func newTestServer(config Config) *testServer {
	store := quotestore.NewStore(10 * time.Second)

	codec := bridgemodels.NewCodec()
	codec.Now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }

	registry := mappingregistry.NewRegistry(nil, codec)
	queue := commandqueue.NewQueue(nil)
	provider := marketdata.NewHybridProvider(store, marketdata.NewMockProvider())

	router := mux.NewRouter()
	SetupHandler(router.PathPrefix("/api").Subrouter(), NewHandler(config, store, registry, queue, provider))

	return &testServer{
		router: router,
		store:  store,
		queue:  queue,
	}
}

func enabledConfig() Config {
	return Config{Enabled: true, Token: testToken}
}

func (s *testServer) request(method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			panic(err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func TestBridgeAuthorization(t *testing.T) {
	t.Run("disabled bridge answers 403 before parsing", func(t *testing.T) {
		server := newTestServer(Config{Enabled: false, Token: testToken})

		req := httptest.NewRequest("POST", "/api/mt5/heartbeat", bytes.NewBufferString("not json"))
		req.Header.Set("Authorization", "Bearer "+testToken)

		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("missing token answers 401", func(t *testing.T) {
		server := newTestServer(enabledConfig())

		recorder := server.request("POST", "/api/mt5/heartbeat", bridgemodels.HeartbeatDTO{TerminalID: "t", AccountNumber: "1"}, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong token answers 401", func(t *testing.T) {
		server := newTestServer(enabledConfig())

		recorder := server.request("POST", "/api/mt5/heartbeat", bridgemodels.HeartbeatDTO{TerminalID: "t", AccountNumber: "1"}, "wrong")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("allowlist rejects unknown addresses", func(t *testing.T) {
		config := enabledConfig()
		config.AllowedIPs = []string{"10.0.0.5"}
		server := newTestServer(config)

		recorder := server.request("POST", "/api/mt5/heartbeat", bridgemodels.HeartbeatDTO{TerminalID: "t", AccountNumber: "1"}, testToken)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("allowlist honors the forwarded address", func(t *testing.T) {
		config := enabledConfig()
		config.AllowedIPs = []string{"10.0.0.5"}
		server := newTestServer(config)

		body := new(bytes.Buffer)
		require.NoError(t, json.NewEncoder(body).Encode(bridgemodels.HeartbeatDTO{TerminalID: "t", AccountNumber: "1"}))

		req := httptest.NewRequest("POST", "/api/mt5/heartbeat", body)
		req.Header.Set("Authorization", "Bearer "+testToken)
		req.Header.Set("X-Forwarded-For", "10.0.0.5, 172.16.0.1")

		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestHeartbeatRoute(t *testing.T) {
	server := newTestServer(enabledConfig())

	recorder := server.request("POST", "/api/mt5/heartbeat", bridgemodels.HeartbeatDTO{
		TerminalID:    "term-1",
		AccountNumber: "123",
		Broker:        "SimBroker",
		Build:         "4410",
	}, testToken)

	require.Equal(t, http.StatusOK, recorder.Code)

	heartbeat, found := server.store.GetHeartbeat("term-1")
	require.True(t, found)
	assert.Equal(t, "SimBroker", heartbeat.Broker)

	t.Run("missing identity is a 400", func(t *testing.T) {
		recorder := server.request("POST", "/api/mt5/heartbeat", bridgemodels.HeartbeatDTO{TerminalID: "term-1"}, testToken)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestQuotesIngestRoute(t *testing.T) {
	server := newTestServer(enabledConfig())

	bid, ask := 28.45, 28.55

	recorder := server.request("POST", "/api/mt5/quotes", bridgemodels.QuotesIngestRequest{
		TerminalID:    "term-1",
		AccountNumber: "123",
		Quotes: []bridgemodels.QuoteDTO{
			{Symbol: "PETR4", Bid: &bid, Ask: &ask},
			{Symbol: ""},
		},
	}, testToken)

	require.Equal(t, http.StatusAccepted, recorder.Code)

	var response bridgemodels.QuotesIngestResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, 1, response.Accepted)

	entry, found := server.store.GetEquityQuote("PETR4")
	require.True(t, found)
	assert.Equal(t, 28.45, *entry.Bid)

	t.Run("normalizes symbols on write", func(t *testing.T) {
		server := newTestServer(enabledConfig())

		last := 65.80
		recorder := server.request("POST", "/api/mt5/quotes", bridgemodels.QuotesIngestRequest{
			TerminalID:    "term-1",
			AccountNumber: "123",
			Quotes: []bridgemodels.QuoteDTO{
				{Symbol: " vale3 ", Last: &last},
				{Symbol: "   "},
			},
		}, testToken)

		require.Equal(t, http.StatusAccepted, recorder.Code)

		var response bridgemodels.QuotesIngestResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, 1, response.Accepted)

		// The entry must be visible under the key readers use, so the hybrid
		// provider serves it as live terminal data
		entry, found := server.store.GetEquityQuote("VALE3")
		require.True(t, found)
		assert.Equal(t, 65.80, *entry.Last)

		quoteRecorder := server.request("GET", "/api/market/quote/vale3", nil, testToken)
		require.Equal(t, http.StatusOK, quoteRecorder.Code)

		var quote marketdata.Quote
		require.NoError(t, json.NewDecoder(quoteRecorder.Body).Decode(&quote))
		assert.Equal(t, marketdata.SourceMT5, quote.Source)
	})
}

func TestOptionQuotesIngestRoute(t *testing.T) {
	server := newTestServer(enabledConfig())

	last := 1.35

	recorder := server.request("POST", "/api/mt5/option_quotes", bridgemodels.OptionQuotesIngestRequest{
		TerminalID:    "term-1",
		AccountNumber: "123",
		OptionQuotes: []bridgemodels.OptionQuoteDTO{
			{MT5Symbol: "VALEC125", Last: &last},
			{MT5Symbol: "PETRZ70", Last: &last},
			{MT5Symbol: "PETRJ70", Last: &last},
		},
	}, testToken)

	require.Equal(t, http.StatusAccepted, recorder.Code)

	var response bridgemodels.OptionQuotesIngestResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))

	assert.Equal(t, 2, response.Accepted)
	assert.Equal(t, 3, response.Total)
	require.Len(t, response.MappingErrors, 1)
	assert.Equal(t, 1, response.MappingErrors[0].Index)
	assert.Equal(t, "PETRZ70", response.MappingErrors[0].Symbol)

	key := bridgemodels.NewOptionKey("VALE3", 62.50, bridgemodels.OptionTypeCall, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC))
	entry, found := server.store.GetOptionQuote(key)
	require.True(t, found)
	assert.Equal(t, 1.35, *entry.Last)
}

func TestCommandRoutes(t *testing.T) {
	server := newTestServer(enabledConfig())

	t.Run("empty poll returns an empty array", func(t *testing.T) {
		recorder := server.request("GET", "/api/mt5/commands?terminal_id=term-1&account_number=123", nil, testToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		assert.Contains(t, recorder.Body.String(), `"commands":[]`)
	})

	t.Run("missing query params is a 400", func(t *testing.T) {
		recorder := server.request("GET", "/api/mt5/commands?terminal_id=term-1", nil, testToken)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("roll dispatch, poll and report", func(t *testing.T) {
		rollRecorder := server.request("POST", "/api/rolls/execute", ExecuteRollRequest{
			TerminalID:    "term-1",
			AccountNumber: "123",
			CloseLeg: bridgemodels.CommandLegDTO{
				Ticker: "PETR4", Strike: 35.00, Type: "call", Expiration: "2025-06-20", Quantity: 100, Action: "buy_to_close",
			},
			OpenLeg: bridgemodels.CommandLegDTO{
				Ticker: "PETR4", Strike: 36.00, Type: "call", Expiration: "2025-07-18", Quantity: 100, Action: "sell_to_open",
			},
		}, testToken)

		require.Equal(t, http.StatusCreated, rollRecorder.Code)

		var rollResponse ExecuteRollResponse
		require.NoError(t, json.NewDecoder(rollRecorder.Body).Decode(&rollResponse))
		assert.Equal(t, string(bridgemodels.CommandStatusDispatched), rollResponse.Status)

		pollRecorder := server.request("GET", "/api/mt5/commands?terminal_id=term-1&account_number=123", nil, testToken)
		require.Equal(t, http.StatusOK, pollRecorder.Code)

		var pollResponse bridgemodels.PollCommandsResponse
		require.NoError(t, json.NewDecoder(pollRecorder.Body).Decode(&pollResponse))
		require.Len(t, pollResponse.Commands, 1)
		assert.Equal(t, rollResponse.CommandID, pollResponse.Commands[0].ID)

		reportRecorder := server.request("POST", "/api/mt5/execution_report", bridgemodels.ExecutionReportDTO{
			CommandID: rollResponse.CommandID,
			Status:    string(bridgemodels.CommandStatusAccepted),
		}, testToken)

		require.Equal(t, http.StatusOK, reportRecorder.Code)
	})

	t.Run("invalid report status is a 400", func(t *testing.T) {
		recorder := server.request("POST", "/api/mt5/execution_report", bridgemodels.ExecutionReportDTO{
			CommandID: "7e6f8c1e-44f0-4df1-9f2a-000000000000",
			Status:    "DONE",
		}, testToken)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("invalid roll legs are a 400", func(t *testing.T) {
		recorder := server.request("POST", "/api/rolls/execute", ExecuteRollRequest{
			TerminalID:    "term-1",
			AccountNumber: "123",
		}, testToken)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestMarketRoutes(t *testing.T) {
	server := newTestServer(enabledConfig())

	t.Run("quote falls back when the cache is empty", func(t *testing.T) {
		recorder := server.request("GET", "/api/market/quote/PETR4", nil, testToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		var quote marketdata.Quote
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&quote))
		assert.Equal(t, marketdata.SourceFallback, quote.Source)
	})

	t.Run("quote serves cached terminal data", func(t *testing.T) {
		last := 29.10
		server.store.PutEquityQuote(bridgemodels.EquityQuote{Symbol: "VALE3", Last: &last})

		recorder := server.request("GET", "/api/market/quote/VALE3", nil, testToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		var quote marketdata.Quote
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&quote))
		assert.Equal(t, marketdata.SourceMT5, quote.Source)
		assert.Equal(t, 29.10, *quote.CurrentPrice)
	})

	t.Run("option quote validates its query", func(t *testing.T) {
		recorder := server.request("GET", "/api/market/options/PETR4/quote?strike=35&type=straddle&expiration=2025-06-20", nil, testToken)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("option quote falls back", func(t *testing.T) {
		recorder := server.request("GET", "/api/market/options/PETR4/quote?strike=35&type=call&expiration=2025-06-20", nil, testToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		var quote marketdata.OptionQuote
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&quote))
		assert.Equal(t, marketdata.SourceFallback, quote.Source)
	})

	t.Run("health reports the provider", func(t *testing.T) {
		recorder := server.request("GET", "/api/market/health", nil, testToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		assert.Contains(t, recorder.Body.String(), "hybrid")
	})
}

func TestMappingRoutesWithoutStore(t *testing.T) {
	server := newTestServer(enabledConfig())

	// No database behind the registry: lookups and registrations fail loudly
	// instead of pretending to persist
	recorder := server.request("GET", "/api/mt5/mappings/VALEC125", nil, testToken)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	recorder = server.request("POST", "/api/mt5/mappings", RegisterMappingRequest{
		MT5Symbol:  "VALEC125",
		Ticker:     "VALE3",
		Strike:     62.50,
		Type:       "call",
		Expiration: "2025-03-21",
	}, testToken)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
