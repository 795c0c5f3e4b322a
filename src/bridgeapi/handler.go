package bridgeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/optionsops/options-bridge/src/commandqueue"
	"github.com/optionsops/options-bridge/src/mappingregistry"
	"github.com/optionsops/options-bridge/src/marketdata"
	"github.com/optionsops/options-bridge/src/quotestore"
)

var decoder = schema.NewDecoder()

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type: errType,
		Msg:  message,
	}
}

func setResponse(response interface{}, statusCode int, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// Handler carries the service dependencies shared by all routes.
type Handler struct {
	config   Config
	store    *quotestore.Store
	registry *mappingregistry.Registry
	queue    *commandqueue.Queue
	provider marketdata.Provider
	nowFn    func() time.Time
}

func NewHandler(config Config, store *quotestore.Store, registry *mappingregistry.Registry, queue *commandqueue.Queue, provider marketdata.Provider) *Handler {
	return &Handler{
		config:   config,
		store:    store,
		registry: registry,
		queue:    queue,
		provider: provider,
		nowFn:    time.Now,
	}
}

// SetNowFn overrides the clock. Test hook.
func (h *Handler) SetNowFn(nowFn func() time.Time) {
	h.nowFn = nowFn
}

func SetupHandler(router *mux.Router, h *Handler) {
	router.HandleFunc("/mt5/heartbeat", h.heartbeat).Methods("POST")
	router.HandleFunc("/mt5/quotes", h.ingestQuotes).Methods("POST")
	router.HandleFunc("/mt5/option_quotes", h.ingestOptionQuotes).Methods("POST")
	router.HandleFunc("/mt5/commands", h.pollCommands).Methods("GET")
	router.HandleFunc("/mt5/execution_report", h.executionReport).Methods("POST")
	router.HandleFunc("/mt5/mappings", h.registerMapping).Methods("POST")
	router.HandleFunc("/mt5/mappings/{symbol}", h.lookupMapping).Methods("GET")

	router.HandleFunc("/market/quote/{ticker}", h.marketQuote).Methods("GET")
	router.HandleFunc("/market/options/{ticker}/quote", h.marketOptionQuote).Methods("GET")
	router.HandleFunc("/market/health", h.marketHealth).Methods("GET")

	router.HandleFunc("/rolls/execute", h.executeRoll).Methods("POST")
}
