package bridgemodels

type QuoteDTO struct {
	Symbol    string   `json:"symbol"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Last      *float64 `json:"last"`
	Volume    *float64 `json:"volume"`
	Timestamp string   `json:"ts"`
}

type QuotesIngestRequest struct {
	TerminalID    string     `json:"terminal_id"`
	AccountNumber string     `json:"account_number"`
	Quotes        []QuoteDTO `json:"quotes"`
}

type QuotesIngestResponse struct {
	Accepted int `json:"accepted"`
}

type OptionQuoteDTO struct {
	MT5Symbol string   `json:"mt5_symbol"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
	Last      *float64 `json:"last"`
	Volume    *float64 `json:"volume"`
	Timestamp string   `json:"ts"`
}

type OptionQuotesIngestRequest struct {
	TerminalID    string           `json:"terminal_id"`
	AccountNumber string           `json:"account_number"`
	OptionQuotes  []OptionQuoteDTO `json:"option_quotes"`
}

// MappingErrorDTO reports a single batch element whose symbol could not be
// resolved. The rest of the batch is unaffected.
type MappingErrorDTO struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

type OptionQuotesIngestResponse struct {
	Accepted      int               `json:"accepted"`
	Total         int               `json:"total"`
	MappingErrors []MappingErrorDTO `json:"mapping_errors"`
}
