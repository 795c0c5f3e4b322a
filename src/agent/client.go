package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

// BackendClient is the agent's HTTP client for the bridge API.
type BackendClient struct {
	BaseURL string
	Token   string

	client *http.Client
}

func NewBackendClient(baseURL, token string) *BackendClient {
	return &BackendClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *BackendClient) do(method, path string, payload interface{}, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return fmt.Errorf("BackendClient.do: failed to encode payload: %w", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("BackendClient.do: failed to create request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("BackendClient.do: failed to fetch %s: %w", path, err)
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("BackendClient.do: %s returned http code %v", path, res.Status)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("BackendClient.do: failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

func (c *BackendClient) SendHeartbeat(dto bridgemodels.HeartbeatDTO) error {
	if err := c.do(http.MethodPost, "/api/mt5/heartbeat", dto, nil); err != nil {
		return fmt.Errorf("BackendClient.SendHeartbeat: %w", err)
	}

	return nil
}

func (c *BackendClient) SendQuotes(req bridgemodels.QuotesIngestRequest) (*bridgemodels.QuotesIngestResponse, error) {
	var response bridgemodels.QuotesIngestResponse
	if err := c.do(http.MethodPost, "/api/mt5/quotes", req, &response); err != nil {
		return nil, fmt.Errorf("BackendClient.SendQuotes: %w", err)
	}

	return &response, nil
}

func (c *BackendClient) SendOptionQuotes(req bridgemodels.OptionQuotesIngestRequest) (*bridgemodels.OptionQuotesIngestResponse, error) {
	var response bridgemodels.OptionQuotesIngestResponse
	if err := c.do(http.MethodPost, "/api/mt5/option_quotes", req, &response); err != nil {
		return nil, fmt.Errorf("BackendClient.SendOptionQuotes: %w", err)
	}

	return &response, nil
}

func (c *BackendClient) PollCommands(terminalID, accountNumber string) (*bridgemodels.PollCommandsResponse, error) {
	query := url.Values{}
	query.Set("terminal_id", terminalID)
	query.Set("account_number", accountNumber)

	var response bridgemodels.PollCommandsResponse
	if err := c.do(http.MethodGet, "/api/mt5/commands?"+query.Encode(), nil, &response); err != nil {
		return nil, fmt.Errorf("BackendClient.PollCommands: %w", err)
	}

	return &response, nil
}

func (c *BackendClient) SendExecutionReport(dto bridgemodels.ExecutionReportDTO) error {
	if err := c.do(http.MethodPost, "/api/mt5/execution_report", dto, nil); err != nil {
		return fmt.Errorf("BackendClient.SendExecutionReport: %w", err)
	}

	return nil
}
