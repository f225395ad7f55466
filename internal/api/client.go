package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	summaryPath = "/api/account-summary"
	historyPath = "/api/portfolio-history"
	riskPath    = "/api/risk-metrics"
)

// Options parameterise the backend client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client reads the portfolio backend's JSON endpoints.
type Client struct {
	opts    Options
	client  *http.Client
	baseURL string
	logger  zerolog.Logger
}

// New constructs a backend client.
func New(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		opts:    opts,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  logger.With().Str("component", "api_client").Logger(),
	}
}

// AccountSummaries fetches the current per-account summary rows.
func (c *Client) AccountSummaries(ctx context.Context) ([]AccountSummary, error) {
	var summaries []AccountSummary
	if err := c.getJSON(ctx, summaryPath, &summaries); err != nil {
		return nil, fmt.Errorf("fetch account summaries: %w", err)
	}
	return summaries, nil
}

// PortfolioHistory fetches per-account history for the period, optionally
// requesting a benchmark overlay series.
func (c *Client) PortfolioHistory(ctx context.Context, period, benchmark string) (*HistoryResponse, error) {
	path := historyPath + "/" + url.PathEscape(period)
	if benchmark != "" {
		path += "?benchmark=" + url.QueryEscape(benchmark)
	}

	var history HistoryResponse
	if err := c.getJSON(ctx, path, &history); err != nil {
		return nil, fmt.Errorf("fetch portfolio history: %w", err)
	}
	return &history, nil
}

// RiskMetrics fetches the allocation breakdown.
func (c *Client) RiskMetrics(ctx context.Context) (*RiskMetrics, error) {
	var risk RiskMetrics
	if err := c.getJSON(ctx, riskPath, &risk); err != nil {
		return nil, fmt.Errorf("fetch risk metrics: %w", err)
	}
	return &risk, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("api base url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Error != "" {
			return fmt.Errorf("backend error (%d): %s", status, apiErr.Error)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("backend error (%d): %s", status, apiErr.Message)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("backend error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("backend error (%d)", status)
}
