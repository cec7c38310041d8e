// Package xai is a minimal client for the xAI Responses API with
// server-side X and web search tools.
package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

const maxErrorBody = 220

// Config configures a Client.
type Config struct {
	BaseURL         string // e.g. "https://api.x.ai/v1"
	APIKey          string
	Model           string
	MaxOutputTokens int
	MaxToolCalls    int
	// SearchLookback bounds how far back x_search looks.
	SearchLookback time.Duration
}

// APIError is a non-2xx reply from the API. It unwraps to the matching
// domain error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return domain.ErrUpstream
	}
}

// Client calls the xAI Responses endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new xAI client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Respond sends one system+user exchange with X and web search enabled and
// returns the decoded response.
func (c *Client) Respond(ctx context.Context, system, user string) (*Response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("xai: respond: %w", domain.ErrNotConfigured)
	}

	fromDate := c.now().UTC().Add(-c.cfg.SearchLookback).Format(time.DateOnly)
	payload := Request{
		Model:           c.cfg.Model,
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		MaxToolCalls:    c.cfg.MaxToolCalls,
		Tools: []Tool{
			{Type: "x_search", FromDate: fromDate},
			{Type: "web_search"},
		},
		Input: []InputMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("xai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("xai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("xai: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("xai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), maxErrorBody)}
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("xai: decode response: %w", err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
