// Package hyperliquid talks to the backend gateway's hyperliquid surface and
// adapts its raw records into the unified domain model. Hyperliquid is the
// only venue wired for programmatic close in this dashboard.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// Client is the REST client for the gateway's hyperliquid endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new hyperliquid gateway client.
//
// baseURL is the API root, e.g. "https://gateway.internal/api/hyperliquid".
// apiKey may be empty when the gateway does not require one.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetPositions returns the raw open positions for a wallet.
func (c *Client) GetPositions(ctx context.Context, wallet string) ([]RawPosition, error) {
	params := url.Values{}
	params.Set("wallet", wallet)

	body, err := c.doRequest(ctx, http.MethodGet, "/positions?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: get positions: %w", err)
	}

	var resp struct {
		Positions []RawPosition `json:"positions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode positions: %w", err)
	}

	return resp.Positions, nil
}

// GetOpenOrders returns the raw resting orders for a wallet, including
// position-attached trigger orders.
func (c *Client) GetOpenOrders(ctx context.Context, wallet string) ([]RawOpenOrder, error) {
	params := url.Values{}
	params.Set("wallet", wallet)

	body, err := c.doRequest(ctx, http.MethodGet, "/orders?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: get open orders: %w", err)
	}

	var resp struct {
		Orders []RawOpenOrder `json:"orders"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode open orders: %w", err)
	}

	return resp.Orders, nil
}

// ClosePosition asks the gateway to market-close one position. coin must be
// the venue-native identifier, not the display symbol.
func (c *Client) ClosePosition(ctx context.Context, coin string) (domain.CloseResult, error) {
	payload := map[string]string{"coin": coin}

	body, err := c.doRequest(ctx, http.MethodPost, "/close-position", payload)
	if err != nil {
		return domain.CloseResult{}, fmt.Errorf("hyperliquid: close position %s: %w", coin, err)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.CloseResult{}, fmt.Errorf("hyperliquid: decode close response: %w", err)
	}

	result := domain.CloseResult{Target: coin, Outcome: domain.CloseOutcomeClosed}
	if !resp.Success {
		result.Outcome = domain.CloseOutcomeFailed
		result.ErrorMessage = resp.Error
	}
	return result, nil
}

// CloseAll asks the gateway to close every open position and cancel every
// resting order in one call. The gateway owns per-item atomicity; the client
// only reshapes the returned three-way partition.
func (c *Client) CloseAll(ctx context.Context) (domain.BulkCloseSummary, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/close-all", map[string]any{})
	if err != nil {
		return domain.BulkCloseSummary{}, fmt.Errorf("hyperliquid: close all: %w", err)
	}

	var resp struct {
		Results closeAllResults `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.BulkCloseSummary{}, fmt.Errorf("hyperliquid: decode close-all response: %w", err)
	}

	return domain.BulkCloseSummary{
		ClosedPositions: adaptCloseResults(resp.Results.ClosedPositions, domain.CloseOutcomeClosed),
		CancelledOrders: adaptCloseResults(resp.Results.CancelledOrders, domain.CloseOutcomeCancelledOrder),
		Errors:          adaptCloseResults(resp.Results.Errors, domain.CloseOutcomeFailed),
	}, nil
}

func adaptCloseResults(raw []rawCloseResult, outcome domain.CloseOutcome) []domain.CloseResult {
	if len(raw) == 0 {
		return nil
	}
	out := make([]domain.CloseResult, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.CloseResult{
			Target:       r.Target,
			Outcome:      outcome,
			ErrorMessage: r.ErrorMessage,
		})
	}
	return out
}

// doRequest builds, sends, and reads an HTTP request against the gateway.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
