// Package orderly talks to the backend gateway's orderly surface. The venue
// is read-only in this dashboard: positions render, but close and
// protective-order data are not exposed for it.
package orderly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the REST client for the gateway's orderly endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new orderly gateway client.
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/positions?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("orderly: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orderly: get positions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("orderly: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("orderly: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Positions []RawPosition `json:"positions"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("orderly: decode positions: %w", err)
	}

	return parsed.Positions, nil
}
