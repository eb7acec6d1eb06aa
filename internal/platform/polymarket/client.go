// Package polymarket talks to the backend gateway's polymarket surface.
// Positions render read-only here; order submission runs through the
// balance gate first because trades settle in USDC on Polygon.
package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the REST client for the gateway's polymarket endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new polymarket gateway client.
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
		return nil, fmt.Errorf("polymarket: get positions: %w", err)
	}

	var resp struct {
		Positions []RawPosition `json:"positions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("polymarket: decode positions: %w", err)
	}

	return resp.Positions, nil
}

// OrderRequest is a market order submission forwarded to the gateway after
// the balance gate has passed.
type OrderRequest struct {
	ConditionID string  `json:"conditionId"`
	Outcome     string  `json:"outcome"`
	Side        string  `json:"side"`
	Size        float64 `json:"size"`
	Price       float64 `json:"price"`
}

// OrderResponse is the gateway's order submission envelope.
type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

// PlaceOrder submits an order for execution. Callers must run the balance
// gate before invoking this; the gateway does not re-check funding.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("polymarket: place order: %w", err)
	}

	var resp OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderResponse{}, fmt.Errorf("polymarket: decode order response: %w", err)
	}
	return resp, nil
}

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
