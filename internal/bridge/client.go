package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// QuoteRequest describes one cross-chain transfer to be quoted. Amount is the
// exact smallest-unit integer; the aggregator API never sees decimals.
type QuoteRequest struct {
	FromChainID       int
	FromTokenAddress  string
	ToChainID         int
	ToTokenAddress    string
	Amount            *big.Int
	SlippageTolerance float64
}

// Quote is a priced route returned by the aggregator. Raw holds the full
// quote payload untouched so execution can resubmit it verbatim.
type Quote struct {
	ID       string
	ToAmount string
	Tool     string
	Raw      json.RawMessage
}

// Client is the REST client for the bridge aggregator API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new bridge aggregator client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetQuote fetches a route quote for the given transfer.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return Quote{}, fmt.Errorf("bridge: quote amount must be positive")
	}

	params := url.Values{}
	params.Set("fromChainId", strconv.Itoa(req.FromChainID))
	params.Set("fromTokenAddress", req.FromTokenAddress)
	params.Set("toChainId", strconv.Itoa(req.ToChainID))
	params.Set("toTokenAddress", req.ToTokenAddress)
	params.Set("amount", req.Amount.String())
	params.Set("slippage", strconv.FormatFloat(req.SlippageTolerance, 'f', -1, 64))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("bridge: create quote request: %w", err)
	}

	body, err := c.do(httpReq)
	if err != nil {
		return Quote{}, fmt.Errorf("bridge: get quote: %w", err)
	}

	var parsed struct {
		ID       string `json:"id"`
		Tool     string `json:"tool"`
		Estimate struct {
			ToAmount string `json:"toAmount"`
		} `json:"estimate"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("bridge: decode quote: %w", err)
	}

	return Quote{
		ID:       parsed.ID,
		ToAmount: parsed.Estimate.ToAmount,
		Tool:     parsed.Tool,
		Raw:      json.RawMessage(body),
	}, nil
}

// ExecuteBridge submits a previously fetched quote for on-chain execution and
// returns the transaction hash.
func (c *Client) ExecuteBridge(ctx context.Context, quote Quote, recipient string) (string, error) {
	if len(quote.Raw) == 0 {
		return "", fmt.Errorf("bridge: execute without a quote")
	}
	if !common.IsHexAddress(recipient) {
		return "", fmt.Errorf("bridge: invalid recipient address %q", recipient)
	}

	payload := map[string]any{
		"quote":     quote.Raw,
		"recipient": recipient,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("bridge: marshal execute payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("bridge: create execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq)
	if err != nil {
		return "", fmt.Errorf("bridge: execute: %w", err)
	}

	var parsed struct {
		TxHash string `json:"txHash"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("bridge: decode execute response: %w", err)
	}
	if parsed.TxHash == "" {
		return "", fmt.Errorf("bridge: execute returned no transaction hash")
	}

	return parsed.TxHash, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
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
