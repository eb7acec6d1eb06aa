// Package gateway talks to the backend's wallet surface: balance snapshots
// for the funding chain and the user's embedded-wallet deposit addresses.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// Client is the REST client for the gateway's wallet endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new wallet gateway client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetBalances returns the latest wallet balances for the funding chain.
func (c *Client) GetBalances(ctx context.Context, wallet string) (domain.BalanceSnapshot, error) {
	body, err := c.get(ctx, "/balances", wallet)
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("gateway: get balances: %w", err)
	}

	var resp struct {
		Balances struct {
			Polygon struct {
				USDC  float64 `json:"usdc"`
				Matic float64 `json:"matic"`
			} `json:"polygon"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("gateway: decode balances: %w", err)
	}

	return domain.BalanceSnapshot{
		USDC:      resp.Balances.Polygon.USDC,
		Matic:     resp.Balances.Polygon.Matic,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// GetWalletAddresses returns the user's embedded-wallet deposit addresses.
func (c *Client) GetWalletAddresses(ctx context.Context, wallet string) (domain.WalletAddresses, error) {
	body, err := c.get(ctx, "/wallet", wallet)
	if err != nil {
		return domain.WalletAddresses{}, fmt.Errorf("gateway: get wallet addresses: %w", err)
	}

	var resp struct {
		Wallet struct {
			HyperliquidAddress string `json:"hyperliquidAddress"`
			PolygonAddress     string `json:"polygonAddress"`
			SolanaAddress      string `json:"solanaAddress"`
			EvmAddress         string `json:"evmAddress"`
			BnbAddress         string `json:"bnbAddress"`
		} `json:"wallet"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.WalletAddresses{}, fmt.Errorf("gateway: decode wallet addresses: %w", err)
	}

	return domain.WalletAddresses{
		Hyperliquid: resp.Wallet.HyperliquidAddress,
		Polygon:     resp.Wallet.PolygonAddress,
		Solana:      resp.Wallet.SolanaAddress,
		EVM:         resp.Wallet.EvmAddress,
		BNB:         resp.Wallet.BnbAddress,
	}, nil
}

func (c *Client) get(ctx context.Context, path, wallet string) ([]byte, error) {
	params := url.Values{}
	params.Set("wallet", wallet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
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
