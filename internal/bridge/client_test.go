package bridge

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote(t *testing.T) {
	t.Run("builds query and decodes quote", func(t *testing.T) {
		var gotQuery map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/quote", r.URL.Path)
			gotQuery = map[string]string{}
			for k := range r.URL.Query() {
				gotQuery[k] = r.URL.Query().Get(k)
			}
			_, _ = w.Write([]byte(`{"id":"quote-1","tool":"stargate","estimate":{"toAmount":"99500000"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		quote, err := client.GetQuote(context.Background(), QuoteRequest{
			FromChainID:       1,
			FromTokenAddress:  "0xfrom",
			ToChainID:         137,
			ToTokenAddress:    "0xto",
			Amount:            big.NewInt(100000000),
			SlippageTolerance: 0.005,
		})
		require.NoError(t, err)

		assert.Equal(t, "quote-1", quote.ID)
		assert.Equal(t, "stargate", quote.Tool)
		assert.Equal(t, "99500000", quote.ToAmount)
		assert.NotEmpty(t, quote.Raw)

		assert.Equal(t, "1", gotQuery["fromChainId"])
		assert.Equal(t, "137", gotQuery["toChainId"])
		assert.Equal(t, "100000000", gotQuery["amount"])
		assert.Equal(t, "0.005", gotQuery["slippage"])
	})

	t.Run("rejects non-positive amounts before any request", func(t *testing.T) {
		client := NewClient("http://unused")
		_, err := client.GetQuote(context.Background(), QuoteRequest{Amount: big.NewInt(0)})
		assert.Error(t, err)
		_, err = client.GetQuote(context.Background(), QuoteRequest{})
		assert.Error(t, err)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no route found", http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.GetQuote(context.Background(), QuoteRequest{Amount: big.NewInt(1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestExecuteBridge(t *testing.T) {
	recipient := "0x52908400098527886E0F7030069857D2E4169EE7"
	heldQuote := Quote{ID: "quote-1", Raw: json.RawMessage(`{"id":"quote-1"}`)}

	t.Run("resubmits raw quote and returns tx hash", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/execute", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)

			var payload struct {
				Quote     json.RawMessage `json:"quote"`
				Recipient string          `json:"recipient"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.JSONEq(t, `{"id":"quote-1"}`, string(payload.Quote))
			assert.Equal(t, recipient, payload.Recipient)

			_, _ = w.Write([]byte(`{"txHash":"0xdeadbeef"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		txHash, err := client.ExecuteBridge(context.Background(), heldQuote, recipient)
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", txHash)
	})

	t.Run("empty quote is rejected", func(t *testing.T) {
		client := NewClient("http://unused")
		_, err := client.ExecuteBridge(context.Background(), Quote{}, recipient)
		assert.Error(t, err)
	})

	t.Run("invalid recipient is rejected", func(t *testing.T) {
		client := NewClient("http://unused")
		_, err := client.ExecuteBridge(context.Background(), heldQuote, "nope")
		assert.Error(t, err)
	})

	t.Run("missing tx hash is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.ExecuteBridge(context.Background(), heldQuote, recipient)
		assert.Error(t, err)
	})
}
