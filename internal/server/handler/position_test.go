package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

type fakePositionService struct {
	positions []domain.Position
	orders    []domain.OpenOrder
	err       error
}

func (f *fakePositionService) GetPositions(ctx context.Context) ([]domain.Position, error) {
	return f.positions, f.err
}

func (f *fakePositionService) GetOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	return f.orders, f.err
}

type fakeCloseService struct {
	result   domain.CloseResult
	closeErr error

	summary     domain.BulkCloseSummary
	closeAllErr error

	pending bool

	gotExchange domain.Exchange
	gotSymbol   string
}

func (f *fakeCloseService) CloseOne(ctx context.Context, exchange domain.Exchange, rawSymbol string) (domain.CloseResult, error) {
	f.gotExchange = exchange
	f.gotSymbol = rawSymbol
	return f.result, f.closeErr
}

func (f *fakeCloseService) CloseAll(ctx context.Context) (domain.BulkCloseSummary, error) {
	return f.summary, f.closeAllErr
}

func (f *fakeCloseService) Pending() bool { return f.pending }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListPositions(t *testing.T) {
	t.Run("returns the aggregated list", func(t *testing.T) {
		h := NewPositionHandler(&fakePositionService{
			positions: []domain.Position{{RawSymbol: "BTC-PERP", Exchange: domain.ExchangeHyperliquid}},
		}, &fakeCloseService{}, testLogger())

		rec := httptest.NewRecorder()
		h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Positions []domain.Position `json:"positions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Positions, 1)
		assert.Equal(t, "BTC-PERP", body.Positions[0].RawSymbol)
	})

	t.Run("empty list encodes as an array", func(t *testing.T) {
		h := NewPositionHandler(&fakePositionService{}, &fakeCloseService{}, testLogger())

		rec := httptest.NewRecorder()
		h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"positions":[]`)
	})

	t.Run("service failure is a 500", func(t *testing.T) {
		h := NewPositionHandler(&fakePositionService{err: errors.New("boom")}, &fakeCloseService{}, testLogger())

		rec := httptest.NewRecorder()
		h.ListPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCloseOne(t *testing.T) {
	t.Run("forwards exchange and raw symbol", func(t *testing.T) {
		closes := &fakeCloseService{result: domain.CloseResult{
			Target:  "BTC-PERP",
			Outcome: domain.CloseOutcomeClosed,
		}}
		h := NewPositionHandler(&fakePositionService{}, closes, testLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/positions/close",
			strings.NewReader(`{"exchange":"hyperliquid","symbol":"BTC-PERP"}`))
		h.CloseOne(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ExchangeHyperliquid, closes.gotExchange)
		assert.Equal(t, "BTC-PERP", closes.gotSymbol)
	})

	t.Run("unsupported exchange is a 400", func(t *testing.T) {
		closes := &fakeCloseService{closeErr: domain.ErrUnsupportedExchange}
		h := NewPositionHandler(&fakePositionService{}, closes, testLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/positions/close",
			strings.NewReader(`{"exchange":"polymarket","symbol":"0xabc"}`))
		h.CloseOne(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "hyperliquid")
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		h := NewPositionHandler(&fakePositionService{}, &fakeCloseService{}, testLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/positions/close",
			strings.NewReader(`{"exchange":"hyperliquid"}`))
		h.CloseOne(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("backend failure is a 502", func(t *testing.T) {
		closes := &fakeCloseService{closeErr: errors.New("backend down")}
		h := NewPositionHandler(&fakePositionService{}, closes, testLogger())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/positions/close",
			strings.NewReader(`{"exchange":"hyperliquid","symbol":"BTC-PERP"}`))
		h.CloseOne(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestCloseAll(t *testing.T) {
	t.Run("returns summary with toast", func(t *testing.T) {
		closes := &fakeCloseService{summary: domain.BulkCloseSummary{
			ClosedPositions: []domain.CloseResult{{Target: "BTC-PERP", Outcome: domain.CloseOutcomeClosed}},
		}}
		h := NewPositionHandler(&fakePositionService{}, closes, testLogger())

		rec := httptest.NewRecorder()
		h.CloseAll(rec, httptest.NewRequest(http.MethodPost, "/api/positions/close-all", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Toast string `json:"toast"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Closed 1 position(s).", body.Toast)
	})

	t.Run("total failure is a single 502", func(t *testing.T) {
		closes := &fakeCloseService{closeAllErr: errors.New("request failed")}
		h := NewPositionHandler(&fakePositionService{}, closes, testLogger())

		rec := httptest.NewRecorder()
		h.CloseAll(rec, httptest.NewRequest(http.MethodPost, "/api/positions/close-all", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPending(t *testing.T) {
	h := NewPositionHandler(&fakePositionService{}, &fakeCloseService{pending: true}, testLogger())

	rec := httptest.NewRecorder()
	h.Pending(rec, httptest.NewRequest(http.MethodGet, "/api/positions/close-all/pending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":true`)
}
