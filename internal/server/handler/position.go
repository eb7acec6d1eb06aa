package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// PositionService defines the read methods the position handler requires.
type PositionService interface {
	GetPositions(ctx context.Context) ([]domain.Position, error)
	GetOrders(ctx context.Context) ([]domain.OpenOrder, error)
}

// CloseService defines the mutating methods the position handler requires.
type CloseService interface {
	CloseOne(ctx context.Context, exchange domain.Exchange, rawSymbol string) (domain.CloseResult, error)
	CloseAll(ctx context.Context) (domain.BulkCloseSummary, error)
	Pending() bool
}

// PositionHandler serves the position grid and its close actions.
type PositionHandler struct {
	positions PositionService
	closes    CloseService
	logger    *slog.Logger
}

// NewPositionHandler creates a PositionHandler with the given services and logger.
func NewPositionHandler(positions PositionService, closes CloseService, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		closes:    closes,
		logger:    logger,
	}
}

// listPositionsResponse wraps the list positions response.
type listPositionsResponse struct {
	Positions []domain.Position `json:"positions"`
}

// ListPositions returns the aggregated cross-venue position list with
// protective orders attached.
// GET /api/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.GetPositions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list positions failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}

	if positions == nil {
		positions = []domain.Position{}
	}

	writeJSON(w, http.StatusOK, listPositionsResponse{Positions: positions})
}

// listOrdersResponse wraps the open-order list response.
type listOrdersResponse struct {
	Orders []domain.OpenOrder `json:"orders"`
}

// ListOrders returns the resting open orders.
// GET /api/orders
func (h *PositionHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.positions.GetOrders(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list orders failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	if orders == nil {
		orders = []domain.OpenOrder{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}

// closeOneRequest is the body for closing a single position.
type closeOneRequest struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
}

// CloseOne closes one position by its venue-native symbol.
// POST /api/positions/close
func (h *PositionHandler) CloseOne(w http.ResponseWriter, r *http.Request) {
	var req closeOneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Exchange == "" || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "exchange and symbol are required")
		return
	}

	result, err := h.closes.CloseOne(r.Context(), domain.Exchange(req.Exchange), req.Symbol)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedExchange) {
			writeError(w, http.StatusBadRequest, "close is only supported on hyperliquid")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: close one failed",
			slog.String("exchange", req.Exchange),
			slog.String("symbol", req.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "close request failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// closeAllResponse carries the partition plus the ready-made toast line.
type closeAllResponse struct {
	Summary domain.BulkCloseSummary `json:"summary"`
	Toast   string                  `json:"toast"`
}

// CloseAll closes every open position and cancels every resting order.
// POST /api/positions/close-all
func (h *PositionHandler) CloseAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.closes.CloseAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: close all failed",
			slog.String("error", err.Error()),
		)
		// Total failure: nothing is known to have succeeded, so the client
		// gets a single failure rather than a partial summary.
		writeError(w, http.StatusBadGateway, "close all request failed")
		return
	}

	writeJSON(w, http.StatusOK, closeAllResponse{
		Summary: summary,
		Toast:   summary.Toast(),
	})
}

// Pending reports whether a close-all is in flight, for disabling the
// trigger control.
// GET /api/positions/close-all/pending
func (h *PositionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"pending": h.closes.Pending()})
}
