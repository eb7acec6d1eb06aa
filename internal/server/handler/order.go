package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
	"github.com/joshnichols-lang/crossdesk/internal/service"
)

// OrderService defines the gated submit method the order handler requires.
type OrderService interface {
	Submit(ctx context.Context, req polymarket.OrderRequest, requiredAmount float64) (service.SubmitResult, error)
}

// OrderHandler serves the balance-gated order submission endpoint.
type OrderHandler struct {
	orders OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler with the given service and logger.
func NewOrderHandler(orders OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// submitOrderRequest is the body for a gated order submission.
// RequiredAmount is the USDC the order needs on the venue's chain.
type submitOrderRequest struct {
	Order          polymarket.OrderRequest `json:"order"`
	RequiredAmount float64                 `json:"requiredAmount"`
}

// SubmitOrder runs the balance guard and either places the order or returns
// the gating result with a bridge URL. A gated submission is not an error:
// the response tells the caller what to bridge and to retry afterwards.
// POST /api/orders
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RequiredAmount <= 0 {
		writeError(w, http.StatusBadRequest, "requiredAmount must be positive")
		return
	}

	result, err := h.orders.Submit(r.Context(), req.Order, req.RequiredAmount)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: submit order failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "order submission failed")
		return
	}

	status := http.StatusOK
	if result.Gated {
		// 402 marks the gated path so clients can branch without inspecting
		// the body shape.
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, result)
}
