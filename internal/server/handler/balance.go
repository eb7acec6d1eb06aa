package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// BalanceService defines the methods the balance handler requires.
type BalanceService interface {
	GetSnapshot(ctx context.Context) (domain.BalanceSnapshot, error)
	GetAddresses(ctx context.Context) (domain.WalletAddresses, error)
}

// BalanceHandler serves wallet balance and address endpoints.
type BalanceHandler struct {
	balances BalanceService
	logger   *slog.Logger
}

// NewBalanceHandler creates a BalanceHandler with the given service and logger.
func NewBalanceHandler(balances BalanceService, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{
		balances: balances,
		logger:   logger,
	}
}

// GetBalances returns the cached balance snapshot.
// GET /api/balances
func (h *BalanceHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	snap, err := h.balances.GetSnapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get balances failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get balances")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetWallet returns the embedded-wallet addresses per venue.
// GET /api/wallet
func (h *BalanceHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.balances.GetAddresses(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get wallet failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get wallet addresses")
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}
