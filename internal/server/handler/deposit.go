package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joshnichols-lang/crossdesk/internal/deposit"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// DepositService defines the flow-session methods the deposit handler requires.
type DepositService interface {
	Open() string
	Close(flowID string)
	Snapshot(flowID string) (deposit.Snapshot, error)
	Quote(ctx context.Context, flowID, amount, tokenSymbol, recipient string) (deposit.Snapshot, error)
	Execute(ctx context.Context, flowID string) (deposit.Snapshot, error)
}

// DepositHandler serves the deposit dialog's quote/execute flow. One flow ID
// corresponds to one open dialog; DELETE is the dialog-close hook.
type DepositHandler struct {
	deposits DepositService
	logger   *slog.Logger
}

// NewDepositHandler creates a DepositHandler with the given service and logger.
func NewDepositHandler(deposits DepositService, logger *slog.Logger) *DepositHandler {
	return &DepositHandler{
		deposits: deposits,
		logger:   logger,
	}
}

// Open starts a new flow for a freshly opened dialog.
// POST /api/deposit/open
func (h *DepositHandler) Open(w http.ResponseWriter, r *http.Request) {
	flowID := h.deposits.Open()
	writeJSON(w, http.StatusCreated, map[string]string{"flowId": flowID})
}

// Get returns the current state of a flow.
// GET /api/deposit/{id}
func (h *DepositHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deposits.Snapshot(pathParam(r, "id"))
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// quoteRequest is the body for the "Get Quote" step.
type quoteRequest struct {
	Amount    string `json:"amount"`
	Token     string `json:"token"`
	Recipient string `json:"recipient"`
}

// Quote records the user's entries and fetches a bridge quote. Step-level
// failures (bad amount, network error) come back inside the snapshot's
// StepError, not as an HTTP error, because the dialog stays open on them.
// POST /api/deposit/{id}/quote
func (h *DepositHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.deposits.Quote(r.Context(), pathParam(r, "id"), req.Amount, req.Token, req.Recipient)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Execute submits the held quote for on-chain execution.
// POST /api/deposit/{id}/execute
func (h *DepositHandler) Execute(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deposits.Execute(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CloseFlow tears down a flow when its dialog closes. No flow state survives
// this, whatever step it was in.
// DELETE /api/deposit/{id}
func (h *DepositHandler) CloseFlow(w http.ResponseWriter, r *http.Request) {
	h.deposits.Close(pathParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func writeFlowError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown deposit flow")
		return
	}
	writeError(w, http.StatusInternalServerError, "deposit flow error")
}
