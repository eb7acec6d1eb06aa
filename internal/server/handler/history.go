package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// HistoryHandler serves the audit history of close actions and executed
// deposits.
type HistoryHandler struct {
	closes   domain.CloseLogStore
	deposits domain.DepositStore
	logger   *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler with the given stores and logger.
func NewHistoryHandler(closes domain.CloseLogStore, deposits domain.DepositStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		closes:   closes,
		deposits: deposits,
		logger:   logger,
	}
}

// ListCloses returns logged close actions, newest first.
// GET /api/history/closes?limit=50&offset=0&since=RFC3339&until=RFC3339
func (h *HistoryHandler) ListCloses(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	parseTimeRange(r, &opts)

	events, err := h.closes.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list close history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list close history")
		return
	}

	if events == nil {
		events = []domain.CloseEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ListDeposits returns executed deposits, newest first.
// GET /api/history/deposits?limit=50&offset=0&since=RFC3339&until=RFC3339
func (h *HistoryHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	parseTimeRange(r, &opts)

	records, err := h.deposits.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list deposit history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list deposit history")
		return
	}

	if records == nil {
		records = []domain.DepositRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deposits": records})
}

// parseTimeRange fills Since/Until from RFC3339 query parameters, ignoring
// unparseable values.
func parseTimeRange(r *http.Request, opts *domain.ListOpts) {
	q := r.URL.Query()
	if v := q.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.Since = &t
		}
	}
	if v := q.Get("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.Until = &t
		}
	}
}
