package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/notify"
)

// closer is the mutating surface of the Hyperliquid client.
type closer interface {
	ClosePosition(ctx context.Context, coin string) (domain.CloseResult, error)
	CloseAll(ctx context.Context) (domain.BulkCloseSummary, error)
}

// refresher re-fetches positions and orders after a mutating action.
type refresher interface {
	Invalidate(ctx context.Context) error
	RefreshPositions(ctx context.Context) error
	RefreshOrders(ctx context.Context) error
}

// CloseService orchestrates close-one and close-all against the backend. The
// backend owns per-item atomicity; this service only submits, records the
// returned partition, and triggers the full refetch.
type CloseService struct {
	hl        closer
	positions refresher
	log       domain.CloseLogStore
	bus       domain.SignalBus
	notifier  *notify.Notifier
	logger    *slog.Logger

	// pending is advisory debouncing for the close-all trigger control,
	// not a correctness guarantee against concurrent close-alls.
	pending atomic.Bool
}

// NewCloseService creates a CloseService with all required dependencies. The
// close log store and notifier may be nil when persistence or alerting is not
// wired.
func NewCloseService(
	hl closer,
	positions refresher,
	log domain.CloseLogStore,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *CloseService {
	return &CloseService{
		hl:        hl,
		positions: positions,
		log:       log,
		bus:       bus,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "close_service")),
	}
}

// Pending reports whether a close-all is in flight. Callers use it to disable
// the trigger control.
func (s *CloseService) Pending() bool {
	return s.pending.Load()
}

// CloseOne closes a single position by its venue-native symbol. Only
// Hyperliquid is wired for programmatic close; any other exchange is a caller
// error and produces no network call.
func (s *CloseService) CloseOne(ctx context.Context, exchange domain.Exchange, rawSymbol string) (domain.CloseResult, error) {
	if exchange != domain.ExchangeHyperliquid {
		return domain.CloseResult{}, fmt.Errorf("close_service: close %s on %s: %w",
			rawSymbol, exchange, domain.ErrUnsupportedExchange)
	}

	result, err := s.hl.ClosePosition(ctx, rawSymbol)
	if err != nil {
		return domain.CloseResult{}, fmt.Errorf("close_service: close %s: %w", rawSymbol, err)
	}

	summary := domain.BulkCloseSummary{}
	switch result.Outcome {
	case domain.CloseOutcomeClosed:
		summary.ClosedPositions = []domain.CloseResult{result}
	case domain.CloseOutcomeCancelledOrder:
		summary.CancelledOrders = []domain.CloseResult{result}
	default:
		summary.Errors = []domain.CloseResult{result}
	}

	s.finish(ctx, "close_one", exchange, summary)
	return result, nil
}

// CloseAll submits one close-all request and returns the backend's three-way
// partition. A total request failure returns an error without touching any
// local state, since nothing is known to have succeeded.
func (s *CloseService) CloseAll(ctx context.Context) (domain.BulkCloseSummary, error) {
	s.pending.Store(true)
	defer s.pending.Store(false)

	summary, err := s.hl.CloseAll(ctx)
	if err != nil {
		s.notify(ctx, "close_failed", "Close all failed", err.Error())
		return domain.BulkCloseSummary{}, fmt.Errorf("close_service: close all: %w", err)
	}

	s.finish(ctx, "close_all", domain.ExchangeHyperliquid, summary)
	return summary, nil
}

// finish runs the shared post-mutation path: refetch, audit log, alert,
// publish.
func (s *CloseService) finish(ctx context.Context, action string, exchange domain.Exchange, summary domain.BulkCloseSummary) {
	if err := s.positions.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "cache invalidate failed",
			slog.String("error", err.Error()),
		)
	}
	if err := s.positions.RefreshPositions(ctx); err != nil {
		s.logger.WarnContext(ctx, "post-close position refresh failed",
			slog.String("error", err.Error()),
		)
	}
	if err := s.positions.RefreshOrders(ctx); err != nil {
		s.logger.WarnContext(ctx, "post-close order refresh failed",
			slog.String("error", err.Error()),
		)
	}

	requestID := uuid.New().String()
	if s.log != nil {
		event := domain.CloseEvent{
			RequestID: requestID,
			Action:    action,
			Exchange:  exchange,
			Summary:   summary,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.log.Log(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "close event log failed",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.notify(ctx, action, "Positions closed", summary.Toast())

	evt, _ := json.Marshal(map[string]any{
		"event":      action,
		"request_id": requestID,
		"closed":     len(summary.ClosedPositions),
		"cancelled":  len(summary.CancelledOrders),
		"failed":     len(summary.Errors),
		"toast":      summary.Toast(),
	})
	if err := s.bus.Publish(ctx, "closes", evt); err != nil {
		s.logger.WarnContext(ctx, "publish close event failed",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "close action finished",
		slog.String("action", action),
		slog.String("request_id", requestID),
		slog.Int("closed", len(summary.ClosedPositions)),
		slog.Int("cancelled", len(summary.CancelledOrders)),
		slog.Int("failed", len(summary.Errors)),
	)
}

func (s *CloseService) notify(ctx context.Context, event, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
