package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshnichols-lang/crossdesk/internal/aggregator"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/hyperliquid"
	"github.com/joshnichols-lang/crossdesk/internal/platform/orderly"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

// hyperliquidReader is the read surface of the Hyperliquid client the
// position service depends on.
type hyperliquidReader interface {
	GetPositions(ctx context.Context, wallet string) ([]hyperliquid.RawPosition, error)
	GetOpenOrders(ctx context.Context, wallet string) ([]hyperliquid.RawOpenOrder, error)
}

type orderlyReader interface {
	GetPositions(ctx context.Context, wallet string) ([]orderly.RawPosition, error)
}

type polymarketReader interface {
	GetPositions(ctx context.Context, wallet string) ([]polymarket.RawPosition, error)
}

// PositionService owns the fetch-and-replace cycles for positions and open
// orders. The two refresh on independent cadences; reads join them
// best-effort, tolerating one stale cycle between them.
type PositionService struct {
	hl      hyperliquidReader
	orderly orderlyReader
	poly    polymarketReader

	positions domain.PositionCache
	orders    domain.OrderCache
	locks     domain.LockManager
	bus       domain.SignalBus

	wallet string
	logger *slog.Logger
}

// NewPositionService creates a PositionService with all required dependencies.
func NewPositionService(
	hl hyperliquidReader,
	orderlyClient orderlyReader,
	poly polymarketReader,
	positions domain.PositionCache,
	orders domain.OrderCache,
	locks domain.LockManager,
	bus domain.SignalBus,
	wallet string,
	logger *slog.Logger,
) *PositionService {
	return &PositionService{
		hl:        hl,
		orderly:   orderlyClient,
		poly:      poly,
		positions: positions,
		orders:    orders,
		locks:     locks,
		bus:       bus,
		wallet:    wallet,
		logger:    logger.With(slog.String("component", "position_service")),
	}
}

// RefreshPositions fetches every venue concurrently, adapts the batch, and
// replaces the cached list in one write. Any venue failure aborts the whole
// refresh: a partial snapshot mixing fresh and missing venues would read as
// closed positions.
func (s *PositionService) RefreshPositions(ctx context.Context) error {
	unlock, err := s.locks.Acquire(ctx, "refresh:positions:"+s.wallet, 30*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			// Another replica is already refreshing this wallet.
			s.logger.DebugContext(ctx, "position refresh lock held, skipping")
			return nil
		}
		return fmt.Errorf("position_service: acquire refresh lock: %w", err)
	}
	defer unlock()

	var batch aggregator.RawBatch

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.hl.GetPositions(gctx, s.wallet)
		if err != nil {
			return fmt.Errorf("position_service: hyperliquid positions: %w", err)
		}
		batch.Hyperliquid = raw
		return nil
	})
	g.Go(func() error {
		raw, err := s.orderly.GetPositions(gctx, s.wallet)
		if err != nil {
			return fmt.Errorf("position_service: orderly positions: %w", err)
		}
		batch.Orderly = raw
		return nil
	})
	g.Go(func() error {
		raw, err := s.poly.GetPositions(gctx, s.wallet)
		if err != nil {
			return fmt.Errorf("position_service: polymarket positions: %w", err)
		}
		batch.Polymarket = raw
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	adapted := aggregator.Adapt(batch)
	fetchedAt := time.Now().UTC()
	if err := s.positions.Replace(ctx, s.wallet, adapted, fetchedAt); err != nil {
		return fmt.Errorf("position_service: replace cache: %w", err)
	}

	s.publish(ctx, "positions", map[string]any{
		"event":      "positions_refreshed",
		"count":      len(adapted),
		"fetched_at": fetchedAt.Format(time.RFC3339Nano),
	})

	return nil
}

// RefreshOrders fetches Hyperliquid open orders and replaces the cached list.
// Orders refresh independently of positions.
func (s *PositionService) RefreshOrders(ctx context.Context) error {
	raw, err := s.hl.GetOpenOrders(ctx, s.wallet)
	if err != nil {
		return fmt.Errorf("position_service: hyperliquid open orders: %w", err)
	}

	adapted := aggregator.AdaptOrders(raw)
	fetchedAt := time.Now().UTC()
	if err := s.orders.Replace(ctx, s.wallet, adapted, fetchedAt); err != nil {
		return fmt.Errorf("position_service: replace order cache: %w", err)
	}

	s.publish(ctx, "positions", map[string]any{
		"event":      "orders_refreshed",
		"count":      len(adapted),
		"fetched_at": fetchedAt.Format(time.RFC3339Nano),
	})

	return nil
}

// GetPositions returns the cached position list with protective orders
// attached at read time. A position-cache miss triggers a refresh; an
// order-cache miss is tolerated and the join simply attaches nothing, since
// the two caches refresh on independent schedules.
func (s *PositionService) GetPositions(ctx context.Context) ([]domain.Position, error) {
	positions, _, err := s.positions.Get(ctx, s.wallet)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.RefreshPositions(ctx); err != nil {
			return nil, err
		}
		positions, _, err = s.positions.Get(ctx, s.wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("position_service: get positions: %w", err)
	}

	orders, _, err := s.orders.Get(ctx, s.wallet)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "order cache read failed, attaching none",
			slog.String("error", err.Error()),
		)
	}

	return aggregator.Attach(positions, orders), nil
}

// GetOrders returns the cached open-order list, refreshing on a miss.
func (s *PositionService) GetOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	orders, _, err := s.orders.Get(ctx, s.wallet)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.RefreshOrders(ctx); err != nil {
			return nil, err
		}
		orders, _, err = s.orders.Get(ctx, s.wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("position_service: get orders: %w", err)
	}
	return orders, nil
}

// Invalidate drops both caches so the next read refetches. Used after
// mutating close actions.
func (s *PositionService) Invalidate(ctx context.Context) error {
	if err := s.positions.Invalidate(ctx, s.wallet); err != nil {
		return fmt.Errorf("position_service: invalidate positions: %w", err)
	}
	if err := s.orders.Invalidate(ctx, s.wallet); err != nil {
		return fmt.Errorf("position_service: invalidate orders: %w", err)
	}
	return nil
}

// RunPositionPoller refreshes positions on a fixed interval until the context
// is cancelled. Call in a goroutine.
func (s *PositionService) RunPositionPoller(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshPositions(ctx); err != nil {
				s.logger.ErrorContext(ctx, "position refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOrderPoller refreshes open orders on a fixed interval until the context
// is cancelled. Call in a goroutine.
func (s *PositionService) RunOrderPoller(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshOrders(ctx); err != nil {
				s.logger.ErrorContext(ctx, "order refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (s *PositionService) publish(ctx context.Context, channel string, payload map[string]any) {
	evt, _ := json.Marshal(payload)
	if err := s.bus.Publish(ctx, channel, evt); err != nil {
		s.logger.WarnContext(ctx, "publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
