package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

// orderPlacer is the submit surface of the Polymarket client.
type orderPlacer interface {
	PlaceOrder(ctx context.Context, req polymarket.OrderRequest) (polymarket.OrderResponse, error)
}

// balanceReader provides the snapshot the guard checks against.
type balanceReader interface {
	GetSnapshot(ctx context.Context) (domain.BalanceSnapshot, error)
	GetAddresses(ctx context.Context) (domain.WalletAddresses, error)
}

// SubmitResult is the outcome of a gated order submission. When Gated is
// true, no order was placed; Check carries the deficit and BridgeURL points
// the user at the bridging flow for the recommended asset. The caller retries
// the original order after bridging completes.
type SubmitResult struct {
	Gated     bool
	Check     domain.BalanceCheckResult
	BridgeURL string
	Order     *polymarket.OrderResponse
}

// OrderService sits in front of order placement: every submit passes the
// balance guard first, and an insufficient balance hands off to the bridge
// launcher instead of reaching the venue.
type OrderService struct {
	poly     orderPlacer
	balances balanceReader
	guard    *TradeGuard
	launcher *bridge.Launcher
	logger   *slog.Logger
}

// NewOrderService creates an OrderService with all required dependencies.
func NewOrderService(
	poly orderPlacer,
	balances balanceReader,
	guard *TradeGuard,
	launcher *bridge.Launcher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		poly:     poly,
		balances: balances,
		guard:    guard,
		launcher: launcher,
		logger:   logger.With(slog.String("component", "order_service")),
	}
}

// Submit checks balances synchronously and either places the order or
// returns a gated result. requiredAmount is the USDC the order needs on the
// venue's chain. The guard never retries or polls; re-validation happens on
// the caller's next submit.
func (s *OrderService) Submit(ctx context.Context, req polymarket.OrderRequest, requiredAmount float64) (SubmitResult, error) {
	snap, err := s.balances.GetSnapshot(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("order_service: balance snapshot: %w", err)
	}

	check := s.guard.Check(requiredAmount, snap)
	if !check.Sufficient {
		result := SubmitResult{Gated: true, Check: check}

		addrs, err := s.balances.GetAddresses(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "address lookup for bridge handoff failed",
				slog.String("error", err.Error()),
			)
			return result, nil
		}
		bridgeURL, err := s.launcher.URL(addrs.Polygon)
		if err != nil {
			s.logger.WarnContext(ctx, "bridge url build failed",
				slog.String("error", err.Error()),
			)
			return result, nil
		}
		result.BridgeURL = bridgeURL

		s.logger.InfoContext(ctx, "order gated on balance",
			slog.Bool("needs_usdc", check.NeedsUSDC),
			slog.Bool("needs_matic", check.NeedsMatic),
			slog.Float64("required_usdc", check.RequiredUSDCAmount),
			slog.String("recommended_asset", check.RecommendedAsset),
		)
		return result, nil
	}

	resp, err := s.poly.PlaceOrder(ctx, req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("order_service: place order: %w", err)
	}

	return SubmitResult{Check: check, Order: &resp}, nil
}
