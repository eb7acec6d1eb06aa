package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// walletGateway is the slice of the gateway client the balance service needs.
type walletGateway interface {
	GetBalances(ctx context.Context, wallet string) (domain.BalanceSnapshot, error)
	GetWalletAddresses(ctx context.Context, wallet string) (domain.WalletAddresses, error)
}

// BalanceService owns the balance fetch-and-replace cycle. The trade guard
// and the display read from the cache; only this service writes it.
type BalanceService struct {
	gw     walletGateway
	cache  domain.BalanceCache
	bus    domain.SignalBus
	wallet string
	logger *slog.Logger
}

// NewBalanceService creates a BalanceService with all required dependencies.
func NewBalanceService(
	gw walletGateway,
	cache domain.BalanceCache,
	bus domain.SignalBus,
	wallet string,
	logger *slog.Logger,
) *BalanceService {
	return &BalanceService{
		gw:     gw,
		cache:  cache,
		bus:    bus,
		wallet: wallet,
		logger: logger.With(slog.String("component", "balance_service")),
	}
}

// Refresh fetches the latest balances and replaces the cached snapshot.
func (s *BalanceService) Refresh(ctx context.Context) error {
	snap, err := s.gw.GetBalances(ctx, s.wallet)
	if err != nil {
		return fmt.Errorf("balance_service: fetch balances: %w", err)
	}
	if err := s.cache.SetSnapshot(ctx, s.wallet, snap); err != nil {
		return fmt.Errorf("balance_service: cache snapshot: %w", err)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":      "balances_refreshed",
		"usdc":       snap.USDC,
		"matic":      snap.Matic,
		"fetched_at": snap.FetchedAt.Format(time.RFC3339Nano),
	})
	if err := s.bus.Publish(ctx, "balances", evt); err != nil {
		s.logger.WarnContext(ctx, "publish balance event failed",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// GetSnapshot returns the cached balance snapshot, fetching on a miss.
func (s *BalanceService) GetSnapshot(ctx context.Context) (domain.BalanceSnapshot, error) {
	snap, err := s.cache.GetSnapshot(ctx, s.wallet)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.BalanceSnapshot{}, fmt.Errorf("balance_service: get snapshot: %w", err)
	}

	if err := s.Refresh(ctx); err != nil {
		return domain.BalanceSnapshot{}, err
	}
	snap, err = s.cache.GetSnapshot(ctx, s.wallet)
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("balance_service: get snapshot after refresh: %w", err)
	}
	return snap, nil
}

// GetAddresses returns the embedded-wallet addresses, fetching and caching on
// a miss. Addresses rarely change, so they are cached without expiry.
func (s *BalanceService) GetAddresses(ctx context.Context) (domain.WalletAddresses, error) {
	addrs, err := s.cache.GetAddresses(ctx, s.wallet)
	if err == nil {
		return addrs, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.WalletAddresses{}, fmt.Errorf("balance_service: get addresses: %w", err)
	}

	addrs, err = s.gw.GetWalletAddresses(ctx, s.wallet)
	if err != nil {
		return domain.WalletAddresses{}, fmt.Errorf("balance_service: fetch addresses: %w", err)
	}
	if err := s.cache.SetAddresses(ctx, s.wallet, addrs); err != nil {
		s.logger.WarnContext(ctx, "cache addresses failed",
			slog.String("error", err.Error()),
		)
	}
	return addrs, nil
}

// Run refreshes balances on a fixed interval until the context is cancelled.
// Call in a goroutine. The launcher depends on this cadence: the bridge flow
// has no completion callback, so only the next poll picks up bridged funds.
func (s *BalanceService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.ErrorContext(ctx, "balance refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
