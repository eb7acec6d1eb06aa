package domain

import (
	"context"
	"time"
)

// PositionCache stores the latest adapted position list per wallet. Writes
// replace the full list - the refresh cycle never patches individual entries,
// so readers always see one venue-consistent snapshot.
type PositionCache interface {
	Replace(ctx context.Context, wallet string, positions []Position, fetchedAt time.Time) error
	Get(ctx context.Context, wallet string) ([]Position, time.Time, error)
	Invalidate(ctx context.Context, wallet string) error
}

// OrderCache stores the latest open-order list per wallet, refreshed on its
// own cadence independent of the position cache. The join between the two is
// best-effort by design.
type OrderCache interface {
	Replace(ctx context.Context, wallet string, orders []OpenOrder, fetchedAt time.Time) error
	Get(ctx context.Context, wallet string) ([]OpenOrder, time.Time, error)
	Invalidate(ctx context.Context, wallet string) error
}

// BalanceCache stores the latest wallet balance snapshot and embedded-wallet
// addresses.
type BalanceCache interface {
	SetSnapshot(ctx context.Context, wallet string, snap BalanceSnapshot) error
	GetSnapshot(ctx context.Context, wallet string) (BalanceSnapshot, error)
	SetAddresses(ctx context.Context, wallet string, addrs WalletAddresses) error
	GetAddresses(ctx context.Context, wallet string) (WalletAddresses, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking, used so overlapping refresh
// cycles across replicas do not fight over the same cache entry.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub fan-out from the refresh and close cycles to the
// WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
