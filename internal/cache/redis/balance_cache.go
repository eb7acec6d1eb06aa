package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

// BalanceCache implements domain.BalanceCache using plain Redis string keys,
// one for the balance snapshot and one for the embedded-wallet addresses.
// Addresses change rarely, so they get no expiry; snapshots expire so a
// stalled poller cannot serve hours-old balances to the trade guard.
type BalanceCache struct {
	rdb         *redis.Client
	snapshotTTL time.Duration
}

// NewBalanceCache creates a BalanceCache backed by the given Client. A zero
// snapshotTTL disables expiry on balance snapshots.
func NewBalanceCache(c *Client, snapshotTTL time.Duration) *BalanceCache {
	return &BalanceCache{rdb: c.Underlying(), snapshotTTL: snapshotTTL}
}

func balanceKey(wallet string) string {
	return "balances:" + wallet
}

func addressKey(wallet string) string {
	return "addresses:" + wallet
}

// SetSnapshot stores the latest balance snapshot for a wallet.
func (bc *BalanceCache) SetSnapshot(ctx context.Context, wallet string, snap domain.BalanceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal balance snapshot %s: %w", wallet, err)
	}
	if err := bc.rdb.Set(ctx, balanceKey(wallet), data, bc.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set balance snapshot %s: %w", wallet, err)
	}
	return nil
}

// GetSnapshot retrieves the latest balance snapshot for a wallet. It returns
// domain.ErrNotFound when no snapshot is cached.
func (bc *BalanceCache) GetSnapshot(ctx context.Context, wallet string) (domain.BalanceSnapshot, error) {
	data, err := bc.rdb.Get(ctx, balanceKey(wallet)).Bytes()
	if err == redis.Nil {
		return domain.BalanceSnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("redis: get balance snapshot %s: %w", wallet, err)
	}

	var snap domain.BalanceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("redis: unmarshal balance snapshot %s: %w", wallet, err)
	}
	return snap, nil
}

// SetAddresses stores the embedded-wallet addresses for a wallet.
func (bc *BalanceCache) SetAddresses(ctx context.Context, wallet string, addrs domain.WalletAddresses) error {
	data, err := json.Marshal(addrs)
	if err != nil {
		return fmt.Errorf("redis: marshal addresses %s: %w", wallet, err)
	}
	if err := bc.rdb.Set(ctx, addressKey(wallet), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set addresses %s: %w", wallet, err)
	}
	return nil
}

// GetAddresses retrieves the embedded-wallet addresses for a wallet. It
// returns domain.ErrNotFound when no addresses are cached.
func (bc *BalanceCache) GetAddresses(ctx context.Context, wallet string) (domain.WalletAddresses, error) {
	data, err := bc.rdb.Get(ctx, addressKey(wallet)).Bytes()
	if err == redis.Nil {
		return domain.WalletAddresses{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.WalletAddresses{}, fmt.Errorf("redis: get addresses %s: %w", wallet, err)
	}

	var addrs domain.WalletAddresses
	if err := json.Unmarshal(data, &addrs); err != nil {
		return domain.WalletAddresses{}, fmt.Errorf("redis: unmarshal addresses %s: %w", wallet, err)
	}
	return addrs, nil
}

// Compile-time interface check.
var _ domain.BalanceCache = (*BalanceCache)(nil)
