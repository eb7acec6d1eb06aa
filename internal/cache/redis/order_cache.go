package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

// OrderCache implements domain.OrderCache using Redis hashes, mirroring the
// position cache layout at key "orders:{wallet}". Orders refresh on their own
// cadence, so the two caches may briefly disagree; the read-time join
// tolerates that.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOrderCache creates an OrderCache backed by the given Client. A zero ttl
// disables expiry.
func NewOrderCache(c *Client, ttl time.Duration) *OrderCache {
	return &OrderCache{rdb: c.Underlying(), ttl: ttl}
}

func orderKey(wallet string) string {
	return "orders:" + wallet
}

// Replace stores the full open-order list for a wallet, overwriting whatever
// was there before.
func (oc *OrderCache) Replace(ctx context.Context, wallet string, orders []domain.OpenOrder, fetchedAt time.Time) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("redis: marshal orders %s: %w", wallet, err)
	}

	key := orderKey(wallet)
	fields := map[string]interface{}{
		"data":       data,
		"fetched_at": strconv.FormatInt(fetchedAt.UnixNano(), 10),
	}

	pipe := oc.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if oc.ttl > 0 {
		pipe.Expire(ctx, key, oc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: replace orders %s: %w", wallet, err)
	}
	return nil
}

// Get retrieves the cached open-order list and its fetch time for a wallet.
// It returns domain.ErrNotFound when the key does not exist.
func (oc *OrderCache) Get(ctx context.Context, wallet string) ([]domain.OpenOrder, time.Time, error) {
	vals, err := oc.rdb.HGetAll(ctx, orderKey(wallet)).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: get orders %s: %w", wallet, err)
	}
	if len(vals) == 0 {
		return nil, time.Time{}, domain.ErrNotFound
	}

	data, ok := vals["data"]
	if !ok {
		return nil, time.Time{}, domain.ErrNotFound
	}
	var orders []domain.OpenOrder
	if err := json.Unmarshal([]byte(data), &orders); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: unmarshal orders %s: %w", wallet, err)
	}

	fetchedAt, err := parseFetchedAt(vals)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: orders %s: %w", wallet, err)
	}

	return orders, fetchedAt, nil
}

// Invalidate removes the cached open-order list for a wallet.
func (oc *OrderCache) Invalidate(ctx context.Context, wallet string) error {
	if err := oc.rdb.Del(ctx, orderKey(wallet)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate orders %s: %w", wallet, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.OrderCache = (*OrderCache)(nil)
