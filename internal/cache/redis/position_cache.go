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

// PositionCache implements domain.PositionCache using Redis hashes.
// Each wallet's positions are stored as a hash at key "positions:{wallet}"
// with fields "data" (JSON array) and "fetched_at" (Unix nanosecond
// timestamp). Writes replace the whole list so readers never observe a
// half-refreshed snapshot.
type PositionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPositionCache creates a PositionCache backed by the given Client. A zero
// ttl disables expiry.
func NewPositionCache(c *Client, ttl time.Duration) *PositionCache {
	return &PositionCache{rdb: c.Underlying(), ttl: ttl}
}

func positionKey(wallet string) string {
	return "positions:" + wallet
}

// Replace stores the full position list for a wallet, overwriting whatever
// was there before.
func (pc *PositionCache) Replace(ctx context.Context, wallet string, positions []domain.Position, fetchedAt time.Time) error {
	data, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("redis: marshal positions %s: %w", wallet, err)
	}

	key := positionKey(wallet)
	fields := map[string]interface{}{
		"data":       data,
		"fetched_at": strconv.FormatInt(fetchedAt.UnixNano(), 10),
	}

	pipe := pc.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if pc.ttl > 0 {
		pipe.Expire(ctx, key, pc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: replace positions %s: %w", wallet, err)
	}
	return nil
}

// Get retrieves the cached position list and its fetch time for a wallet.
// It returns domain.ErrNotFound when the key does not exist.
func (pc *PositionCache) Get(ctx context.Context, wallet string) ([]domain.Position, time.Time, error) {
	vals, err := pc.rdb.HGetAll(ctx, positionKey(wallet)).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: get positions %s: %w", wallet, err)
	}
	if len(vals) == 0 {
		return nil, time.Time{}, domain.ErrNotFound
	}

	data, ok := vals["data"]
	if !ok {
		return nil, time.Time{}, domain.ErrNotFound
	}
	var positions []domain.Position
	if err := json.Unmarshal([]byte(data), &positions); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: unmarshal positions %s: %w", wallet, err)
	}

	fetchedAt, err := parseFetchedAt(vals)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: positions %s: %w", wallet, err)
	}

	return positions, fetchedAt, nil
}

// Invalidate removes the cached position list for a wallet.
func (pc *PositionCache) Invalidate(ctx context.Context, wallet string) error {
	if err := pc.rdb.Del(ctx, positionKey(wallet)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate positions %s: %w", wallet, err)
	}
	return nil
}

func parseFetchedAt(vals map[string]string) (time.Time, error) {
	tsStr, ok := vals["fetched_at"]
	if !ok {
		return time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse fetched_at: %w", err)
	}
	return time.Unix(0, tsNano), nil
}

// Compile-time interface check.
var _ domain.PositionCache = (*PositionCache)(nil)
