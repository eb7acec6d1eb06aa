package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/hyperliquid"
	"github.com/joshnichols-lang/crossdesk/internal/platform/orderly"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

const testWallet = "0xwallet"

type fakeVenues struct {
	hlPositions []hyperliquid.RawPosition
	hlErr       error
	hlOrders    []hyperliquid.RawOpenOrder
	hlOrdersErr error

	orderlyPositions []orderly.RawPosition
	orderlyErr       error

	polyPositions []polymarket.RawPosition
	polyErr       error
}

func (f *fakeVenues) GetPositions(ctx context.Context, wallet string) ([]hyperliquid.RawPosition, error) {
	return f.hlPositions, f.hlErr
}

func (f *fakeVenues) GetOpenOrders(ctx context.Context, wallet string) ([]hyperliquid.RawOpenOrder, error) {
	return f.hlOrders, f.hlOrdersErr
}

type fakeOrderlyVenue struct{ f *fakeVenues }

func (v fakeOrderlyVenue) GetPositions(ctx context.Context, wallet string) ([]orderly.RawPosition, error) {
	return v.f.orderlyPositions, v.f.orderlyErr
}

type fakePolyVenue struct{ f *fakeVenues }

func (v fakePolyVenue) GetPositions(ctx context.Context, wallet string) ([]polymarket.RawPosition, error) {
	return v.f.polyPositions, v.f.polyErr
}

type fakePositionCache struct {
	mu        sync.Mutex
	positions []domain.Position
	fetchedAt time.Time
	populated bool
	replaces  int
	getErr    error
}

func (c *fakePositionCache) Replace(ctx context.Context, wallet string, positions []domain.Position, fetchedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = positions
	c.fetchedAt = fetchedAt
	c.populated = true
	c.replaces++
	return nil
}

func (c *fakePositionCache) Get(ctx context.Context, wallet string) ([]domain.Position, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, time.Time{}, c.getErr
	}
	if !c.populated {
		return nil, time.Time{}, domain.ErrNotFound
	}
	return c.positions, c.fetchedAt, nil
}

func (c *fakePositionCache) Invalidate(ctx context.Context, wallet string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = nil
	c.populated = false
	return nil
}

type fakeOrderCache struct {
	mu        sync.Mutex
	orders    []domain.OpenOrder
	fetchedAt time.Time
	populated bool
	getErr    error
}

func (c *fakeOrderCache) Replace(ctx context.Context, wallet string, orders []domain.OpenOrder, fetchedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = orders
	c.fetchedAt = fetchedAt
	c.populated = true
	return nil
}

func (c *fakeOrderCache) Get(ctx context.Context, wallet string) ([]domain.OpenOrder, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, time.Time{}, c.getErr
	}
	if !c.populated {
		return nil, time.Time{}, domain.ErrNotFound
	}
	return c.orders, c.fetchedAt, nil
}

func (c *fakeOrderCache) Invalidate(ctx context.Context, wallet string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = nil
	c.populated = false
	return nil
}

type fakeLocks struct {
	err error
}

func (l *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}

func newPositionService(venues *fakeVenues, positions *fakePositionCache, orders *fakeOrderCache, locks *fakeLocks) *PositionService {
	return NewPositionService(
		venues,
		fakeOrderlyVenue{venues},
		fakePolyVenue{venues},
		positions,
		orders,
		locks,
		&fakeBus{},
		testWallet,
		discardLogger(),
	)
}

func TestRefreshPositions(t *testing.T) {
	t.Run("all venues merge into one replacement", func(t *testing.T) {
		venues := &fakeVenues{
			hlPositions:      []hyperliquid.RawPosition{{Coin: "BTC-PERP", Szi: "1"}},
			orderlyPositions: []orderly.RawPosition{{Symbol: "PERP_ETH_USDC", PositionQty: 2}},
			polyPositions:    []polymarket.RawPosition{{ConditionID: "0xabc", Size: 10}},
		}
		cache := &fakePositionCache{}
		svc := newPositionService(venues, cache, &fakeOrderCache{}, &fakeLocks{})

		require.NoError(t, svc.RefreshPositions(context.Background()))
		assert.Len(t, cache.positions, 3)
		assert.Equal(t, 1, cache.replaces)
	})

	t.Run("one venue failure aborts the whole refresh", func(t *testing.T) {
		venues := &fakeVenues{
			hlPositions: []hyperliquid.RawPosition{{Coin: "BTC-PERP", Szi: "1"}},
			orderlyErr:  errors.New("orderly down"),
		}
		cache := &fakePositionCache{}
		svc := newPositionService(venues, cache, &fakeOrderCache{}, &fakeLocks{})

		require.Error(t, svc.RefreshPositions(context.Background()))
		assert.Zero(t, cache.replaces)
	})

	t.Run("held lock skips the cycle cleanly", func(t *testing.T) {
		cache := &fakePositionCache{}
		svc := newPositionService(&fakeVenues{}, cache, &fakeOrderCache{}, &fakeLocks{err: domain.ErrLockHeld})

		require.NoError(t, svc.RefreshPositions(context.Background()))
		assert.Zero(t, cache.replaces)
	})
}

func TestGetPositions(t *testing.T) {
	t.Run("cache miss triggers refresh", func(t *testing.T) {
		venues := &fakeVenues{
			hlPositions: []hyperliquid.RawPosition{{Coin: "BTC-PERP", Szi: "1"}},
		}
		cache := &fakePositionCache{}
		svc := newPositionService(venues, cache, &fakeOrderCache{}, &fakeLocks{})

		positions, err := svc.GetPositions(context.Background())
		require.NoError(t, err)
		assert.Len(t, positions, 1)
		assert.Equal(t, 1, cache.replaces)
	})

	t.Run("protective orders attach at read time", func(t *testing.T) {
		cache := &fakePositionCache{}
		orders := &fakeOrderCache{}
		svc := newPositionService(&fakeVenues{}, cache, orders, &fakeLocks{})

		require.NoError(t, cache.Replace(context.Background(), testWallet, []domain.Position{{
			RawSymbol:            "BTC-PERP",
			Exchange:             domain.ExchangeHyperliquid,
			ProtectionApplicable: true,
		}}, time.Now()))
		require.NoError(t, orders.Replace(context.Background(), testWallet, []domain.OpenOrder{{
			Coin:         "BTC-PERP",
			OrderType:    "Stop Market",
			TriggerPrice: 55000,
			ReduceOnly:   true,
			PositionTPSL: true,
		}}, time.Now()))

		positions, err := svc.GetPositions(context.Background())
		require.NoError(t, err)
		require.Len(t, positions, 1)
		require.NotNil(t, positions[0].StopLoss)
		assert.Equal(t, 55000.0, positions[0].StopLoss.TriggerOrLimitPrice)
	})

	t.Run("order cache failure attaches nothing", func(t *testing.T) {
		cache := &fakePositionCache{}
		require.NoError(t, cache.Replace(context.Background(), testWallet, []domain.Position{{
			RawSymbol: "BTC-PERP",
			Exchange:  domain.ExchangeHyperliquid,
		}}, time.Now()))
		orders := &fakeOrderCache{getErr: errors.New("redis down")}
		svc := newPositionService(&fakeVenues{}, cache, orders, &fakeLocks{})

		positions, err := svc.GetPositions(context.Background())
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Nil(t, positions[0].StopLoss)
	})
}

func TestInvalidate(t *testing.T) {
	cache := &fakePositionCache{}
	orders := &fakeOrderCache{}
	require.NoError(t, cache.Replace(context.Background(), testWallet, []domain.Position{{}}, time.Now()))
	require.NoError(t, orders.Replace(context.Background(), testWallet, []domain.OpenOrder{{}}, time.Now()))

	svc := newPositionService(&fakeVenues{}, cache, orders, &fakeLocks{})
	require.NoError(t, svc.Invalidate(context.Background()))

	_, _, err := cache.Get(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = orders.Get(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
