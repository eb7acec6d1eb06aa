package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

type fakePlacer struct {
	resp     polymarket.OrderResponse
	err      error
	received []polymarket.OrderRequest
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, req polymarket.OrderRequest) (polymarket.OrderResponse, error) {
	f.received = append(f.received, req)
	return f.resp, f.err
}

type fakeBalances struct {
	snap    domain.BalanceSnapshot
	snapErr error
	addrs   domain.WalletAddresses
	addrErr error
}

func (f *fakeBalances) GetSnapshot(ctx context.Context) (domain.BalanceSnapshot, error) {
	return f.snap, f.snapErr
}

func (f *fakeBalances) GetAddresses(ctx context.Context) (domain.WalletAddresses, error) {
	return f.addrs, f.addrErr
}

func newOrderService(placer *fakePlacer, balances *fakeBalances) *OrderService {
	return NewOrderService(
		placer,
		balances,
		NewTradeGuard(0.01),
		bridge.NewLauncher("https://jumper.exchange", 137),
		discardLogger(),
	)
}

func TestSubmit(t *testing.T) {
	polygonAddr := "0x52908400098527886E0F7030069857D2E4169EE7"

	t.Run("sufficient balance places the order", func(t *testing.T) {
		placer := &fakePlacer{resp: polymarket.OrderResponse{}}
		svc := newOrderService(placer, &fakeBalances{
			snap: domain.BalanceSnapshot{USDC: 100, Matic: 1},
		})

		result, err := svc.Submit(context.Background(), polymarket.OrderRequest{}, 20)
		require.NoError(t, err)
		assert.False(t, result.Gated)
		assert.NotNil(t, result.Order)
		assert.Len(t, placer.received, 1)
	})

	t.Run("insufficient usdc gates with bridge url", func(t *testing.T) {
		placer := &fakePlacer{}
		svc := newOrderService(placer, &fakeBalances{
			snap:  domain.BalanceSnapshot{USDC: 5, Matic: 1},
			addrs: domain.WalletAddresses{Polygon: polygonAddr},
		})

		result, err := svc.Submit(context.Background(), polymarket.OrderRequest{}, 20)
		require.NoError(t, err)
		assert.True(t, result.Gated)
		assert.Empty(t, placer.received)
		assert.InDelta(t, 15.0, result.Check.RequiredUSDCAmount, 1e-9)
		assert.Contains(t, result.BridgeURL, "destinationAddress="+polygonAddr)
	})

	t.Run("address lookup failure still gates", func(t *testing.T) {
		svc := newOrderService(&fakePlacer{}, &fakeBalances{
			snap:    domain.BalanceSnapshot{USDC: 5, Matic: 1},
			addrErr: errors.New("gateway down"),
		})

		result, err := svc.Submit(context.Background(), polymarket.OrderRequest{}, 20)
		require.NoError(t, err)
		assert.True(t, result.Gated)
		assert.Empty(t, result.BridgeURL)
	})

	t.Run("snapshot failure is an error", func(t *testing.T) {
		svc := newOrderService(&fakePlacer{}, &fakeBalances{
			snapErr: errors.New("cache down"),
		})

		_, err := svc.Submit(context.Background(), polymarket.OrderRequest{}, 20)
		assert.Error(t, err)
	})

	t.Run("placement failure surfaces", func(t *testing.T) {
		svc := newOrderService(&fakePlacer{err: errors.New("rejected")}, &fakeBalances{
			snap: domain.BalanceSnapshot{USDC: 100, Matic: 1},
		})

		_, err := svc.Submit(context.Background(), polymarket.OrderRequest{}, 20)
		assert.Error(t, err)
	})
}
