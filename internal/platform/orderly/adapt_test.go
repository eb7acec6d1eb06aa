package orderly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func TestAdaptPosition(t *testing.T) {
	t.Run("short from negative qty", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Symbol:           "PERP_ETH_USDC",
			PositionQty:      -3,
			AverageOpenPrice: 3000,
			MarkPrice:        2900,
			UnsettledPnl:     300,
			Leverage:         5,
		})

		assert.Equal(t, "ETH", pos.Symbol)
		assert.Equal(t, "PERP_ETH_USDC", pos.RawSymbol)
		assert.Equal(t, domain.ExchangeOrderly, pos.Exchange)
		assert.Equal(t, domain.MarketTypePerpetual, pos.MarketType)
		assert.Equal(t, domain.SideShort, pos.Side)
		assert.Equal(t, 3.0, pos.Size)
		assert.Equal(t, 5, pos.Leverage)
		assert.InDelta(t, 3*2900.0, pos.PositionValue, 1e-9)
		assert.False(t, pos.Degraded)
	})

	t.Run("roe against committed margin", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Symbol:           "PERP_BTC_USDC",
			PositionQty:      1,
			AverageOpenPrice: 50000,
			MarkPrice:        51000,
			UnsettledPnl:     1000,
			Leverage:         10,
		})
		// margin = 1 * 50000 / 10 = 5000; roe = 1000 / 5000
		assert.InDelta(t, 0.2, pos.ROE, 1e-9)
	})

	t.Run("zero leverage leaves roe zero", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Symbol:           "PERP_BTC_USDC",
			PositionQty:      1,
			AverageOpenPrice: 50000,
			UnsettledPnl:     1000,
		})
		assert.Zero(t, pos.ROE)
	})

	t.Run("spot symbol has no liquidation price", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Symbol:      "SPOT_SOL_USDC",
			PositionQty: 10,
			EstLiqPrice: floatPtr(12),
		})
		assert.Equal(t, domain.MarketTypeSpot, pos.MarketType)
		assert.Nil(t, pos.LiquidationPrice)
	})

	t.Run("perp liquidation price carried over", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Symbol:      "PERP_SOL_USDC",
			PositionQty: 10,
			EstLiqPrice: floatPtr(12),
		})
		require.NotNil(t, pos.LiquidationPrice)
		assert.Equal(t, 12.0, *pos.LiquidationPrice)
	})
}
