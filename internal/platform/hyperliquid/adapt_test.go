package hyperliquid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestAdaptPosition(t *testing.T) {
	t.Run("short position from negative szi", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Coin:           "BTC-PERP",
			Szi:            "-0.5",
			EntryPx:        strPtr("60000"),
			PositionValue:  "30500",
			UnrealizedPnl:  "-250",
			ReturnOnEquity: "-0.05",
			Leverage:       RawLeverage{Type: "cross", Value: 10},
		})

		assert.Equal(t, "BTC", pos.Symbol)
		assert.Equal(t, "BTC-PERP", pos.RawSymbol)
		assert.Equal(t, domain.ExchangeHyperliquid, pos.Exchange)
		assert.Equal(t, domain.SideShort, pos.Side)
		assert.Equal(t, 0.5, pos.Size)
		assert.Equal(t, 60000.0, pos.EntryPrice)
		assert.Equal(t, 10, pos.Leverage)
		assert.InDelta(t, 61000.0, pos.CurrentPrice, 1e-9)
		assert.True(t, pos.ProtectionApplicable)
		assert.False(t, pos.Degraded)
	})

	t.Run("long position from positive szi", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Coin:          "ETH-PERP",
			Szi:           "2",
			PositionValue: "6000",
		})
		assert.Equal(t, domain.SideLong, pos.Side)
		assert.Equal(t, 2.0, pos.Size)
	})

	t.Run("malformed szi renders degraded instead of dropping", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{Coin: "SOL-PERP", Szi: "garbage"})
		assert.True(t, pos.Degraded)
		assert.Zero(t, pos.Size)
		assert.Equal(t, domain.SideLong, pos.Side)
	})

	t.Run("missing optional fields stay zero without degrading", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{Coin: "ETH-PERP", Szi: "1"})
		assert.False(t, pos.Degraded)
		assert.Zero(t, pos.EntryPrice)
		assert.Nil(t, pos.LiquidationPrice)
	})

	t.Run("liquidation price parsed when present", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			Coin:          "BTC-PERP",
			Szi:           "1",
			LiquidationPx: strPtr("52000"),
		})
		require.NotNil(t, pos.LiquidationPrice)
		assert.Equal(t, 52000.0, *pos.LiquidationPrice)
	})
}

func TestRawLeverageUnmarshal(t *testing.T) {
	t.Run("bare number", func(t *testing.T) {
		var l RawLeverage
		require.NoError(t, json.Unmarshal([]byte(`20`), &l))
		assert.Equal(t, 20, l.Value)
		assert.Empty(t, l.Type)
	})

	t.Run("object form", func(t *testing.T) {
		var l RawLeverage
		require.NoError(t, json.Unmarshal([]byte(`{"type":"cross","value":5}`), &l))
		assert.Equal(t, 5, l.Value)
		assert.Equal(t, "cross", l.Type)
	})

	t.Run("invalid payload", func(t *testing.T) {
		var l RawLeverage
		assert.Error(t, json.Unmarshal([]byte(`"cross"`), &l))
	})
}

func TestAdaptOpenOrder(t *testing.T) {
	t.Run("trigger price preferred", func(t *testing.T) {
		order := AdaptOpenOrder(RawOpenOrder{
			Coin:           "BTC-PERP",
			OrderType:      "Stop Market",
			TriggerPx:      "55000",
			LimitPx:        "54000",
			ReduceOnly:     true,
			IsPositionTPSL: true,
			Oid:            42,
		})
		assert.Equal(t, 55000.0, order.TriggerPrice)
		assert.True(t, order.ReduceOnly)
		assert.True(t, order.PositionTPSL)
	})

	t.Run("limit price fallback for non-trigger orders", func(t *testing.T) {
		order := AdaptOpenOrder(RawOpenOrder{
			Coin:      "BTC-PERP",
			OrderType: "Take Profit Limit",
			TriggerPx: "",
			LimitPx:   "70000",
		})
		assert.Equal(t, 70000.0, order.TriggerPrice)
	})
}
