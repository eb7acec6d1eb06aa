package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/hyperliquid"
	"github.com/joshnichols-lang/crossdesk/internal/platform/orderly"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

func TestAdapt(t *testing.T) {
	batch := RawBatch{
		Hyperliquid: []hyperliquid.RawPosition{
			{Coin: "BTC-PERP", Szi: "1"},
			{Coin: "ETH-PERP", Szi: "-2"},
		},
		Orderly: []orderly.RawPosition{
			{Symbol: "PERP_SOL_USDC", PositionQty: 5},
		},
		Polymarket: []polymarket.RawPosition{
			{ConditionID: "0xabc", Outcome: "Yes", Size: 100},
		},
	}

	positions := Adapt(batch)
	require.Len(t, positions, 4)

	// Per-venue ordering is preserved; venues concatenate in fixed order.
	assert.Equal(t, "BTC-PERP", positions[0].RawSymbol)
	assert.Equal(t, "ETH-PERP", positions[1].RawSymbol)
	assert.Equal(t, domain.ExchangeOrderly, positions[2].Exchange)
	assert.Equal(t, domain.ExchangePolymarket, positions[3].Exchange)
}

func TestAdaptKeepsMalformedRecords(t *testing.T) {
	positions := Adapt(RawBatch{
		Hyperliquid: []hyperliquid.RawPosition{{Coin: "BTC-PERP", Szi: "bad"}},
	})
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Degraded)
}

func protective(coin, orderType string, price float64) domain.OpenOrder {
	return domain.OpenOrder{
		Coin:         coin,
		Exchange:     domain.ExchangeHyperliquid,
		OrderType:    orderType,
		TriggerPrice: price,
		ReduceOnly:   true,
		PositionTPSL: true,
	}
}

func TestAttach(t *testing.T) {
	t.Run("matches stop loss and take profit by raw symbol", func(t *testing.T) {
		positions := []domain.Position{{
			RawSymbol:            "BTC-PERP",
			Exchange:             domain.ExchangeHyperliquid,
			ProtectionApplicable: true,
		}}
		orders := []domain.OpenOrder{
			protective("BTC-PERP", "Stop Market", 55000),
			protective("BTC-PERP", "Take Profit Limit", 70000),
		}

		out := Attach(positions, orders)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].StopLoss)
		require.NotNil(t, out[0].TakeProfit)
		assert.Equal(t, 55000.0, out[0].StopLoss.TriggerOrLimitPrice)
		assert.Equal(t, 70000.0, out[0].TakeProfit.TriggerOrLimitPrice)
	})

	t.Run("first in source order wins on ties", func(t *testing.T) {
		positions := []domain.Position{{
			RawSymbol: "BTC-PERP",
			Exchange:  domain.ExchangeHyperliquid,
		}}
		orders := []domain.OpenOrder{
			protective("BTC-PERP", "Stop Market", 55000),
			protective("BTC-PERP", "Stop Limit", 54000),
		}

		out := Attach(positions, orders)
		require.NotNil(t, out[0].StopLoss)
		assert.Equal(t, 55000.0, out[0].StopLoss.TriggerOrLimitPrice)
	})

	t.Run("non reduce-only or untagged orders never qualify", func(t *testing.T) {
		positions := []domain.Position{{
			RawSymbol: "BTC-PERP",
			Exchange:  domain.ExchangeHyperliquid,
		}}
		notReduceOnly := protective("BTC-PERP", "Stop Market", 55000)
		notReduceOnly.ReduceOnly = false
		notTagged := protective("BTC-PERP", "Stop Market", 54000)
		notTagged.PositionTPSL = false

		out := Attach(positions, []domain.OpenOrder{notReduceOnly, notTagged})
		assert.Nil(t, out[0].StopLoss)
	})

	t.Run("only hyperliquid positions participate", func(t *testing.T) {
		positions := []domain.Position{{
			RawSymbol: "PERP_BTC_USDC",
			Exchange:  domain.ExchangeOrderly,
		}}
		out := Attach(positions, []domain.OpenOrder{protective("PERP_BTC_USDC", "Stop Market", 55000)})
		assert.Nil(t, out[0].StopLoss)
	})

	t.Run("order for a closed position finds no match", func(t *testing.T) {
		out := Attach(nil, []domain.OpenOrder{protective("BTC-PERP", "Stop Market", 55000)})
		assert.Empty(t, out)
	})

	t.Run("derives liquidation distance", func(t *testing.T) {
		liq := 45000.0
		positions := []domain.Position{{
			RawSymbol:        "BTC-PERP",
			Exchange:         domain.ExchangeHyperliquid,
			CurrentPrice:     50000,
			LiquidationPrice: &liq,
		}}
		out := Attach(positions, nil)
		require.NotNil(t, out[0].LiquidationDistance)
		assert.InDelta(t, 0.1, *out[0].LiquidationDistance, 1e-9)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		positions := []domain.Position{{
			RawSymbol: "BTC-PERP",
			Exchange:  domain.ExchangeHyperliquid,
		}}
		_ = Attach(positions, []domain.OpenOrder{protective("BTC-PERP", "Stop Market", 55000)})
		assert.Nil(t, positions[0].StopLoss)
	})
}
