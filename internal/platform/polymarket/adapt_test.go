package polymarket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

func TestAdaptPosition(t *testing.T) {
	t.Run("basic mapping", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{
			ConditionID:  "0xabc",
			Title:        "Will it rain tomorrow?",
			Outcome:      "Yes",
			Side:         "buy",
			Size:         100,
			AvgPrice:     0.40,
			CurPrice:     0.55,
			CashPnl:      15,
			PercentPnl:   37.5,
			CurrentValue: 55,
		})

		assert.Equal(t, "Yes", pos.Symbol)
		assert.Equal(t, "0xabc", pos.RawSymbol)
		assert.Equal(t, domain.ExchangePolymarket, pos.Exchange)
		assert.Equal(t, domain.MarketTypePrediction, pos.MarketType)
		assert.Equal(t, domain.SideLong, pos.Side)
		assert.Equal(t, 1, pos.Leverage)
		// The venue pre-multiplies by 100; the unified fraction undoes it.
		assert.InDelta(t, 0.375, pos.ROE, 1e-9)
		assert.False(t, pos.ProtectionApplicable)
		assert.False(t, pos.Degraded)
	})

	t.Run("sell side maps to short", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{ConditionID: "0xabc", Side: "SELL", Size: 10})
		assert.Equal(t, domain.SideShort, pos.Side)
	})

	t.Run("negative share count is malformed", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{ConditionID: "0xabc", Size: -5})
		assert.True(t, pos.Degraded)
		assert.Zero(t, pos.Size)
	})

	t.Run("position value falls back to size times price", func(t *testing.T) {
		pos := AdaptPosition(RawPosition{ConditionID: "0xabc", Size: 20, CurPrice: 0.5})
		assert.InDelta(t, 10.0, pos.PositionValue, 1e-9)
	})

	t.Run("display symbol precedence outcome then title then id", func(t *testing.T) {
		assert.Equal(t, "No", AdaptPosition(RawPosition{ConditionID: "0x1", Title: "T", Outcome: "No"}).Symbol)
		assert.Equal(t, "T", AdaptPosition(RawPosition{ConditionID: "0x1", Title: "T"}).Symbol)
		assert.Equal(t, "0x1", AdaptPosition(RawPosition{ConditionID: "0x1"}).Symbol)
	})
}
