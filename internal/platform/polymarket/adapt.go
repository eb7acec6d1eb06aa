package polymarket

import (
	"strings"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// AdaptPosition maps a raw polymarket position into the unified model.
// Prediction markets have no leverage, no liquidation price, and no
// protective orders; those fields render not-applicable downstream.
func AdaptPosition(raw RawPosition) domain.Position {
	pos := domain.Position{
		Symbol:        displaySymbol(raw),
		RawSymbol:     raw.ConditionID,
		Exchange:      domain.ExchangePolymarket,
		MarketType:    domain.MarketTypePrediction,
		Side:          adaptSide(raw.Side),
		Size:          raw.Size,
		EntryPrice:    raw.AvgPrice,
		CurrentPrice:  raw.CurPrice,
		PositionValue: raw.CurrentValue,
		UnrealizedPnL: raw.CashPnl,
		// The venue pre-multiplies by 100; the unified model stores a
		// fraction and lets rendering do the multiplication.
		ROE:      raw.PercentPnl / 100,
		Leverage: 1,
	}

	if pos.Size < 0 {
		// Share counts are never signed; a negative one is a malformed
		// record. Keep the row visible with safe defaults.
		pos.Size = 0
		pos.Degraded = true
	}
	if pos.PositionValue == 0 {
		pos.PositionValue = pos.Size * raw.CurPrice
	}

	return pos
}

// adaptSide reads the explicit outcome side string; polymarket has no signed
// size to derive from. Anything other than an explicit sell is long.
func adaptSide(side string) domain.Side {
	if strings.EqualFold(side, "sell") || strings.EqualFold(side, "short") {
		return domain.SideShort
	}
	return domain.SideLong
}

func displaySymbol(raw RawPosition) string {
	if raw.Outcome != "" {
		return raw.Outcome
	}
	if raw.Title != "" {
		return raw.Title
	}
	return raw.ConditionID
}
