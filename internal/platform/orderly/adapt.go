package orderly

import (
	"math"
	"strings"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// AdaptPosition maps a raw orderly position into the unified model. Side
// comes solely from the sign of position_qty; the stored size is the
// magnitude.
func AdaptPosition(raw RawPosition) domain.Position {
	pos := domain.Position{
		Symbol:     displaySymbol(raw.Symbol),
		RawSymbol:  raw.Symbol,
		Exchange:   domain.ExchangeOrderly,
		MarketType: marketType(raw.Symbol),
		Side:       domain.SideLong,
		Size:       math.Abs(raw.PositionQty),
		EntryPrice: raw.AverageOpenPrice,
		// Degraded stays false: orderly records are typed numbers, so a
		// missing field simply decodes to zero.
	}

	if raw.PositionQty < 0 {
		pos.Side = domain.SideShort
	}

	pos.CurrentPrice = raw.MarkPrice
	pos.PositionValue = pos.Size * raw.MarkPrice
	pos.UnrealizedPnL = raw.UnsettledPnl
	pos.Leverage = int(raw.Leverage)

	// ROE relative to the margin committed: notional at entry over leverage.
	if raw.Leverage > 0 && pos.Size > 0 && raw.AverageOpenPrice > 0 {
		margin := pos.Size * raw.AverageOpenPrice / raw.Leverage
		if margin > 0 {
			pos.ROE = raw.UnsettledPnl / margin
		}
	}

	if raw.EstLiqPrice != nil && *raw.EstLiqPrice > 0 && pos.MarketType == domain.MarketTypePerpetual {
		liq := *raw.EstLiqPrice
		pos.LiquidationPrice = &liq
	}

	return pos
}

// displaySymbol unwraps orderly's PERP_BASE_QUOTE / SPOT_BASE_QUOTE naming
// into the bare base asset for display.
func displaySymbol(raw string) string {
	s := strings.TrimPrefix(raw, "PERP_")
	s = strings.TrimPrefix(s, "SPOT_")
	if i := strings.Index(s, "_"); i > 0 {
		s = s[:i]
	}
	return domain.DisplaySymbol(s)
}

func marketType(symbol string) domain.MarketType {
	if strings.HasPrefix(symbol, "PERP_") {
		return domain.MarketTypePerpetual
	}
	return domain.MarketTypeSpot
}
