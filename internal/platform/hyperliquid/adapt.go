package hyperliquid

import (
	"strconv"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// AdaptPosition maps a raw hyperliquid position record into the unified
// model. It never fails: missing optional fields become zero or nil, and a
// record whose required fields do not parse is returned with safe defaults
// and the Degraded flag set so the row still renders.
func AdaptPosition(raw RawPosition) domain.Position {
	pos := domain.Position{
		Symbol:               domain.DisplaySymbol(raw.Coin),
		RawSymbol:            raw.Coin,
		Exchange:             domain.ExchangeHyperliquid,
		MarketType:           domain.MarketTypePerpetual,
		Side:                 domain.SideLong,
		Leverage:             raw.Leverage.Value,
		ProtectionApplicable: true,
	}

	szi, err := strconv.ParseFloat(raw.Szi, 64)
	if err != nil {
		pos.Degraded = true
	} else {
		if szi < 0 {
			pos.Side = domain.SideShort
			szi = -szi
		}
		pos.Size = szi
	}

	pos.EntryPrice = parseOptionalPrice(raw.EntryPx, &pos.Degraded)
	pos.PositionValue = parseDecimal(raw.PositionValue, &pos.Degraded)
	pos.UnrealizedPnL = parseDecimal(raw.UnrealizedPnl, &pos.Degraded)
	pos.ROE = parseDecimal(raw.ReturnOnEquity, &pos.Degraded)

	if pos.Size > 0 {
		pos.CurrentPrice = pos.PositionValue / pos.Size
	}

	if raw.LiquidationPx != nil && *raw.LiquidationPx != "" {
		if liq, err := strconv.ParseFloat(*raw.LiquidationPx, 64); err == nil {
			pos.LiquidationPrice = &liq
		} else {
			pos.Degraded = true
		}
	}

	return pos
}

// AdaptOpenOrder maps a raw resting order into the normalized open-order
// form used for protective-order matching. TriggerPrice falls back to the
// limit price for non-trigger orders.
func AdaptOpenOrder(raw RawOpenOrder) domain.OpenOrder {
	order := domain.OpenOrder{
		Coin:         raw.Coin,
		Exchange:     domain.ExchangeHyperliquid,
		OrderType:    raw.OrderType,
		ReduceOnly:   raw.ReduceOnly,
		PositionTPSL: raw.IsPositionTPSL,
		OrderID:      raw.Oid,
		Timestamp:    raw.Timestamp,
	}

	if trigger, err := strconv.ParseFloat(raw.TriggerPx, 64); err == nil {
		order.TriggerPrice = trigger
	} else if limit, err := strconv.ParseFloat(raw.LimitPx, 64); err == nil {
		order.TriggerPrice = limit
	}

	return order
}

// parseDecimal parses a decimal string, treating the empty string as an
// absent optional field (zero, not degraded) and anything unparseable as a
// malformed field (zero, degraded).
func parseDecimal(s string, degraded *bool) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*degraded = true
		return 0
	}
	return v
}

func parseOptionalPrice(s *string, degraded *bool) float64 {
	if s == nil {
		return 0
	}
	return parseDecimal(*s, degraded)
}
