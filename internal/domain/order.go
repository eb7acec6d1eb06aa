package domain

import "strings"

// ProtectiveKind distinguishes the two protective order flavours.
type ProtectiveKind string

const (
	ProtectiveStopLoss   ProtectiveKind = "stopLoss"
	ProtectiveTakeProfit ProtectiveKind = "takeProfit"
)

// OpenOrder is a resting order on a venue, normalized just far enough for
// protective-order matching. Matching is by exact raw symbol plus
// ReduceOnly plus the venue's position-TP/SL tag - never by price or size.
type OpenOrder struct {
	// Coin is the venue-native symbol the order rests against.
	Coin     string
	Exchange Exchange
	// OrderType is the venue's order-type string, e.g. "Stop Market" or
	// "Take Profit Limit".
	OrderType string
	// TriggerPrice is the trigger price for trigger orders, or the limit
	// price when the venue reports no trigger.
	TriggerPrice float64
	ReduceOnly   bool
	// PositionTPSL is the venue tag marking an order as position-attached
	// take-profit/stop-loss. Only tagged orders qualify for matching.
	PositionTPSL bool
	OrderID      int64
	Timestamp    int64
}

// ProtectiveKind classifies the order from its venue order-type string. The
// second return is false for orders that are neither stop-loss nor
// take-profit.
func (o OpenOrder) ProtectiveKind() (ProtectiveKind, bool) {
	t := strings.ToLower(o.OrderType)
	switch {
	case strings.HasPrefix(t, "stop"):
		return ProtectiveStopLoss, true
	case strings.HasPrefix(t, "take profit"):
		return ProtectiveTakeProfit, true
	default:
		return "", false
	}
}

// ProtectiveOrder is a stop-loss or take-profit attached to a position. At
// most one of each kind is associated with a given (exchange, symbol).
type ProtectiveOrder struct {
	Coin                string
	Kind                ProtectiveKind
	TriggerOrLimitPrice float64
	ReduceOnly          bool
}
