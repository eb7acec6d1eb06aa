package hyperliquid

import (
	"encoding/json"
	"fmt"
)

// RawLeverage is the leverage field of a hyperliquid position. The venue is
// inconsistent about the shape: older payloads carry a bare number, newer
// ones an object {"type":"cross","value":20}. Both observed forms are
// enumerated here rather than probed at call sites.
type RawLeverage struct {
	Type  string
	Value int
}

// UnmarshalJSON accepts either the bare-number or the {type,value} form.
func (l *RawLeverage) UnmarshalJSON(data []byte) error {
	var bare float64
	if err := json.Unmarshal(data, &bare); err == nil {
		l.Type = ""
		l.Value = int(bare)
		return nil
	}

	var obj struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("hyperliquid: decode leverage: %w", err)
	}
	l.Type = obj.Type
	l.Value = int(obj.Value)
	return nil
}

// RawPosition is a hyperliquid position record as returned by the backend.
// Numeric fields arrive as decimal strings; optional fields are pointers.
type RawPosition struct {
	Coin           string      `json:"coin"`
	Szi            string      `json:"szi"`
	EntryPx        *string     `json:"entryPx"`
	PositionValue  string      `json:"positionValue"`
	UnrealizedPnl  string      `json:"unrealizedPnl"`
	ReturnOnEquity string      `json:"returnOnEquity"`
	LiquidationPx  *string     `json:"liquidationPx"`
	MarginUsed     string      `json:"marginUsed"`
	Leverage       RawLeverage `json:"leverage"`
	MaxLeverage    int         `json:"maxLeverage"`
}

// RawOpenOrder is a resting order from the open-orders endpoint.
type RawOpenOrder struct {
	Coin           string `json:"coin"`
	OrderType      string `json:"orderType"`
	Side           string `json:"side"`
	LimitPx        string `json:"limitPx"`
	TriggerPx      string `json:"triggerPx"`
	Sz             string `json:"sz"`
	ReduceOnly     bool   `json:"reduceOnly"`
	IsTrigger      bool   `json:"isTrigger"`
	IsPositionTPSL bool   `json:"isPositionTpsl"`
	Oid            int64  `json:"oid"`
	Timestamp      int64  `json:"timestamp"`
}

// rawCloseResult is one per-target entry of a close-all partition.
type rawCloseResult struct {
	Target       string `json:"target"`
	ErrorMessage string `json:"errorMessage"`
}

// closeAllResults is the partition the close-all endpoint returns.
type closeAllResults struct {
	ClosedPositions []rawCloseResult `json:"closedPositions"`
	CancelledOrders []rawCloseResult `json:"cancelledOrders"`
	Errors          []rawCloseResult `json:"errors"`
}
