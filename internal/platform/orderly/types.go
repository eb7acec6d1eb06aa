package orderly

// RawPosition is an orderly position record as returned by the backend.
// Unlike hyperliquid, orderly reports numbers as JSON numbers and leverage as
// a bare value.
type RawPosition struct {
	Symbol           string   `json:"symbol"`
	PositionQty      float64  `json:"position_qty"`
	AverageOpenPrice float64  `json:"average_open_price"`
	MarkPrice        float64  `json:"mark_price"`
	UnsettledPnl     float64  `json:"unsettled_pnl"`
	EstLiqPrice      *float64 `json:"est_liq_price"`
	Leverage         float64  `json:"leverage"`
	Timestamp        int64    `json:"timestamp"`
}
