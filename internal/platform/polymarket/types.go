package polymarket

// RawPosition is a polymarket position record as returned by the backend.
// Prediction-market positions have no signed size; direction comes from the
// outcome side string and size is always a share count >= 0.
type RawPosition struct {
	ConditionID string  `json:"conditionId"`
	Title       string  `json:"title"`
	Outcome     string  `json:"outcome"`
	Side        string  `json:"side"`
	Size        float64 `json:"size"`
	AvgPrice    float64 `json:"avgPrice"`
	CurPrice    float64 `json:"curPrice"`
	CashPnl     float64 `json:"cashPnl"`
	// PercentPnl is reported pre-multiplied by 100 by the venue.
	PercentPnl   float64 `json:"percentPnl"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
}
