package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkCloseSummaryToast(t *testing.T) {
	closed := CloseResult{Target: "BTC-PERP", Outcome: CloseOutcomeClosed}
	cancelled := CloseResult{Target: "ETH-PERP", Outcome: CloseOutcomeCancelledOrder}
	failed := CloseResult{Target: "SOL-PERP", Outcome: CloseOutcomeFailed}

	tests := []struct {
		name    string
		summary BulkCloseSummary
		want    string
	}{
		{
			name: "all three partitions",
			summary: BulkCloseSummary{
				ClosedPositions: []CloseResult{closed, closed},
				CancelledOrders: []CloseResult{cancelled},
				Errors:          []CloseResult{failed},
			},
			want: "Closed 2 position(s). Cancelled 1 order(s). 1 error(s) occurred.",
		},
		{
			name:    "zero partitions are omitted",
			summary: BulkCloseSummary{ClosedPositions: []CloseResult{closed}},
			want:    "Closed 1 position(s).",
		},
		{
			name: "errors only",
			summary: BulkCloseSummary{
				Errors: []CloseResult{failed, failed, failed},
			},
			want: "3 error(s) occurred.",
		},
		{
			name:    "empty summary has a fixed message",
			summary: BulkCloseSummary{},
			want:    "No positions or orders to close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.Toast())
		})
	}
}

func TestTargetCount(t *testing.T) {
	s := BulkCloseSummary{
		ClosedPositions: make([]CloseResult, 2),
		CancelledOrders: make([]CloseResult, 3),
		Errors:          make([]CloseResult, 1),
	}
	assert.Equal(t, 6, s.TargetCount())
}

func TestDisplaySymbol(t *testing.T) {
	assert.Equal(t, "BTC", DisplaySymbol("BTC-PERP"))
	assert.Equal(t, "ETH", DisplaySymbol("ETH-USD"))
	assert.Equal(t, "Yes", DisplaySymbol("Yes"))
}
