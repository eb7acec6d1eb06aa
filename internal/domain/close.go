package domain

import (
	"fmt"
	"strings"
	"time"
)

// CloseOutcome is the terminal state of one close/cancel attempt.
type CloseOutcome string

const (
	CloseOutcomeClosed         CloseOutcome = "closed"
	CloseOutcomeCancelledOrder CloseOutcome = "cancelledOrder"
	CloseOutcomeFailed         CloseOutcome = "failed"
)

// CloseResult is the outcome of one close or cancel attempt against a single
// target.
type CloseResult struct {
	// Target is the venue-native symbol or coin the attempt addressed.
	Target       string
	Outcome      CloseOutcome
	ErrorMessage string
}

// BulkCloseSummary is the three-way partition returned by a close-all call.
// Every position or resting order that was a target appears in exactly one of
// the three lists.
type BulkCloseSummary struct {
	ClosedPositions []CloseResult
	CancelledOrders []CloseResult
	Errors          []CloseResult
}

// TargetCount returns the total number of distinct targets across the
// partition.
func (s BulkCloseSummary) TargetCount() int {
	return len(s.ClosedPositions) + len(s.CancelledOrders) + len(s.Errors)
}

// Toast builds the single user-visible summary line for a close-all result.
// Only non-zero partitions contribute a clause; an entirely empty summary
// renders a fixed "nothing to do" message instead of an empty string.
func (s BulkCloseSummary) Toast() string {
	var parts []string
	if n := len(s.ClosedPositions); n > 0 {
		parts = append(parts, fmt.Sprintf("Closed %d position(s).", n))
	}
	if n := len(s.CancelledOrders); n > 0 {
		parts = append(parts, fmt.Sprintf("Cancelled %d order(s).", n))
	}
	if n := len(s.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s) occurred.", n))
	}
	if len(parts) == 0 {
		return "No positions or orders to close"
	}
	return strings.Join(parts, " ")
}

// CloseEvent is a persisted record of one mutating close action, kept for the
// dashboard's history view.
type CloseEvent struct {
	ID        int64
	RequestID string
	// Action is "close_one" or "close_all".
	Action    string
	Exchange  Exchange
	Summary   BulkCloseSummary
	CreatedAt time.Time
}
