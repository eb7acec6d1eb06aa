package domain

import (
	"context"
	"time"
)

// ListOpts carries standard pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// CloseLogStore persists the outcome of every mutating close action for the
// history view. The live position list never reads from here; it is an audit
// trail, not a cache.
type CloseLogStore interface {
	Log(ctx context.Context, event CloseEvent) error
	List(ctx context.Context, opts ListOpts) ([]CloseEvent, error)
	ListBefore(ctx context.Context, cutoff time.Time) ([]CloseEvent, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DepositStore persists executed cross-chain deposits.
type DepositStore interface {
	Record(ctx context.Context, rec DepositRecord) error
	List(ctx context.Context, opts ListOpts) ([]DepositRecord, error)
	ListBefore(ctx context.Context, cutoff time.Time) ([]DepositRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
