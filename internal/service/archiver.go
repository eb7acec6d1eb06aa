package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// Archiver ships aged close events and deposit records out of the database
// into cold object storage, then deletes them. Rows younger than the
// retention window are left alone.
type Archiver struct {
	closes    domain.CloseLogStore
	deposits  domain.DepositStore
	blob      domain.BlobWriter
	retention time.Duration
	logger    *slog.Logger
}

// NewArchiver creates an Archiver. retention is how long rows stay in the
// database before being archived.
func NewArchiver(
	closes domain.CloseLogStore,
	deposits domain.DepositStore,
	blob domain.BlobWriter,
	retention time.Duration,
	logger *slog.Logger,
) *Archiver {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Archiver{
		closes:    closes,
		deposits:  deposits,
		blob:      blob,
		retention: retention,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// Run archives on a fixed interval until the context is cancelled. Call in a
// goroutine.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.Archive(ctx); err != nil {
				a.logger.ErrorContext(ctx, "archive pass failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Archive runs one archival pass over both stores. Deletion only happens
// after the corresponding upload succeeded, so a failed pass leaves rows in
// place for the next one.
func (a *Archiver) Archive(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-a.retention)

	events, err := a.closes.ListBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archiver: list close events: %w", err)
	}
	if len(events) > 0 {
		path := archivePath("closes", cutoff)
		if err := a.upload(ctx, path, events); err != nil {
			return fmt.Errorf("archiver: upload close events: %w", err)
		}
		deleted, err := a.closes.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("archiver: delete close events: %w", err)
		}
		a.logger.InfoContext(ctx, "archived close events",
			slog.String("path", path),
			slog.Int("count", len(events)),
			slog.Int64("deleted", deleted),
		)
	}

	records, err := a.deposits.ListBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archiver: list deposits: %w", err)
	}
	if len(records) > 0 {
		path := archivePath("deposits", cutoff)
		if err := a.upload(ctx, path, records); err != nil {
			return fmt.Errorf("archiver: upload deposits: %w", err)
		}
		deleted, err := a.deposits.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("archiver: delete deposits: %w", err)
		}
		a.logger.InfoContext(ctx, "archived deposits",
			slog.String("path", path),
			slog.Int("count", len(records)),
			slog.Int64("deleted", deleted),
		)
	}

	return nil
}

func (a *Archiver) upload(ctx context.Context, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return a.blob.Put(ctx, path, bytes.NewReader(data), "application/json")
}

func archivePath(kind string, cutoff time.Time) string {
	return fmt.Sprintf("%s/%s/before-%s.json",
		kind, cutoff.Format("2006/01"), cutoff.Format("20060102T150405Z"))
}
