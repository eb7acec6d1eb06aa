package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// CloseLogStore implements domain.CloseLogStore using PostgreSQL. The
// three-way summary is stored as JSONB so the history view can render the
// full per-position breakdown without a join.
type CloseLogStore struct {
	pool *pgxpool.Pool
}

// NewCloseLogStore creates a new CloseLogStore backed by the given connection pool.
func NewCloseLogStore(pool *pgxpool.Pool) *CloseLogStore {
	return &CloseLogStore{pool: pool}
}

const closeEventSelectCols = `id, request_id, action, exchange, summary, created_at`

func scanCloseEventRows(rows pgx.Rows) ([]domain.CloseEvent, error) {
	var events []domain.CloseEvent
	for rows.Next() {
		var (
			e       domain.CloseEvent
			summary []byte
		)
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.Action, &e.Exchange, &summary, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summary, &e.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary for event %d: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Log inserts a close event.
func (s *CloseLogStore) Log(ctx context.Context, event domain.CloseEvent) error {
	summary, err := json.Marshal(event.Summary)
	if err != nil {
		return fmt.Errorf("postgres: marshal close summary: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO close_events (request_id, action, exchange, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.RequestID, event.Action, string(event.Exchange), summary, createdAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert close event: %w", err)
	}
	return nil
}

// List returns close events in reverse chronological order with pagination
// and optional time filtering.
func (s *CloseLogStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.CloseEvent, error) {
	query := `SELECT ` + closeEventSelectCols + ` FROM close_events WHERE 1=1`
	var args []any
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list close events: %w", err)
	}
	defer rows.Close()

	events, err := scanCloseEventRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan close events: %w", err)
	}
	return events, nil
}

// ListBefore returns all close events created before the cutoff, oldest
// first, for archival.
func (s *CloseLogStore) ListBefore(ctx context.Context, cutoff time.Time) ([]domain.CloseEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+closeEventSelectCols+`
		FROM close_events
		WHERE created_at < $1
		ORDER BY created_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list close events before %s: %w", cutoff, err)
	}
	defer rows.Close()

	events, err := scanCloseEventRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan close events: %w", err)
	}
	return events, nil
}

// DeleteBefore removes close events created before the cutoff and returns the
// number of rows deleted.
func (s *CloseLogStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM close_events WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete close events before %s: %w", cutoff, err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.CloseLogStore = (*CloseLogStore)(nil)
