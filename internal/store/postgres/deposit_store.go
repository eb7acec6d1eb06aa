package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// DepositStore implements domain.DepositStore using PostgreSQL.
type DepositStore struct {
	pool *pgxpool.Pool
}

// NewDepositStore creates a new DepositStore backed by the given connection pool.
func NewDepositStore(pool *pgxpool.Pool) *DepositStore {
	return &DepositStore{pool: pool}
}

const depositSelectCols = `id, flow_id, from_chain_id, to_chain_id, token_symbol,
	amount, amount_units, recipient, tx_hash, created_at`

func scanDepositRows(rows pgx.Rows) ([]domain.DepositRecord, error) {
	var records []domain.DepositRecord
	for rows.Next() {
		var r domain.DepositRecord
		if err := rows.Scan(
			&r.ID, &r.FlowID, &r.FromChainID, &r.ToChainID, &r.TokenSymbol,
			&r.Amount, &r.AmountUnits, &r.Recipient, &r.TxHash, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Record inserts an executed deposit.
func (s *DepositStore) Record(ctx context.Context, rec domain.DepositRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO deposits (
			flow_id, from_chain_id, to_chain_id, token_symbol,
			amount, amount_units, recipient, tx_hash, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.FlowID, rec.FromChainID, rec.ToChainID, rec.TokenSymbol,
		rec.Amount, rec.AmountUnits, rec.Recipient, rec.TxHash, createdAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert deposit: %w", err)
	}
	return nil
}

// List returns deposits in reverse chronological order with pagination and
// optional time filtering.
func (s *DepositStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.DepositRecord, error) {
	query := `SELECT ` + depositSelectCols + ` FROM deposits WHERE 1=1`
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
		return nil, fmt.Errorf("postgres: list deposits: %w", err)
	}
	defer rows.Close()

	records, err := scanDepositRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan deposits: %w", err)
	}
	return records, nil
}

// ListBefore returns all deposits created before the cutoff, oldest first,
// for archival.
func (s *DepositStore) ListBefore(ctx context.Context, cutoff time.Time) ([]domain.DepositRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+depositSelectCols+`
		FROM deposits
		WHERE created_at < $1
		ORDER BY created_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list deposits before %s: %w", cutoff, err)
	}
	defer rows.Close()

	records, err := scanDepositRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan deposits: %w", err)
	}
	return records, nil
}

// DeleteBefore removes deposits created before the cutoff and returns the
// number of rows deleted.
func (s *DepositStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM deposits WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete deposits before %s: %w", cutoff, err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.DepositStore = (*DepositStore)(nil)
