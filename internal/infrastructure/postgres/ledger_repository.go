package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodchain/foodchain/internal/domain/ledger"
)

// LedgerRepository implements ledger.Store on PostgreSQL.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// EnsureSchema creates the chain log table when it does not exist yet.
func (r *LedgerRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chain_log (
			seq        BIGINT PRIMARY KEY,
			record     JSONB NOT NULL,
			entry_hash TEXT NOT NULL,
			prev_hash  TEXT NOT NULL DEFAULT '',
			chain_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure chain_log schema: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Append(ctx context.Context, e *ledger.Entry) error {
	record, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("failed to serialize chain log record: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO chain_log (seq, record, entry_hash, prev_hash, chain_hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.Seq, record, e.EntryHash, e.PrevHash, e.ChainHash, e.CreatedAt)
	return err
}

func (r *LedgerRepository) Latest(ctx context.Context) (*ledger.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT seq, record, entry_hash, prev_hash, chain_hash, created_at
		FROM chain_log ORDER BY seq DESC LIMIT 1
	`)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

func (r *LedgerRepository) List(ctx context.Context) ([]*ledger.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seq, record, entry_hash, prev_hash, chain_hash, created_at
		FROM chain_log ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *LedgerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chain_log`).Scan(&count)
	return count, err
}

func scanEntry(row pgx.Row) (*ledger.Entry, error) {
	var e ledger.Entry
	var record []byte
	if err := row.Scan(&e.Seq, &record, &e.EntryHash, &e.PrevHash, &e.ChainHash, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(record, &e.Record); err != nil {
		return nil, fmt.Errorf("failed to decode chain log record: %w", err)
	}
	return &e, nil
}
