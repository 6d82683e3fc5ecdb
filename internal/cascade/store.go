package cascade

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memberhub/pkg/db"
	"memberhub/pkg/middleware"
)

// DB and Tx are the narrow store surface the orchestrator needs. Tx.Begin
// opens a savepoint (nested transaction), which is how a failed child step
// rolls back without poisoning the enclosing transaction.
type DB interface {
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error)
	Begin(ctx context.Context) (Tx, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgxDB struct {
	pool *pgxpool.Pool
}

// NewPgxDB adapts a pgx pool to the orchestrator's DB interface.
func NewPgxDB(pool *pgxpool.Pool) DB {
	return &pgxDB{pool: pool}
}

func (d *pgxDB) Begin(ctx context.Context) (Tx, error) {
	// Requests carry a tenant; run the cascade under its RLS setting.
	if tid := middleware.TenantFrom(ctx).ID; tid != "" {
		tx, err := db.BeginTxWithTenant(ctx, d.pool, tid)
		if err != nil {
			return nil, err
		}
		return &pgxTx{tx: tx}, nil
	}
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *pgxTx) Begin(ctx context.Context) (Tx, error) {
	sp, err := t.tx.Begin(ctx) // savepoint under pgx
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: sp}, nil
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
