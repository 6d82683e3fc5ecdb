package scheduling

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore lists candidate sessions for conflict checks.
type SessionStore interface {
	// ListActive returns non-cancelled sessions for the tenant, optionally
	// restricted to one host.
	ListActive(ctx context.Context, tenantID, hostID string) ([]Session, error)
}

type pgSessionStore struct {
	dbPool *pgxpool.Pool
}

func NewPostgresSessionStore(dbPool *pgxpool.Pool) SessionStore {
	return &pgSessionStore{dbPool: dbPool}
}

func (p *pgSessionStore) ListActive(ctx context.Context, tenantID, hostID string) ([]Session, error) {
	sql := `SELECT id, label, COALESCE(host_id::text,''), start_time, duration_minutes, cancelled
	  FROM sessions WHERE tenant_id=$1 AND NOT cancelled`
	args := []any{tenantID}
	if hostID != "" {
		sql += ` AND host_id=$2`
		args = append(args, hostID)
	}
	rows, err := p.dbPool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Label, &s.HostID, &s.StartTime, &s.DurationMinutes, &s.Cancelled); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
