package credentials

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore persists rotating credentials in integration_credentials, one row
// per integration kind.
type pgStore struct {
	dbPool *pgxpool.Pool
}

func NewPostgresStore(dbPool *pgxpool.Pool) Store {
	return &pgStore{dbPool: dbPool}
}

// EnsureSchema creates the credential table if missing. Idempotent.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS integration_credentials (
  integration text PRIMARY KEY,
  access_token text NOT NULL,
  refresh_token text NOT NULL,
  upstream_context_id text NOT NULL DEFAULT '',
  expires_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

func (p *pgStore) Load(ctx context.Context, integration string) (StoredCredential, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT access_token, refresh_token, upstream_context_id, expires_at
	  FROM integration_credentials WHERE integration=$1`, integration)
	var c StoredCredential
	if err := row.Scan(&c.AccessToken, &c.RefreshToken, &c.UpstreamContextID, &c.ExpiresAt); err != nil {
		if err == pgx.ErrNoRows {
			return StoredCredential{}, ErrNoCredential
		}
		return StoredCredential{}, err
	}
	return c, nil
}

func (p *pgStore) Swap(ctx context.Context, integration string, prev string, next StoredCredential) (bool, error) {
	tag, err := p.dbPool.Exec(ctx, `UPDATE integration_credentials
	  SET access_token=$1, refresh_token=$2, upstream_context_id=$3, expires_at=$4, updated_at=NOW()
	  WHERE integration=$5 AND refresh_token=$6`,
		next.AccessToken, next.RefreshToken, next.UpstreamContextID, next.ExpiresAt, integration, prev)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (p *pgStore) Put(ctx context.Context, integration string, cred StoredCredential) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO integration_credentials(integration, access_token, refresh_token, upstream_context_id, expires_at)
	  VALUES ($1,$2,$3,$4,$5)
	  ON CONFLICT (integration) DO UPDATE SET access_token=EXCLUDED.access_token, refresh_token=EXCLUDED.refresh_token,
	    upstream_context_id=EXCLUDED.upstream_context_id, expires_at=EXCLUDED.expires_at, updated_at=NOW()`,
		integration, cred.AccessToken, cred.RefreshToken, cred.UpstreamContextID, cred.ExpiresAt)
	return err
}
