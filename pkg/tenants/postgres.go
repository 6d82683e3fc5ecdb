// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed tenant store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the tenant tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY,
  slug text UNIQUE,
  display_name text NOT NULL DEFAULT '',
  logo_url text NOT NULL DEFAULT '',
  favicon_url text NOT NULL DEFAULT '',
  primary_color text NOT NULL DEFAULT '',
  secondary_color text NOT NULL DEFAULT '',
  accent_color text NOT NULL DEFAULT '',
  settings jsonb NOT NULL DEFAULT '{}'::jsonb,
  active boolean NOT NULL DEFAULT true,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS tenant_domains (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  domain text UNIQUE NOT NULL,
  is_primary boolean NOT NULL DEFAULT false,
  verified boolean NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS tenant_domains_domain_idx ON tenant_domains(domain) WHERE verified;
`)
	return err
}

// SeedFromEnv ingests initial tenant + domain rows.
// jsonSeed format (TENANT_SEED_JSON):
// [{"id":"...","slug":"...","display_name":"...","domains":["portal.acme.org"]}]
func SeedFromEnv(ctx context.Context, dbPool *pgxpool.Pool, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []struct {
		ID, Slug, DisplayName string
		Domains               []string
	}
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		_, _ = dbPool.Exec(ctx, `INSERT INTO tenants(id,slug,display_name)
		  VALUES ($1,$2,$3)
		  ON CONFLICT (id) DO UPDATE SET slug=EXCLUDED.slug,display_name=EXCLUDED.display_name`,
			entry.ID, entry.Slug, entry.DisplayName)
		for _, d := range entry.Domains {
			_, _ = dbPool.Exec(ctx, `INSERT INTO tenant_domains(id,tenant_id,domain,is_primary,verified)
			  VALUES (gen_random_uuid(),$1,$2,true,true)
			  ON CONFLICT (domain) DO UPDATE SET tenant_id=EXCLUDED.tenant_id, verified=true`,
				entry.ID, d)
		}
	}
	return nil
}

const tenantColumns = `id,COALESCE(slug,''),display_name,logo_url,favicon_url,primary_color,secondary_color,accent_color,settings,active`

// TenantByDomain joins verified domains to their owning active tenant.
func (p *pgStore) TenantByDomain(ctx context.Context, domain string) (Tenant, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants
	  WHERE active AND id=(SELECT tenant_id FROM tenant_domains WHERE domain=$1 AND verified)`, domain)
	return scanTenant(row)
}

// TenantByID fetches a tenant by its UUID.
func (p *pgStore) TenantByID(ctx context.Context, id string) (Tenant, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id=$1`, id)
	return scanTenant(row)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanTenant(row rowScanner) (Tenant, error) {
	var t Tenant
	var settingsJSON []byte
	if err := row.Scan(&t.ID, &t.Slug, &t.DisplayName, &t.LogoURL, &t.FaviconURL,
		&t.PrimaryColor, &t.SecondaryColor, &t.AccentColor, &settingsJSON, &t.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	if len(settingsJSON) > 0 {
		_ = json.Unmarshal(settingsJSON, &t.Settings)
	}
	if t.Settings == nil {
		t.Settings = map[string]any{}
	}
	return t, nil
}
