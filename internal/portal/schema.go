package portal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the portal domain tables if they do not already
// exist. Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS members (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  email text NOT NULL,
  display_name text NOT NULL DEFAULT '',
  status text NOT NULL DEFAULT 'active',
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS sessions (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  label text NOT NULL DEFAULT '',
  host_id uuid,
  start_time timestamptz NOT NULL,
  duration_minutes int NOT NULL,
  cancelled boolean NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS events (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  title text NOT NULL DEFAULT '',
  start_time timestamptz,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS bookings (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  event_id uuid NOT NULL,
  member_id uuid NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS articles (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  title text NOT NULL DEFAULT '',
  body text NOT NULL DEFAULT '',
  published_at timestamptz
);
CREATE TABLE IF NOT EXISTS article_comments (
  id uuid PRIMARY KEY,
  article_id uuid NOT NULL,
  member_id uuid NOT NULL,
  body text NOT NULL DEFAULT '',
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS reactions (
  id uuid PRIMARY KEY,
  subject_kind text NOT NULL,
  subject_id uuid NOT NULL,
  member_id uuid NOT NULL,
  emoji text NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS article_views (
  id uuid PRIMARY KEY,
  article_id uuid NOT NULL,
  member_id uuid,
  viewed_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS communication_categories (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name text NOT NULL
);
CREATE TABLE IF NOT EXISTS category_roles (
  id uuid PRIMARY KEY,
  category_id uuid NOT NULL,
  role text NOT NULL
);
CREATE TABLE IF NOT EXISTS notification_preferences (
  id uuid PRIMARY KEY,
  category_id uuid NOT NULL,
  member_id uuid NOT NULL,
  channel text NOT NULL DEFAULT 'email',
  enabled boolean NOT NULL DEFAULT true
);
CREATE INDEX IF NOT EXISTS bookings_event_idx ON bookings(event_id);
CREATE INDEX IF NOT EXISTS article_comments_article_idx ON article_comments(article_id);
CREATE INDEX IF NOT EXISTS reactions_subject_idx ON reactions(subject_kind, subject_id);
CREATE INDEX IF NOT EXISTS sessions_tenant_idx ON sessions(tenant_id) WHERE NOT cancelled;
`)
	return err
}
