// Package portal is the member-portal HTTP surface: list queries, cascading
// deletes, session conflict checks and upstream-provider calls, all scoped to
// the tenant resolved from the request hostname.
package portal

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"memberhub/internal/cascade"
	"memberhub/internal/scheduling"
	"memberhub/pkg/config"
	"memberhub/pkg/credentials"
	"memberhub/pkg/integrations"
	"memberhub/pkg/tenants"
)

// App is the portal application container: shared deps and config only,
// request-scoped work goes through context.
type App struct {
	cfg         config.Config
	log         *zap.SugaredLogger
	db          *pgxpool.Pool
	invalidator *tenants.Invalidator
	deleter     *cascade.Orchestrator
	sessions    scheduling.SessionStore
	integs      map[string]integrations.Integration
	sources     map[string]credentials.Source
}

func New(cfg config.Config, log *zap.SugaredLogger, db *pgxpool.Pool,
	invalidator *tenants.Invalidator, deleter *cascade.Orchestrator,
	sessions scheduling.SessionStore,
	integs map[string]integrations.Integration,
	sources map[string]credentials.Source) *App {
	return &App{
		cfg: cfg, log: log, db: db,
		invalidator: invalidator, deleter: deleter, sessions: sessions,
		integs: integs, sources: sources,
	}
}

// collections maps list-endpoint names to their tables. The full per-entity
// catalog lives with the route handlers that own each entity; only the core
// portal collections are queryable here.
var collections = map[string]string{
	"members":                  "members",
	"sessions":                 "sessions",
	"events":                   "events",
	"bookings":                 "bookings",
	"articles":                 "articles",
	"communication-categories": "communication_categories",
}

// plainDeleteKinds are deletable kinds without dependent rows.
var plainDeleteKinds = map[string]string{
	"sessions": "sessions",
	"bookings": "bookings",
	"members":  "members",
}

// PlainDeleteKinds is consumed by main when wiring the orchestrator.
func PlainDeleteKinds() map[string]string {
	out := make(map[string]string, len(plainDeleteKinds))
	for k, v := range plainDeleteKinds {
		out[k] = v
	}
	return out
}
