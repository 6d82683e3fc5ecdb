// cmd/portal-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memberhub/internal/cascade"
	"memberhub/internal/portal"
	"memberhub/internal/scheduling"
	"memberhub/pkg/config"
	"memberhub/pkg/credentials"
	"memberhub/pkg/db"
	"memberhub/pkg/integrations"
	"memberhub/pkg/logger"
	"memberhub/pkg/middleware"
	"memberhub/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var store tenants.Store
	if pool != nil {
		store = tenants.NewPostgresStore(pool, log)
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("tenant schema", "err", err)
		}
		if err := tenants.SeedFromEnv(context.Background(), pool, os.Getenv("TENANT_SEED_JSON")); err != nil {
			log.Warnw("tenant seed", "err", err)
		}
	} else {
		store = tenants.NewMemoryStoreFromEnv(log, cfg.DefaultTenantID)
	}

	cache := tenants.NewCache(cfg.TenantCacheTTL, nil)
	resolver := tenants.NewResolver(store, cache, cfg.DefaultTenantID, log)
	invalidator := tenants.NewInvalidator(rdb, resolver, log)
	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()
	go invalidator.Listen(listenCtx)

	integs, err := integrations.LoadRegistry(cfg.IntegrationsFile)
	if err != nil {
		log.Fatalw("integrations registry", "err", err)
	}
	sources := map[string]credentials.Source{}
	if len(integs) > 0 {
		var credStore credentials.Store
		if pool != nil {
			if err := credentials.EnsureSchema(context.Background(), pool); err != nil {
				log.Fatalw("credential schema", "err", err)
			}
			credStore = credentials.NewPostgresStore(pool)
		} else {
			credStore = credentials.NewMemoryStore()
		}
		for kind, integ := range integs {
			switch integ.Grant {
			case integrations.GrantAccountCredentials:
				sources[kind] = credentials.NewClientCredentialsSource(integ, nil, cfg.TokenSafetyWindow, nil)
			case integrations.GrantRefreshToken:
				sources[kind] = credentials.NewRotatingSource(integ, credStore, nil, cfg.RefreshSafetyWindow, nil, log)
			}
			log.Infow("integration wired", "kind", kind, "grant", integ.Grant)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing(cfg))
	r.Use(middleware.WithTenant(resolver))
	r.Use(middleware.JWTAuth(cfg))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if pool != nil {
		if err := portal.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("portal schema", "err", err)
		}
		deleter := cascade.NewOrchestrator(cascade.NewPgxDB(pool), log, portal.PlainDeleteKinds())
		sessions := scheduling.NewPostgresSessionStore(pool)
		app := portal.New(cfg, log, pool, invalidator, deleter, sessions, integs, sources)
		app.Routes(r)
	} else {
		log.Warnw("portal routes disabled: no database configured")
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("portal-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("portal-service stopped")
}
