// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Tenant resolution
	DefaultTenantID string
	TenantCacheTTL  time.Duration

	// Upstream credential lifecycle. Safety windows are configurable because
	// the right values depend on the provider's token lifetimes.
	TokenSafetyWindow   time.Duration // client-credentials grant
	RefreshSafetyWindow time.Duration // rotating refresh-token grant
	IntegrationsFile    string

	// Member auth (may be tenant-specific via the tenant record)
	Issuer   string
	Audience string
	JWKSURL  string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                 env("MEMBERHUB_ENV", "dev"),
		HTTPAddr:            env("MEMBERHUB_HTTP_ADDR", ":8080"),
		DefaultTenantID:     env("DEFAULT_TENANT_ID", "00000000-0000-0000-0000-000000000001"),
		TenantCacheTTL:      envDur("TENANT_CACHE_TTL_SEC", 300) * time.Second,
		TokenSafetyWindow:   envDur("TOKEN_SAFETY_WINDOW_SEC", 60) * time.Second,
		RefreshSafetyWindow: envDur("REFRESH_SAFETY_WINDOW_SEC", 300) * time.Second,
		IntegrationsFile:    env("INTEGRATIONS_FILE", ""),
		Issuer:              env("OIDC_ISSUER", ""),
		Audience:            env("OIDC_AUDIENCE", "memberhub-portal"),
		JWKSURL:             env("JWKS_URL", ""),
		RedisURL:            env("REDIS_URL", ""),
		DatabaseURL:         env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set; using in-memory tenant store for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
