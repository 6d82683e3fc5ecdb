package tenants

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Resolver maps an inbound request's hostname to a tenant. Resolution never
// fails: store errors and unknown hostnames fall back to the default tenant
// so request handling always proceeds.
type Resolver struct {
	store           Store
	cache           *Cache
	defaultTenantID string
	log             *zap.SugaredLogger
}

func NewResolver(store Store, cache *Cache, defaultTenantID string, log *zap.SugaredLogger) *Resolver {
	return &Resolver{store: store, cache: cache, defaultTenantID: defaultTenantID, log: log}
}

// Resolve resolves the tenant for the given request headers.
// Order: forwarded host, cache, exact verified domain, base-domain fallback
// (any subdomain of a registered two-label root), default tenant.
func (r *Resolver) Resolve(ctx context.Context, header http.Header, directHost string) Tenant {
	host := HostFromHeaders(header, directHost)
	if t, ok := r.cache.Get(host); ok {
		return t
	}
	if t, err := r.lookup(ctx, host); err == nil {
		r.cache.Put(host, t)
		return t
	}
	if base := baseDomain(host); base != host {
		if t, err := r.lookup(ctx, base); err == nil {
			r.cache.Put(host, t)
			return t
		}
	}
	return r.fallback(ctx, host)
}

func (r *Resolver) lookup(ctx context.Context, domain string) (Tenant, error) {
	t, err := r.store.TenantByDomain(ctx, domain)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Warnw("tenant lookup failed", "domain", domain, "err", err)
		}
		return Tenant{}, err
	}
	return t, nil
}

func (r *Resolver) fallback(ctx context.Context, host string) Tenant {
	t, err := r.store.TenantByID(ctx, r.defaultTenantID)
	if err != nil {
		r.log.Warnw("default tenant unavailable", "host", host, "err", err)
		return Tenant{ID: r.defaultTenantID, Settings: map[string]any{}}
	}
	// The fallback is deliberately not cached: a later registration of this
	// hostname should be observed on the next request, not after the TTL.
	return t
}

// ClearCache invalidates cached resolutions; host=="" clears everything.
func (r *Resolver) ClearCache(host string) {
	if host == "" {
		r.cache.Clear()
		return
	}
	r.cache.ClearHost(host)
}

// HostFromHeaders extracts the request hostname, preferring the first value
// of X-Forwarded-Host over the direct host, and strips any trailing port.
func HostFromHeaders(header http.Header, directHost string) string {
	host := header.Get("X-Forwarded-Host")
	if host != "" {
		if i := strings.Index(host, ","); i >= 0 {
			host = host[:i]
		}
	} else {
		host = directHost
	}
	host = strings.TrimSpace(host)
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i+1:], "]") {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// baseDomain reduces a hostname to its last two dot-separated labels, so
// booking.acme.org resolves through a registered acme.org root without
// wildcard rows.
func baseDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
