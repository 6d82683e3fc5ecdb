// pkg/middleware/tenant.go
package middleware

import (
	"context"
	"net/http"

	"memberhub/pkg/tenants"
)

type ctxTenantKey struct{}

// WithTenant resolves the request's tenant from its hostname and attaches it
// to the context before any business logic runs. Resolution never fails;
// unknown hosts carry the default tenant.
func WithTenant(resolver *tenants.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health/metrics don't need tenant context
			switch r.URL.Path {
			case "/healthz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			t := resolver.Resolve(r.Context(), r.Header, r.Host)
			ctx := context.WithValue(r.Context(), ctxTenantKey{}, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithTenant attaches a tenant directly; used by tests and background
// jobs that run outside the middleware chain.
func ContextWithTenant(ctx context.Context, t tenants.Tenant) context.Context {
	return context.WithValue(ctx, ctxTenantKey{}, t)
}

func TenantFrom(ctx context.Context) tenants.Tenant {
	if v := ctx.Value(ctxTenantKey{}); v != nil {
		return v.(tenants.Tenant)
	}
	return tenants.Tenant{}
}
