package tenants

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no tenant matches.
var ErrNotFound = errors.New("tenant not found")

// Store abstracts tenant lookups so the resolver can be exercised against
// postgres in production and a mock in tests.
type Store interface {
	// TenantByDomain returns the active tenant owning the given verified
	// domain. Unverified domains never match.
	TenantByDomain(ctx context.Context, domain string) (Tenant, error)
	// TenantByID fetches a tenant by its id.
	TenantByID(ctx context.Context, id string) (Tenant, error)
}
