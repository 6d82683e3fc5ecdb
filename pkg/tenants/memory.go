// pkg/tenants/memory.go
package tenants

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

type memStore struct {
	log      *zap.SugaredLogger
	byDomain map[string]Tenant
	byID     map[string]Tenant
}

// NewMemoryStoreFromEnv builds an in-memory store for local development,
// seeded from TENANT_SEED_JSON or a single localhost default tenant.
func NewMemoryStoreFromEnv(log *zap.SugaredLogger, defaultTenantID string) Store {
	m := &memStore{log: log, byDomain: map[string]Tenant{}, byID: map[string]Tenant{}}
	seed := os.Getenv("TENANT_SEED_JSON")
	if seed != "" {
		var entries []struct {
			ID, Slug, DisplayName string
			Domains               []string
		}
		_ = json.Unmarshal([]byte(seed), &entries)
		for _, e := range entries {
			t := Tenant{ID: e.ID, Slug: e.Slug, DisplayName: e.DisplayName, Active: true, Settings: map[string]any{}}
			m.byID[t.ID] = t
			for _, d := range e.Domains {
				m.byDomain[d] = t
			}
		}
	}
	if _, ok := m.byID[defaultTenantID]; !ok {
		dev := Tenant{ID: defaultTenantID, Slug: "dev", DisplayName: "Dev Portal", Active: true, Settings: map[string]any{}}
		m.byID[dev.ID] = dev
		m.byDomain["localhost"] = dev
	}
	return m
}

func (m *memStore) TenantByDomain(ctx context.Context, domain string) (Tenant, error) {
	if t, ok := m.byDomain[domain]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) TenantByID(ctx context.Context, id string) (Tenant, error) {
	if t, ok := m.byID[id]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}
