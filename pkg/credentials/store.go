package credentials

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoCredential is returned when no persisted row exists for an integration.
var ErrNoCredential = errors.New("no persisted credential")

// StoredCredential is the single authoritative row for a rotating-refresh
// integration. The provider invalidates a refresh token on use, so at most
// one row exists and overwrites must be atomic.
type StoredCredential struct {
	AccessToken       string
	RefreshToken      string
	UpstreamContextID string
	ExpiresAt         time.Time
}

// Store persists rotating credentials.
type Store interface {
	Load(ctx context.Context, integration string) (StoredCredential, error)
	// Swap overwrites the row only if its refresh token still equals
	// prevRefreshToken. Returns false when another writer got there first.
	Swap(ctx context.Context, integration string, prevRefreshToken string, next StoredCredential) (bool, error)
	// Put unconditionally upserts the row; used for initial provisioning.
	Put(ctx context.Context, integration string, cred StoredCredential) error
}

// MemoryStore is a Store for dev and tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]StoredCredential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]StoredCredential{}}
}

func (m *MemoryStore) Load(ctx context.Context, integration string) (StoredCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[integration]
	if !ok {
		return StoredCredential{}, ErrNoCredential
	}
	return c, nil
}

func (m *MemoryStore) Swap(ctx context.Context, integration string, prev string, next StoredCredential) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[integration]
	if !ok || cur.RefreshToken != prev {
		return false, nil
	}
	m.rows[integration] = next
	return true, nil
}

func (m *MemoryStore) Put(ctx context.Context, integration string, cred StoredCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[integration] = cred
	return nil
}
