package credentials

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberhub/pkg/integrations"
	"memberhub/pkg/logger"
)

func rotatingServer(t *testing.T, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, integrations.GrantRefreshToken, r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-new",
			"refresh_token": "refresh-new",
			"expires_in":    3600,
			"_call":         n,
		})
	}))
}

func seedStore(t *testing.T, expiresIn time.Duration) *MemoryStore {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "invoicing", StoredCredential{
		AccessToken:       "access-old",
		RefreshToken:      "refresh-old",
		UpstreamContextID: "ctx-7",
		ExpiresAt:         time.Now().Add(expiresIn),
	}))
	return store
}

func rotatingIntegration(t *testing.T, tokenURL string) integrations.Integration {
	in := testIntegration(t, tokenURL, integrations.GrantRefreshToken)
	in.Kind = "invoicing"
	return in
}

func TestRotating_FreshPersistedTokenServedWithoutExchange(t *testing.T) {
	var calls int32
	srv := rotatingServer(t, &calls)
	defer srv.Close()
	store := seedStore(t, time.Hour)

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), store, srv.Client(), 5*time.Minute, nil, logger.Nop())
	tok, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "access-old", tok.Value)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestRotating_ExpiringTokenRefreshedAndPersistedAtomically(t *testing.T) {
	var calls int32
	srv := rotatingServer(t, &calls)
	defer srv.Close()
	store := seedStore(t, time.Minute) // inside the 5m window

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), store, srv.Client(), 5*time.Minute, nil, logger.Nop())
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-new", tok.Value)

	persisted, err := store.Load(context.Background(), "invoicing")
	require.NoError(t, err)
	assert.Equal(t, "access-new", persisted.AccessToken)
	assert.Equal(t, "refresh-new", persisted.RefreshToken)
	assert.Equal(t, "ctx-7", persisted.UpstreamContextID)

	// Within the new token's window: no further exchange.
	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRotating_FailedExchangeIsHardError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_grant", http.StatusBadRequest)
	}))
	defer srv.Close()
	store := seedStore(t, time.Minute)

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), store, srv.Client(), 5*time.Minute, nil, logger.Nop())
	_, err := src.Token(context.Background())

	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestRotating_MissingRowIsHardError(t *testing.T) {
	var calls int32
	srv := rotatingServer(t, &calls)
	defer srv.Close()

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), NewMemoryStore(), srv.Client(), 5*time.Minute, nil, logger.Nop())
	_, err := src.Token(context.Background())

	assert.ErrorIs(t, err, ErrUpstreamAuth)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

// conflictStore simulates a peer instance winning the refresh race: Swap
// fails and a later Load returns the peer's pair.
type conflictStore struct {
	*MemoryStore
	loads int32
	peer  StoredCredential
}

func (c *conflictStore) Swap(ctx context.Context, integration, prev string, next StoredCredential) (bool, error) {
	_ = c.MemoryStore.Put(ctx, integration, c.peer)
	return false, nil
}

func (c *conflictStore) Load(ctx context.Context, integration string) (StoredCredential, error) {
	atomic.AddInt32(&c.loads, 1)
	return c.MemoryStore.Load(ctx, integration)
}

func TestRotating_SwapConflictReReadsPeerCredential(t *testing.T) {
	var calls int32
	srv := rotatingServer(t, &calls)
	defer srv.Close()

	cs := &conflictStore{
		MemoryStore: seedStore(t, time.Minute),
		peer: StoredCredential{
			AccessToken:  "access-peer",
			RefreshToken: "refresh-peer",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), cs, srv.Client(), 5*time.Minute, nil, logger.Nop())
	tok, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "access-peer", tok.Value)
}

func TestRotating_InvalidateForcesRefresh(t *testing.T) {
	var calls int32
	srv := rotatingServer(t, &calls)
	defer srv.Close()
	store := seedStore(t, time.Hour)

	src := NewRotatingSource(rotatingIntegration(t, srv.URL), store, srv.Client(), 5*time.Minute, nil, logger.Nop())
	_, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))

	src.Invalidate()
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-new", tok.Value)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
