package credentials

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberhub/pkg/integrations"
)

func testIntegration(t *testing.T, tokenURL, grant string) integrations.Integration {
	t.Setenv("TEST_CLIENT_ID", "client-id")
	t.Setenv("TEST_CLIENT_SECRET", "client-secret")
	t.Setenv("TEST_ACCOUNT_ID", "acct-42")
	return integrations.Integration{
		Kind:            "scheduling",
		Grant:           grant,
		TokenURL:        tokenURL,
		ClientIDEnv:     "TEST_CLIENT_ID",
		ClientSecretEnv: "TEST_CLIENT_SECRET",
		AccountIDEnv:    "TEST_ACCOUNT_ID",
	}
}

// tokenServer counts exchanges and returns a fixed lifetime.
func tokenServer(t *testing.T, calls *int32, expiresIn int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, integrations.GrantAccountCredentials, r.PostForm.Get("grant_type"))
		assert.Equal(t, "acct-42", r.PostForm.Get("account_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"expires_in":   expiresIn,
		})
	}))
}

func TestClientCredentials_TokenOutsideWindowServedFromCache(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, 120) // 120s remaining, window 60s
	defer srv.Close()

	now := time.Now()
	clk := func() time.Time { return now }
	src := NewClientCredentialsSource(testIntegration(t, srv.URL, integrations.GrantAccountCredentials), srv.Client(), 60*time.Second, clk)

	first, err := src.Token(context.Background())
	require.NoError(t, err)
	second, err := src.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientCredentials_TokenInsideWindowReExchanged(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, 30) // 30s remaining breaches the 60s window
	defer srv.Close()

	now := time.Now()
	clk := func() time.Time { return now }
	src := NewClientCredentialsSource(testIntegration(t, srv.URL, integrations.GrantAccountCredentials), srv.Client(), 60*time.Second, clk)

	_, err := src.Token(context.Background())
	require.NoError(t, err)
	_, err = src.Token(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClientCredentials_InvalidateForcesExchange(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, 3600)
	defer srv.Close()

	src := NewClientCredentialsSource(testIntegration(t, srv.URL, integrations.GrantAccountCredentials), srv.Client(), 60*time.Second, nil)

	_, err := src.Token(context.Background())
	require.NoError(t, err)
	src.Invalidate()
	_, err = src.Token(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClientCredentials_ConcurrentColdCallsShareOneExchange(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	}))
	defer srv.Close()

	src := NewClientCredentialsSource(testIntegration(t, srv.URL, integrations.GrantAccountCredentials), srv.Client(), 60*time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.Token(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientCredentials_ExchangeFailureIsUpstreamAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := NewClientCredentialsSource(testIntegration(t, srv.URL, integrations.GrantAccountCredentials), srv.Client(), 60*time.Second, nil)

	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}
