package integrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "integrations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
integrations:
  - kind: scheduling
    display_name: Scheduling Provider
    grant: account_credentials
    token_url: https://sched.example/oauth/token
    base_url: https://sched.example/api
    client_id_env: SCHED_CLIENT_ID
    client_secret_env: SCHED_CLIENT_SECRET
    account_id_env: SCHED_ACCOUNT_ID
  - kind: invoicing
    grant: refresh_token
    token_url: https://inv.example/oauth/token
    base_url: https://inv.example/v2
    client_id_env: INV_CLIENT_ID
    client_secret_env: INV_CLIENT_SECRET
`)
	t.Setenv("SCHED_CLIENT_ID", "abc")

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg, 2)

	sched := reg["scheduling"]
	assert.Equal(t, GrantAccountCredentials, sched.Grant)
	assert.Equal(t, "https://sched.example/oauth/token", sched.TokenURL)
	assert.Equal(t, "abc", sched.ClientID())

	assert.Equal(t, GrantRefreshToken, reg["invoicing"].Grant)
}

func TestLoadRegistry_EmptyPath(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Empty(t, reg)
}

func TestLoadRegistry_UnknownGrantRejected(t *testing.T) {
	path := writeRegistry(t, `
integrations:
  - kind: scheduling
    grant: password
    token_url: https://x.example/token
`)
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistry_MissingKindRejected(t *testing.T) {
	path := writeRegistry(t, `
integrations:
  - grant: refresh_token
    token_url: https://x.example/token
`)
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
