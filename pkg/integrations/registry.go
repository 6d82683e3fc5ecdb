package integrations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grant shapes supported by upstream providers.
const (
	GrantAccountCredentials = "account_credentials" // client id/secret exchanged directly
	GrantRefreshToken       = "refresh_token"       // rotating refresh token
)

// Integration describes one upstream scheduling/invoicing provider.
// Secrets are referenced by environment variable name so registry files can
// be committed without credentials in them.
type Integration struct {
	Kind            string `yaml:"kind"`
	DisplayName     string `yaml:"display_name"`
	Grant           string `yaml:"grant"`
	TokenURL        string `yaml:"token_url"`
	BaseURL         string `yaml:"base_url"`
	ClientIDEnv     string `yaml:"client_id_env"`
	ClientSecretEnv string `yaml:"client_secret_env"`
	AccountIDEnv    string `yaml:"account_id_env"` // account_credentials grant only
}

func (i Integration) ClientID() string     { return os.Getenv(i.ClientIDEnv) }
func (i Integration) ClientSecret() string { return os.Getenv(i.ClientSecretEnv) }
func (i Integration) AccountID() string    { return os.Getenv(i.AccountIDEnv) }

// LoadRegistry parses the YAML integration registry file. An empty path
// yields an empty registry (upstream features disabled).
func LoadRegistry(path string) (map[string]Integration, error) {
	out := map[string]Integration{}
	if path == "" {
		return out, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Integrations []Integration `yaml:"integrations"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse integrations registry: %w", err)
	}
	for _, in := range doc.Integrations {
		if in.Kind == "" {
			return nil, fmt.Errorf("integration with empty kind in %s", path)
		}
		switch in.Grant {
		case GrantAccountCredentials, GrantRefreshToken:
		default:
			return nil, fmt.Errorf("integration %s: unknown grant %q", in.Kind, in.Grant)
		}
		out[in.Kind] = in
	}
	return out, nil
}
