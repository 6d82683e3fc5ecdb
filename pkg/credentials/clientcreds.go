package credentials

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"memberhub/pkg/integrations"
)

// ClientCredentialsSource exchanges an account id plus client id/secret
// directly for a bearer token and caches it in a single in-memory slot.
// The slot is process-local; independent instances will each hold their own
// token, which the provider treats as idempotent-but-wasteful.
type ClientCredentialsSource struct {
	integ      integrations.Integration
	httpClient *http.Client
	window     time.Duration
	now        Clock

	sf   singleflight.Group
	mu   sync.Mutex
	slot Token
}

func NewClientCredentialsSource(integ integrations.Integration, hc *http.Client, window time.Duration, now Clock) *ClientCredentialsSource {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	return &ClientCredentialsSource{integ: integ, httpClient: hc, window: window, now: now}
}

func (s *ClientCredentialsSource) Token(ctx context.Context) (Token, error) {
	if t, ok := s.cached(); ok {
		return t, nil
	}
	v, err, _ := s.sf.Do("token", func() (any, error) {
		// A concurrent caller may have filled the slot while we queued.
		if t, ok := s.cached(); ok {
			return t, nil
		}
		form := url.Values{
			"grant_type": {integrations.GrantAccountCredentials},
			"account_id": {s.integ.AccountID()},
		}
		resp, err := integrations.ExchangeToken(ctx, s.httpClient, s.integ.TokenURL, s.integ.ClientID(), s.integ.ClientSecret(), form)
		if err != nil {
			return Token{}, upstreamErr(err)
		}
		t := Token{Value: resp.AccessToken, ExpiresAt: s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)}
		s.mu.Lock()
		s.slot = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// cached returns the slot token if it survives the safety window.
func (s *ClientCredentialsSource) cached() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot.Value == "" || !s.slot.ExpiresAt.After(s.now().Add(s.window)) {
		return Token{}, false
	}
	return s.slot, true
}

func (s *ClientCredentialsSource) Invalidate() {
	s.mu.Lock()
	s.slot = Token{}
	s.mu.Unlock()
}
