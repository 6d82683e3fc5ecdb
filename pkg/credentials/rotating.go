package credentials

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"memberhub/pkg/integrations"
)

// RotatingSource maintains the single persisted {access, refresh} pair for a
// provider that rotates refresh tokens on every exchange. The persisted row
// is overwritten with a compare-and-swap on the previous refresh token:
// losing the swap means a peer instance refreshed first, and its row is the
// authoritative one, so we re-read instead of clobbering it.
type RotatingSource struct {
	integ      integrations.Integration
	store      Store
	httpClient *http.Client
	window     time.Duration
	now        Clock
	log        *zap.SugaredLogger

	sf    singleflight.Group
	mu    sync.Mutex
	stale bool // set by Invalidate
}

func NewRotatingSource(integ integrations.Integration, store Store, hc *http.Client, window time.Duration, now Clock, log *zap.SugaredLogger) *RotatingSource {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RotatingSource{integ: integ, store: store, httpClient: hc, window: window, now: now, log: log}
}

func (s *RotatingSource) Token(ctx context.Context) (Token, error) {
	v, err, _ := s.sf.Do("token", func() (any, error) {
		cur, err := s.store.Load(ctx, s.integ.Kind)
		if err != nil {
			return Token{}, upstreamErr(err)
		}
		if s.fresh(cur) {
			return Token{Value: cur.AccessToken, ExpiresAt: cur.ExpiresAt}, nil
		}
		return s.refresh(ctx, cur)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

func (s *RotatingSource) fresh(c StoredCredential) bool {
	s.mu.Lock()
	stale := s.stale
	s.mu.Unlock()
	return !stale && c.ExpiresAt.After(s.now().Add(s.window))
}

func (s *RotatingSource) refresh(ctx context.Context, cur StoredCredential) (Token, error) {
	form := url.Values{
		"grant_type":    {integrations.GrantRefreshToken},
		"refresh_token": {cur.RefreshToken},
	}
	resp, err := integrations.ExchangeToken(ctx, s.httpClient, s.integ.TokenURL, s.integ.ClientID(), s.integ.ClientSecret(), form)
	if err != nil {
		// Hard error: the old refresh token may already be consumed and no
		// safe fallback exists.
		return Token{}, upstreamErr(err)
	}
	next := StoredCredential{
		AccessToken:       resp.AccessToken,
		RefreshToken:      resp.RefreshToken,
		UpstreamContextID: cur.UpstreamContextID,
		ExpiresAt:         s.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cur.RefreshToken
	}
	swapped, err := s.store.Swap(ctx, s.integ.Kind, cur.RefreshToken, next)
	if err != nil {
		return Token{}, upstreamErr(err)
	}
	s.mu.Lock()
	s.stale = false
	s.mu.Unlock()
	if !swapped {
		// A peer won the race; its persisted pair is the live one.
		s.log.Warnw("credential swap conflict, re-reading", "integration", s.integ.Kind)
		latest, lerr := s.store.Load(ctx, s.integ.Kind)
		if lerr != nil {
			return Token{}, upstreamErr(lerr)
		}
		return Token{Value: latest.AccessToken, ExpiresAt: latest.ExpiresAt}, nil
	}
	return Token{Value: next.AccessToken, ExpiresAt: next.ExpiresAt}, nil
}

func (s *RotatingSource) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}
