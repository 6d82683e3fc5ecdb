// Package credentials keeps valid upstream bearer tokens alive for the two
// grant shapes the portal's providers use: a direct account-credentials
// exchange and a rotating refresh token. Both variants guarantee a returned
// token will outlive its safety window, and both dedupe concurrent refreshes
// within the process through singleflight.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUpstreamAuth distinguishes credential failures: no safe default bearer
// exists, so callers must surface this instead of proceeding.
var ErrUpstreamAuth = errors.New("upstream authentication unavailable")

// Token is a bearer token with its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Source yields valid upstream bearer tokens.
type Source interface {
	// Token returns a token that will not expire within the safety window.
	Token(ctx context.Context) (Token, error)
	// Invalidate forces a refresh on the next Token call.
	Invalidate()
}

// Clock abstracts time.Now for deterministic expiry tests.
type Clock func() time.Time

func upstreamErr(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
}
