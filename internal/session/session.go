// Package session reads the identity provider's session from browser
// requests and hands each request an API client carrying the user's token.
package session

import (
	"context"
	"time"

	"mibolsillo/internal/apiclient"
	"mibolsillo/internal/core"
)

// State is the outcome of reading the identity provider's cookies.
type State int

const (
	// SignedOut means there is no client session at all.
	SignedOut State = iota
	// Loading means the provider has a client session but the short-lived
	// token is missing or expired; the browser has to refresh it first.
	Loading
	// SignedIn means a usable token is present.
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedIn:
		return "signed_in"
	case Loading:
		return "loading"
	default:
		return "signed_out"
	}
}

// Session is the per-request view of who is calling.
type Session struct {
	State     State
	Token     string
	User      core.User
	ExpiresAt time.Time
}

// SignedIn reports whether the session carries a usable token.
func (s Session) SignedIn() bool { return s.State == SignedIn }

type ctxKey int

const (
	sessionKey ctxKey = iota
	clientKey
)

// NewContext stores s and the scoped client in ctx.
func NewContext(ctx context.Context, s Session, c *apiclient.Client) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, clientKey, c)
}

// FromContext returns the session stored by the bridge, or a signed-out one.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey).(Session); ok {
		return s
	}
	return Session{State: SignedOut}
}

// ClientFromContext returns the request-scoped API client, or nil outside
// the bridge.
func ClientFromContext(ctx context.Context) *apiclient.Client {
	c, _ := ctx.Value(clientKey).(*apiclient.Client)
	return c
}
