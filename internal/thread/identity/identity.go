// Package identity resolves the current session to an author id. Submitting
// a reply requires an identity; everything else in the thread engine works
// without one.
package identity

import (
	"context"
	"errors"
)

// ErrNoSession when no authenticated identity is available.
var ErrNoSession = errors.New("no authenticated session")

type Provider interface {
	CurrentAuthor(ctx context.Context) (string, error)
}

// Labeler is an optional extension for providers that also know the
// session's display label. Replies from providers without one are labeled
// anonymously.
type Labeler interface {
	CurrentLabel(ctx context.Context) (string, error)
}

type ctxKey int

const tokenKey ctxKey = iota

// WithToken attaches a session token to the context. The HTTP layer sets it
// from the X-Session-Token header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the session token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// Static always resolves to one author id. Dev mode and tests.
type Static struct {
	AuthorID string
	Label    string
}

func (s Static) CurrentAuthor(ctx context.Context) (string, error) {
	_ = ctx
	if s.AuthorID == "" {
		return "", ErrNoSession
	}
	return s.AuthorID, nil
}

func (s Static) CurrentLabel(ctx context.Context) (string, error) {
	_ = ctx
	if s.AuthorID == "" {
		return "", ErrNoSession
	}
	return s.Label, nil
}

// None never resolves an identity.
type None struct{}

func (None) CurrentAuthor(ctx context.Context) (string, error) {
	_ = ctx
	return "", ErrNoSession
}
