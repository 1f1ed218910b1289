// Package http provides HTTP handlers and middleware for authentication:
// the login endpoint, the bearer token guard and permission checks.
package http

import (
	"context"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
)

// authContextKey is a context key type for storing the authenticated session.
type authContextKey struct{}

// WithAuthContext stores the authenticated session in the context. Called by
// the bearer guard after successful token resolution.
func WithAuthContext(ctx context.Context, authContext *authDomain.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, authContext)
}

// GetAuthContext retrieves the authenticated session from the context.
// Returns (nil, false) if the guard has not run.
func GetAuthContext(ctx context.Context) (*authDomain.AuthContext, bool) {
	authContext, ok := ctx.Value(authContextKey{}).(*authDomain.AuthContext)
	return authContext, ok
}
