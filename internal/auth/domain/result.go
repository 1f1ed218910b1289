package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthenticationResult is returned once per successful authentication. Token
// holds the cleartext bearer string; it is surfaced here and never again.
type AuthenticationResult struct {
	UserID      uuid.UUID
	Token       string
	AuthTokenID uuid.UUID
	Context     OperatingContext
	ExpiresAt   *time.Time
}

// AuthContext identifies the authenticated session for the remainder of a
// request: who, through which token, in which context.
type AuthContext struct {
	UserID      uuid.UUID
	AuthTokenID uuid.UUID
	Context     OperatingContext
}

// AuthTokenResult is the lean read model returned by the selector lookup on
// the verification path. It skips full aggregate hydration.
type AuthTokenResult struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     StoredToken
	Context   OperatingContext
	ExpiresAt *time.Time
	RevokedAt *time.Time
}

// IsActive reports whether the resolved token may authenticate a request,
// with the same inclusive boundaries as the aggregate's predicates.
func (r *AuthTokenResult) IsActive(now time.Time) bool {
	if r.RevokedAt != nil && !r.RevokedAt.After(now) {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}
