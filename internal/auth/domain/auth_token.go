package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/event"
)

// Device captures optional request metadata bound to a token at issuance.
type Device struct {
	UserAgent *string
	IP        *string
}

// AuthToken is the aggregate root for one issued bearer credential. All
// mutable state is private; Revoke and MarkUsed are the only mutations.
type AuthToken struct {
	event.Recorder

	id      uuid.UUID
	token   StoredToken
	userID  uuid.UUID
	context OperatingContext
	device  Device

	lastUsedAt    *time.Time
	expiresAt     *time.Time
	revokedAt     *time.Time
	revokedReason *string
}

// NewAuthToken creates a token aggregate for a freshly generated credential.
func NewAuthToken(
	userID uuid.UUID,
	context OperatingContext,
	token StoredToken,
	device Device,
	expiresAt *time.Time,
) *AuthToken {
	return &AuthToken{
		id:        uuid.Must(uuid.NewV7()),
		token:     token,
		userID:    userID,
		context:   context,
		device:    device,
		expiresAt: expiresAt,
	}
}

// RehydrateAuthToken rebuilds a token aggregate from persisted state.
func RehydrateAuthToken(
	id uuid.UUID,
	token StoredToken,
	userID uuid.UUID,
	context OperatingContext,
	device Device,
	lastUsedAt, expiresAt, revokedAt *time.Time,
	revokedReason *string,
) *AuthToken {
	return &AuthToken{
		id:            id,
		token:         token,
		userID:        userID,
		context:       context,
		device:        device,
		lastUsedAt:    lastUsedAt,
		expiresAt:     expiresAt,
		revokedAt:     revokedAt,
		revokedReason: revokedReason,
	}
}

// ID returns the token identity.
func (t *AuthToken) ID() uuid.UUID { return t.id }

// Token returns the stored credential.
func (t *AuthToken) Token() StoredToken { return t.token }

// UserID returns the owning user.
func (t *AuthToken) UserID() uuid.UUID { return t.userID }

// Context returns the operating context the token is scoped to.
func (t *AuthToken) Context() OperatingContext { return t.context }

// Device returns the device metadata captured at issuance.
func (t *AuthToken) Device() Device { return t.device }

// LastUsedAt returns when the token last authenticated a request.
func (t *AuthToken) LastUsedAt() *time.Time { return t.lastUsedAt }

// ExpiresAt returns the expiry timestamp, if any.
func (t *AuthToken) ExpiresAt() *time.Time { return t.expiresAt }

// RevokedAt returns the revocation timestamp, if any.
func (t *AuthToken) RevokedAt() *time.Time { return t.revokedAt }

// RevokedReason returns the revocation reason, if one was given.
func (t *AuthToken) RevokedReason() *string { return t.revokedReason }

// HasExpired reports whether the token's expiry has passed. The boundary is
// inclusive: a token whose expiry equals now is expired. Expiry is observed
// lazily; there is no stored "expired" flag.
func (t *AuthToken) HasExpired(now time.Time) bool {
	return t.expiresAt != nil && !t.expiresAt.After(now)
}

// WasRevoked reports whether the token was revoked at or before now.
func (t *AuthToken) WasRevoked(now time.Time) bool {
	return t.revokedAt != nil && !t.revokedAt.After(now)
}

// IsActive reports whether the token may still authenticate requests.
func (t *AuthToken) IsActive(now time.Time) bool {
	return !t.WasRevoked(now) && !t.HasExpired(now)
}

// Revoke permanently invalidates the token. Calling it again overwrites the
// timestamp and reason but the token stays revoked; there is no un-revoke.
// The revocation event is recorded only on the first transition.
func (t *AuthToken) Revoke(now time.Time, reason *string) {
	firstRevocation := t.revokedAt == nil

	t.revokedAt = &now
	t.revokedReason = reason

	if firstRevocation {
		t.Record(AuthTokenRevoked{AuthTokenID: t.id, UserID: t.userID})
	}
}

// MarkUsed updates the last-used timestamp without changing token state.
func (t *AuthToken) MarkUsed(now time.Time) {
	t.lastUsedAt = &now
}
