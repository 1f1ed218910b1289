package domain

import "github.com/google/uuid"

// UserAuthenticated is dispatched after a token has been issued and
// persisted. Listeners use it for notifications and audit trails.
type UserAuthenticated struct {
	UserID      uuid.UUID
	AuthTokenID uuid.UUID
	Device      Device
	Context     OperatingContext
}

// AuthTokenRevoked is recorded on the aggregate when a token is revoked and
// dispatched after the revocation is persisted.
type AuthTokenRevoked struct {
	AuthTokenID uuid.UUID
	UserID      uuid.UUID
}
