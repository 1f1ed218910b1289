package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/event"
)

// AuthenticationAttempting is the pre-resolution gate, dispatched before any
// user data is touched. Suitable for IP or user-agent vetoes: cancelling it
// aborts authentication without revealing whether the user exists.
type AuthenticationAttempting struct {
	event.Gate

	Email   string
	Device  Device
	Context OperatingContext
}

// AuthenticatingUser is the read-only projection of a resolved user handed
// to the authorising gate. It never carries the password hash.
type AuthenticatingUser struct {
	UserID          uuid.UUID
	Name            string
	Email           string
	EmailVerifiedAt *time.Time
}

// AuthenticationAuthorising is the post-resolution gate, dispatched once the
// user is known and their credentials have been verified. Suitable for
// business-rule vetoes such as suspended accounts.
type AuthenticationAuthorising struct {
	event.Gate

	User    AuthenticatingUser
	Device  Device
	Context OperatingContext
}
