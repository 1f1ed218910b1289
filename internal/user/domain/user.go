// Package domain defines the user aggregate and its lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"

	authdomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/event"
)

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)

// User is the aggregate root for an account holder. All mutable state is
// private and changes only through the lifecycle methods below.
type User struct {
	event.Recorder

	id              uuid.UUID
	name            string
	email           string
	emailVerifiedAt *time.Time
	password        string
	active          bool
	operatesIn      []authdomain.OperatingContext
}

// NewUser registers a fresh user. The password must already be hashed; the
// aggregate never sees cleartext credentials. New users start active and
// operate in the account context only.
func NewUser(name, email, hashedPassword string) *User {
	user := &User{
		id:         uuid.Must(uuid.NewV7()),
		name:       name,
		email:      email,
		password:   hashedPassword,
		active:     true,
		operatesIn: []authdomain.OperatingContext{authdomain.ContextAccount},
	}

	user.Record(UserRegistered{UserID: user.id, Email: email})

	return user
}

// RehydrateUser rebuilds a user aggregate from persisted state.
func RehydrateUser(
	id uuid.UUID,
	name, email string,
	emailVerifiedAt *time.Time,
	hashedPassword string,
	active bool,
	operatesIn []authdomain.OperatingContext,
) *User {
	return &User{
		id:              id,
		name:            name,
		email:           email,
		emailVerifiedAt: emailVerifiedAt,
		password:        hashedPassword,
		active:          active,
		operatesIn:      operatesIn,
	}
}

// ID returns the user identity.
func (u *User) ID() uuid.UUID { return u.id }

// Name returns the user's display name.
func (u *User) Name() string { return u.name }

// Email returns the user's email address.
func (u *User) Email() string { return u.email }

// EmailVerifiedAt returns when the email was verified, if it was.
func (u *User) EmailVerifiedAt() *time.Time { return u.emailVerifiedAt }

// Password returns the stored password hash.
func (u *User) Password() string { return u.password }

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool { return u.active }

// OperatesIn returns the contexts the user may authenticate into.
func (u *User) OperatesIn() []authdomain.OperatingContext {
	contexts := make([]authdomain.OperatingContext, len(u.operatesIn))
	copy(contexts, u.operatesIn)
	return contexts
}

// CanOperateIn reports whether the user may authenticate into the context.
func (u *User) CanOperateIn(context authdomain.OperatingContext) bool {
	for _, granted := range u.operatesIn {
		if granted == context {
			return true
		}
	}
	return false
}

// AddOperatesIn grants the user access to a context. Idempotent.
func (u *User) AddOperatesIn(context authdomain.OperatingContext) {
	if u.CanOperateIn(context) {
		return
	}
	u.operatesIn = append(u.operatesIn, context)
}

// RemoveOperatesIn withdraws the user's access to a context. Idempotent.
func (u *User) RemoveOperatesIn(context authdomain.OperatingContext) {
	kept := u.operatesIn[:0]
	for _, granted := range u.operatesIn {
		if granted != context {
			kept = append(kept, granted)
		}
	}
	u.operatesIn = kept
}

// Activate enables authentication for the user.
func (u *User) Activate() { u.active = true }

// Deactivate blocks authentication for the user. Existing tokens keep their
// own lifecycle; deactivation only gates new authentications.
func (u *User) Deactivate() { u.active = false }

// VerifyEmail marks the email as verified at the given time. Idempotent; the
// first verification timestamp wins.
func (u *User) VerifyEmail(now time.Time) {
	if u.emailVerifiedAt != nil {
		return
	}
	u.emailVerifiedAt = &now
}

// ChangeEmail replaces the email and resets verification.
func (u *User) ChangeEmail(email string) {
	if u.email == email {
		return
	}
	u.email = email
	u.emailVerifiedAt = nil
	u.Record(UserEmailChanged{UserID: u.id, Email: email})
}

// ChangePassword replaces the stored password hash.
func (u *User) ChangePassword(hashedPassword string) {
	u.password = hashedPassword
	u.Record(UserPasswordChanged{UserID: u.id})
}
