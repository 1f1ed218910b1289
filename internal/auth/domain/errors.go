package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; the two are deliberately indistinguishable to prevent
	// account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid authentication credentials")

	// ErrAuthTokenNotFound indicates a token with the given ID does not exist.
	ErrAuthTokenNotFound = errors.Wrap(errors.ErrNotFound, "auth token not found")

	// ErrInvalidToken covers every bearer rejection on the verification path:
	// unknown prefix, malformed material, unknown selector, digest mismatch,
	// wrong context, expired or revoked. The causes are deliberately
	// indistinguishable to the caller.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid auth token")
)

// UnableToAuthenticateError covers every post-credential-check failure:
// inactive user, wrong context, cancelled gate, entropy failure, persistence
// failure. It carries a human-readable reason and optionally the offending
// user ID; it never carries the password.
type UnableToAuthenticateError struct {
	Reason string
	UserID *uuid.UUID
}

// Error implements the error interface.
func (e *UnableToAuthenticateError) Error() string {
	if e.UserID != nil {
		return fmt.Sprintf("unable to authenticate user %q: %s", e.UserID, e.Reason)
	}
	return fmt.Sprintf("unable to authenticate user: %s", e.Reason)
}

// Unwrap maps the error onto the shared unauthorized sentinel.
func (e *UnableToAuthenticateError) Unwrap() error {
	return errors.ErrUnauthorized
}

// NewUnableToAuthenticate creates an UnableToAuthenticateError.
func NewUnableToAuthenticate(reason string, userID *uuid.UUID) error {
	return &UnableToAuthenticateError{Reason: reason, UserID: userID}
}
