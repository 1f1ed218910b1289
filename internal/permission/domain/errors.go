package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/errors"
)

// ErrWildcardPermission indicates a caller asked whether a wildcard
// permission is allowed. That is a programmer error, not a runtime
// condition; evaluation only accepts concrete permissions.
var ErrWildcardPermission = errors.Wrap(errors.ErrInvalidInput, "cannot check if permissions allow a wildcard permission")

// ErrRoleNotFound indicates the requested role does not exist.
var ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

// MalformedPermissionError indicates a stored permission token that does not
// match the namespace:permission wire format. It is a data-integrity error;
// the whole parse aborts rather than skipping the bad entry.
type MalformedPermissionError struct {
	Permission string
}

// Error implements the error interface.
func (e *MalformedPermissionError) Error() string {
	return fmt.Sprintf("malformed permission %q", e.Permission)
}

// Unwrap maps the error onto the shared malformed-data sentinel.
func (e *MalformedPermissionError) Unwrap() error {
	return errors.ErrMalformedData
}

// MalformedPermissionCollectionError indicates a stored permission collection
// that is not a JSON array of strings.
type MalformedPermissionCollectionError struct {
	RoleID *uuid.UUID
}

// Error implements the error interface.
func (e *MalformedPermissionCollectionError) Error() string {
	if e.RoleID != nil {
		return fmt.Sprintf("malformed permission collection on role %q", e.RoleID)
	}
	return "malformed permission collection"
}

// Unwrap maps the error onto the shared malformed-data sentinel.
func (e *MalformedPermissionCollectionError) Unwrap() error {
	return errors.ErrMalformedData
}
