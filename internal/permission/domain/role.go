package domain

import (
	"github.com/google/uuid"

	authdomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/event"
)

// Role is the aggregate root for a named permission bundle scoped to one
// operating context. Users hold roles through role_users rows; the
// evaluation engine never sees roles, only the merged grants.
type Role struct {
	event.Recorder

	id          uuid.UUID
	context     authdomain.OperatingContext
	name        string
	description *string
	permissions *PermissionCollection
}

// NewRole creates a role with a fresh identity.
func NewRole(
	context authdomain.OperatingContext,
	name string,
	description *string,
	permissions *PermissionCollection,
) *Role {
	if permissions == nil {
		permissions = NewPermissionCollection(nil)
	}

	return &Role{
		id:          uuid.Must(uuid.NewV7()),
		context:     context,
		name:        name,
		description: description,
		permissions: permissions,
	}
}

// RehydrateRole rebuilds a role aggregate from persisted state.
func RehydrateRole(
	id uuid.UUID,
	context authdomain.OperatingContext,
	name string,
	description *string,
	permissions *PermissionCollection,
) *Role {
	return &Role{
		id:          id,
		context:     context,
		name:        name,
		description: description,
		permissions: permissions,
	}
}

// ID returns the role identity.
func (r *Role) ID() uuid.UUID { return r.id }

// Context returns the operating context the role is scoped to.
func (r *Role) Context() authdomain.OperatingContext { return r.context }

// Name returns the role name.
func (r *Role) Name() string { return r.name }

// Description returns the optional role description.
func (r *Role) Description() *string { return r.description }

// Permissions returns the role's mutable permission collection.
func (r *Role) Permissions() *PermissionCollection { return r.permissions }

// Rename changes the role name.
func (r *Role) Rename(name string) { r.name = name }

// Describe replaces the role description.
func (r *Role) Describe(description *string) { r.description = description }
