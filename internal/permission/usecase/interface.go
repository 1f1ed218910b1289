// Package usecase provides business logic for role management and
// permission checks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/permission/domain"
)

// RoleRepository defines persistence operations for roles and the per-user
// permission aggregation query. Implementations must support
// transaction-aware operations via context propagation.
type RoleRepository interface {
	// Save inserts or updates the role. A false return means the write
	// failed and nothing was cached or dispatched.
	Save(ctx context.Context, role *domain.Role) bool

	// Find retrieves a role by ID. Returns ErrRoleNotFound if not found.
	Find(ctx context.Context, id uuid.UUID) (*domain.Role, error)

	// GetPermissionGrantsForUser merges the permission collections of every
	// role the user holds in the context.
	GetPermissionGrantsForUser(
		ctx context.Context,
		userID uuid.UUID,
		operatingContext authDomain.OperatingContext,
	) (*domain.PermissionGrants, error)

	// AssignToUser links a role to a user.
	AssignToUser(ctx context.Context, roleID, userID uuid.UUID) error
}

// CreateRoleInput contains the parameters for creating a role.
type CreateRoleInput struct {
	Context     string              `json:"context"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

// PermissionUseCase defines role management and authorization decisions.
type PermissionUseCase interface {
	// Allows reports whether the user holds the permission in the namespace
	// for the operating context. A user with no roles is always denied.
	// Asking for a wildcard permission is an invalid-argument error.
	Allows(
		ctx context.Context,
		userID uuid.UUID,
		operatingContext authDomain.OperatingContext,
		namespace, permission string,
	) (bool, error)

	// CreateRole creates and persists a new role.
	CreateRole(ctx context.Context, input *CreateRoleInput) (*domain.Role, error)

	// AssignRole links an existing role to a user.
	AssignRole(ctx context.Context, roleID, userID uuid.UUID) error
}
