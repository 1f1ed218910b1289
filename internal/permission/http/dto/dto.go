// Package dto provides data transfer objects for the role endpoints.
package dto

import (
	permissionDomain "github.com/icarushq/icarus/internal/permission/domain"
)

// AssignRoleRequest links a role to a user.
type AssignRoleRequest struct {
	UserID string `json:"user_id"`
}

// RoleResponse describes a role. The permission grants stay internal; callers
// learn decisions through the guarded endpoints, not the raw collection.
type RoleResponse struct {
	ID          string  `json:"id"`
	Context     string  `json:"context"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// NewRoleResponse builds a RoleResponse from the domain aggregate.
func NewRoleResponse(role *permissionDomain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID().String(),
		Context:     string(role.Context()),
		Name:        role.Name(),
		Description: role.Description(),
	}
}
