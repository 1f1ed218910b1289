// Package dto provides data transfer objects for user HTTP request and
// response handling.
package dto

import (
	"time"

	userDomain "github.com/icarushq/icarus/internal/user/domain"
)

// UserResponse describes a user in API responses. The password hash never
// leaves the domain.
type UserResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	Active          bool       `json:"active"`
	OperatesIn      []string   `json:"operates_in"`
}

// NewUserResponse maps a user aggregate to its response shape.
func NewUserResponse(user *userDomain.User) UserResponse {
	contexts := user.OperatesIn()
	operatesIn := make([]string, len(contexts))
	for i, operatingContext := range contexts {
		operatesIn[i] = operatingContext.String()
	}

	return UserResponse{
		ID:              user.ID().String(),
		Name:            user.Name(),
		Email:           user.Email(),
		EmailVerifiedAt: user.EmailVerifiedAt(),
		Active:          user.IsActive(),
		OperatesIn:      operatesIn,
	}
}
