// Package dto provides data transfer objects for authentication HTTP
// request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/icarushq/icarus/internal/validation"
)

// LoginRequest contains the credentials submitted to the token endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Context  string `json:"context"`
}

// Validate checks if the login request is valid. Credential correctness is
// the use case's concern; this only rejects structurally broken input.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Context,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// RevokeTokenRequest contains the optional reason for revoking the current
// session's token.
type RevokeTokenRequest struct {
	Reason *string `json:"reason"`
}

// Validate checks if the revoke token request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.Length(1, 255),
		),
	)
}
