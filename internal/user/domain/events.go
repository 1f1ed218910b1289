package domain

import "github.com/google/uuid"

// UserRegistered is recorded when a new user is created and dispatched after
// the registration is persisted.
type UserRegistered struct {
	UserID uuid.UUID
	Email  string
}

// UserEmailChanged is recorded when the user's email is replaced.
type UserEmailChanged struct {
	UserID uuid.UUID
	Email  string
}

// UserPasswordChanged is recorded when the user's password hash is replaced.
// It deliberately carries no credential material.
type UserPasswordChanged struct {
	UserID uuid.UUID
}
