package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPassword hashes a plain text password using Argon2id.
func (s *passwordService) HashPassword(plainPassword string) (hashedPassword string, error error) {
	hashedPassword, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashedPassword, nil
}

// VerifyPassword performs a constant-time comparison between a plain password
// and its hash.
func (s *passwordService) VerifyPassword(plainPassword string, hashedPassword string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a new PasswordService instance using Argon2id.
// Uses the Moderate policy for a balance between security and performance.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}
