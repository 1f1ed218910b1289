// Package service provides technical services for authentication operations.
//
// This package implements reusable services for password hashing and
// verification using industry-standard cryptographic practices.
package service

// PasswordService defines operations for password hashing and validation.
// Implementations must use an industry-standard adaptive hashing algorithm
// (e.g., bcrypt, argon2).
type PasswordService interface {
	// HashPassword hashes a plain text password for storage. The resulting
	// string embeds the algorithm parameters and salt.
	HashPassword(plainPassword string) (hashedPassword string, error error)

	// VerifyPassword compares a plain text password against a stored hash.
	// Returns true if the password matches, false otherwise. The comparison
	// is constant-time to prevent timing attacks.
	VerifyPassword(plainPassword string, hashedPassword string) bool
}
