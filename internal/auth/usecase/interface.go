// Package usecase defines business logic interfaces for authentication and
// token lifecycle operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	userDomain "github.com/icarushq/icarus/internal/user/domain"
)

// UserRepository defines the user persistence operations the authentication
// flow needs. Implementations must support transaction-aware operations via
// context propagation.
type UserRepository interface {
	// Save inserts or updates the user. A false return means the write
	// failed and nothing was cached or dispatched.
	Save(ctx context.Context, user *userDomain.User) bool

	// Find retrieves a user by ID. Returns ErrUserNotFound if not found.
	Find(ctx context.Context, id uuid.UUID) (*userDomain.User, error)

	// FindByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	FindByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// AuthTokenRepository defines persistence operations for auth tokens.
// Implementations must support transaction-aware operations via context
// propagation.
type AuthTokenRepository interface {
	// Save inserts or updates the token. A false return means the write
	// failed and nothing was cached or dispatched.
	Save(ctx context.Context, token *authDomain.AuthToken) bool

	// Find retrieves a token by ID. Returns ErrAuthTokenNotFound if not found.
	Find(ctx context.Context, id uuid.UUID) (*authDomain.AuthToken, error)

	// ResolveBySelector returns the lean read model for the token whose
	// selector matches. Returns ErrAuthTokenNotFound if not found.
	ResolveBySelector(ctx context.Context, selector string) (*authDomain.AuthTokenResult, error)
}

// AuthenticationUseCase defines the credential-based authentication flow.
type AuthenticationUseCase interface {
	// Authenticate verifies the email and password for the context and, on
	// success, issues and persists a bearer token. The cleartext token is
	// surfaced exactly once in the returned result.
	//
	// An unknown email and a wrong password both fail with
	// ErrInvalidCredentials; the two are indistinguishable by design.
	Authenticate(
		ctx context.Context,
		email, password string,
		operatingContext authDomain.OperatingContext,
		device authDomain.Device,
	) (*authDomain.AuthenticationResult, error)
}

// TokenUseCase defines bearer token verification and lifecycle operations.
type TokenUseCase interface {
	// ResolveToken verifies a cleartext bearer string and returns the
	// authenticated session context. Every rejection is ErrInvalidToken.
	ResolveToken(ctx context.Context, bearer string) (*authDomain.AuthContext, error)

	// FlagTokenUsage updates the token's last-used timestamp.
	FlagTokenUsage(ctx context.Context, tokenID uuid.UUID) error

	// RevokeToken permanently invalidates the token.
	RevokeToken(ctx context.Context, tokenID uuid.UUID, reason *string) error
}
