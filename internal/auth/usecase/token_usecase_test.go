package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
)

// issuedToken builds a generated credential plus the matching read model, as
// the repository would return it for the selector.
func issuedToken(t *testing.T, context authDomain.OperatingContext, expiresAt, revokedAt *time.Time) (string, *authDomain.AuthTokenResult) {
	t.Helper()

	unhashed, err := authDomain.GenerateToken(context)
	require.NoError(t, err)

	result := &authDomain.AuthTokenResult{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    uuid.Must(uuid.NewV7()),
		Token:     unhashed.Stored,
		Context:   context,
		ExpiresAt: expiresAt,
		RevokedAt: revokedAt,
	}

	return unhashed.Token, result
}

func TestTokenUseCase_ResolveToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ResolvesActiveToken", func(t *testing.T) {
		bearer, stored := issuedToken(t, authDomain.ContextAccount, nil, nil)
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, stored.Token.Selector).Return(stored, nil)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		authContext, err := useCase.ResolveToken(ctx, bearer)
		require.NoError(t, err)
		assert.Equal(t, stored.UserID, authContext.UserID)
		assert.Equal(t, stored.ID, authContext.AuthTokenID)
		assert.Equal(t, authDomain.ContextAccount, authContext.Context)
	})

	t.Run("Failure_UnknownPrefix", func(t *testing.T) {
		tokenRepo := &mockAuthTokenRepository{}
		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err := useCase.ResolveToken(ctx, "bearer-without-known-prefix")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		tokenRepo.AssertNotCalled(t, "ResolveBySelector")
	})

	t.Run("Failure_MaterialTooShort", func(t *testing.T) {
		tokenRepo := &mockAuthTokenRepository{}
		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err := useCase.ResolveToken(ctx, "ic_acc_short")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		tokenRepo.AssertNotCalled(t, "ResolveBySelector")
	})

	t.Run("Failure_UnknownSelector", func(t *testing.T) {
		bearer, _ := issuedToken(t, authDomain.ContextAccount, nil, nil)
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrAuthTokenNotFound)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err := useCase.ResolveToken(ctx, bearer)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Failure_DigestMismatch", func(t *testing.T) {
		bearer, stored := issuedToken(t, authDomain.ContextAccount, nil, nil)

		// Same selector, different secret material
		other, err := authDomain.GenerateToken(authDomain.ContextAccount)
		require.NoError(t, err)
		stored.Token.Secret = other.Stored.Secret

		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, mock.Anything).Return(stored, nil)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err = useCase.ResolveToken(ctx, bearer)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Failure_ContextMismatch", func(t *testing.T) {
		bearer, stored := issuedToken(t, authDomain.ContextAccount, nil, nil)

		// Stored row claims the platform context; the prefix says account
		stored.Context = authDomain.ContextPlatform

		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, mock.Anything).Return(stored, nil)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err := useCase.ResolveToken(ctx, bearer)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Failure_ExpiredToken", func(t *testing.T) {
		expiresAt := testNow
		bearer, stored := issuedToken(t, authDomain.ContextAccount, &expiresAt, nil)

		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, mock.Anything).Return(stored, nil)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		// Expiry equal to now counts as expired
		_, err := useCase.ResolveToken(ctx, bearer)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Failure_RevokedToken", func(t *testing.T) {
		revokedAt := testNow.Add(-time.Minute)
		bearer, stored := issuedToken(t, authDomain.ContextAccount, nil, &revokedAt)

		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("ResolveBySelector", mock.Anything, mock.Anything).Return(stored, nil)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		_, err := useCase.ResolveToken(ctx, bearer)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}

func TestTokenUseCase_FlagTokenUsage(t *testing.T) {
	ctx := context.Background()

	newToken := func(t *testing.T) *authDomain.AuthToken {
		t.Helper()
		unhashed, err := authDomain.GenerateToken(authDomain.ContextAccount)
		require.NoError(t, err)
		return authDomain.NewAuthToken(uuid.Must(uuid.NewV7()), authDomain.ContextAccount,
			unhashed.Stored, authDomain.Device{}, nil)
	}

	t.Run("Success_StampsLastUsed", func(t *testing.T) {
		token := newToken(t)
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("Find", mock.Anything, token.ID()).Return(token, nil)
		tokenRepo.On("Save", mock.Anything, token).Return(true)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		require.NoError(t, useCase.FlagTokenUsage(ctx, token.ID()))
		require.NotNil(t, token.LastUsedAt())
		assert.True(t, token.LastUsedAt().Equal(testNow))
	})

	t.Run("Failure_TokenNotFound", func(t *testing.T) {
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("Find", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrAuthTokenNotFound)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		err := useCase.FlagTokenUsage(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrAuthTokenNotFound)
	})

	t.Run("Failure_SaveFails", func(t *testing.T) {
		token := newToken(t)
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("Find", mock.Anything, token.ID()).Return(token, nil)
		tokenRepo.On("Save", mock.Anything, token).Return(false)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		assert.Error(t, useCase.FlagTokenUsage(ctx, token.ID()))
	})
}

func TestTokenUseCase_RevokeToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RevokesToken", func(t *testing.T) {
		unhashed, err := authDomain.GenerateToken(authDomain.ContextPlatform)
		require.NoError(t, err)
		token := authDomain.NewAuthToken(uuid.Must(uuid.NewV7()), authDomain.ContextPlatform,
			unhashed.Stored, authDomain.Device{}, nil)

		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("Find", mock.Anything, token.ID()).Return(token, nil)
		tokenRepo.On("Save", mock.Anything, token).Return(true)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		reason := "user logout"
		require.NoError(t, useCase.RevokeToken(ctx, token.ID(), &reason))

		assert.True(t, token.WasRevoked(testNow))
		require.NotNil(t, token.RevokedReason())
		assert.Equal(t, "user logout", *token.RevokedReason())
	})

	t.Run("Failure_TokenNotFound", func(t *testing.T) {
		tokenRepo := &mockAuthTokenRepository{}
		tokenRepo.On("Find", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrAuthTokenNotFound)

		useCase := NewTokenUseCase(fakeTxManager{}, tokenRepo, fixedNow)

		err := useCase.RevokeToken(ctx, uuid.Must(uuid.NewV7()), nil)
		assert.ErrorIs(t, err, authDomain.ErrAuthTokenNotFound)
	})
}
