package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/event"
	userDomain "github.com/icarushq/icarus/internal/user/domain"
)

var testNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func newTestUser(t *testing.T) *userDomain.User {
	t.Helper()

	user := userDomain.NewUser("Ada Lovelace", "ada@example.com", "$argon2id$stored-hash")
	user.ReleaseEvents()
	return user
}

func TestAuthenticationUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssuesAndPersistsToken", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}
		registry := event.NewRegistry(nil)

		var dispatched []any
		registry.RegisterFunc(func(ctx context.Context, e any) {
			dispatched = append(dispatched, e)
		})

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)

		var savedToken *authDomain.AuthToken
		tokenRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.AuthToken")).
			Run(func(args mock.Arguments) {
				savedToken = args.Get(1).(*authDomain.AuthToken)
			}).
			Return(true)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, registry, 4*time.Hour, fixedNow)

		userAgent := "test-agent"
		result, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{UserAgent: &userAgent})
		require.NoError(t, err)

		assert.Equal(t, user.ID(), result.UserID)
		assert.True(t, strings.HasPrefix(result.Token, "ic_acc_"))
		assert.Len(t, strings.TrimPrefix(result.Token, "ic_acc_"), 64)
		assert.Equal(t, authDomain.ContextAccount, result.Context)
		require.NotNil(t, result.ExpiresAt)
		assert.True(t, result.ExpiresAt.Equal(testNow.Add(4*time.Hour)))

		// The persisted aggregate carries the digest, never the cleartext
		require.NotNil(t, savedToken)
		assert.Equal(t, result.AuthTokenID, savedToken.ID())
		material := strings.TrimPrefix(result.Token, "ic_acc_")
		assert.Equal(t, material[:authDomain.SelectorLength], savedToken.Token().Selector)
		assert.NotContains(t, savedToken.Token().Secret, material[authDomain.SelectorLength:])

		// Gates before the notification, notification after persistence
		require.Len(t, dispatched, 3)
		assert.IsType(t, &authDomain.AuthenticationAttempting{}, dispatched[0])
		assert.IsType(t, &authDomain.AuthenticationAuthorising{}, dispatched[1])
		authenticated, ok := dispatched[2].(authDomain.UserAuthenticated)
		require.True(t, ok)
		assert.Equal(t, user.ID(), authenticated.UserID)
		assert.Equal(t, result.AuthTokenID, authenticated.AuthTokenID)
	})

	t.Run("Success_ZeroExpirationNeverExpires", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)
		tokenRepo.On("Save", mock.Anything, mock.Anything).Return(true)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, event.NewRegistry(nil), 0, fixedNow)

		result, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{})
		require.NoError(t, err)
		assert.Nil(t, result.ExpiresAt)
	})

	t.Run("Failure_UnknownEmail", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").
			Return(nil, userDomain.ErrUserNotFound)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, event.NewRegistry(nil), time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ghost@example.com", "any-password",
			authDomain.ContextAccount, authDomain.Device{})
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		tokenRepo.AssertNotCalled(t, "Save")
	})

	t.Run("Failure_WrongPassword", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "wrong-password", "$argon2id$stored-hash").Return(false)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, event.NewRegistry(nil), time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ada@example.com", "wrong-password",
			authDomain.ContextAccount, authDomain.Device{})

		// Indistinguishable from an unknown email
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		tokenRepo.AssertNotCalled(t, "Save")
	})

	t.Run("Failure_InactiveUser", func(t *testing.T) {
		user := newTestUser(t)
		user.Deactivate()
		userRepo := &mockUserRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, &mockAuthTokenRepository{}, passwordService, event.NewRegistry(nil), time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{})

		var unable *authDomain.UnableToAuthenticateError
		require.ErrorAs(t, err, &unable)
		assert.Equal(t, "user is not active", unable.Reason)
		require.NotNil(t, unable.UserID)
		assert.Equal(t, user.ID(), *unable.UserID)
	})

	t.Run("Failure_WrongContext", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, &mockAuthTokenRepository{}, passwordService, event.NewRegistry(nil), time.Hour, fixedNow)

		// The user operates in the account context only
		_, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextPlatform, authDomain.Device{})

		var unable *authDomain.UnableToAuthenticateError
		require.ErrorAs(t, err, &unable)
		assert.Contains(t, unable.Reason, "platform")
	})

	t.Run("Failure_AttemptingGateCancelled", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		registry := event.NewRegistry(nil)
		registry.RegisterFunc(func(ctx context.Context, e any) {
			if attempting, ok := e.(*authDomain.AuthenticationAttempting); ok {
				attempting.Cancel("ip banned")
			}
		})

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, &mockAuthTokenRepository{}, &mockPasswordService{}, registry, time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{})

		var unable *authDomain.UnableToAuthenticateError
		require.ErrorAs(t, err, &unable)
		assert.Equal(t, "ip banned", unable.Reason)
		assert.Nil(t, unable.UserID)

		// The gate fires before any user data is touched
		userRepo.AssertNotCalled(t, "FindByEmail")
	})

	t.Run("Failure_AuthorisingGateCancelled", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}
		registry := event.NewRegistry(nil)
		registry.RegisterFunc(func(ctx context.Context, e any) {
			if authorising, ok := e.(*authDomain.AuthenticationAuthorising); ok {
				authorising.Cancel("account under review")
			}
		})

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, registry, time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{})

		var unable *authDomain.UnableToAuthenticateError
		require.ErrorAs(t, err, &unable)
		assert.Equal(t, "account under review", unable.Reason)
		require.NotNil(t, unable.UserID)
		tokenRepo.AssertNotCalled(t, "Save")
	})

	t.Run("Failure_TokenPersistence", func(t *testing.T) {
		user := newTestUser(t)
		userRepo := &mockUserRepository{}
		tokenRepo := &mockAuthTokenRepository{}
		passwordService := &mockPasswordService{}
		registry := event.NewRegistry(nil)

		var dispatched []any
		registry.RegisterFunc(func(ctx context.Context, e any) {
			dispatched = append(dispatched, e)
		})

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		passwordService.On("VerifyPassword", "correct-password", "$argon2id$stored-hash").Return(true)
		tokenRepo.On("Save", mock.Anything, mock.Anything).Return(false)

		useCase := NewAuthenticationUseCase(
			fakeTxManager{}, userRepo, tokenRepo, passwordService, registry, time.Hour, fixedNow)

		_, err := useCase.Authenticate(ctx, "ada@example.com", "correct-password",
			authDomain.ContextAccount, authDomain.Device{})

		var unable *authDomain.UnableToAuthenticateError
		require.ErrorAs(t, err, &unable)
		assert.Equal(t, "Unable to save auth token", unable.Reason)

		// No UserAuthenticated notification without a persisted token
		for _, e := range dispatched {
			_, ok := e.(authDomain.UserAuthenticated)
			assert.False(t, ok)
		}
	})
}
