package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/user/domain"
)

// fakeTxManager runs the unit of work directly, without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) WithTxRetry(ctx context.Context, fn func(ctx context.Context) error, tries int) error {
	return fn(ctx)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Save(ctx context.Context, user *domain.User) bool {
	args := m.Called(ctx, user)
	return args.Bool(0)
}

func (m *mockUserRepository) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// mockPasswordService is a mock implementation of the password service.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) HashPassword(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) VerifyPassword(plainPassword string, hashedPassword string) bool {
	args := m.Called(plainPassword, hashedPassword)
	return args.Bool(0)
}

func validInput() RegisterUserInput {
	return RegisterUserInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "SecurePass123!",
	}
}

func TestUserUseCase_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RegistersUser", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").
			Return(nil, domain.ErrUserNotFound)
		passwordService.On("HashPassword", "SecurePass123!").Return("$argon2id$hashed", nil)
		userRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Return(true)

		useCase := NewUserUseCase(fakeTxManager{}, userRepo, passwordService)

		user, err := useCase.RegisterUser(ctx, validInput())
		require.NoError(t, err)

		// Email is normalized, the password stored only as a hash
		assert.Equal(t, "ada@example.com", user.Email())
		assert.Equal(t, "Ada Lovelace", user.Name())
		assert.Equal(t, "$argon2id$hashed", user.Password())
		assert.True(t, user.IsActive())
	})

	t.Run("Failure_DuplicateEmail", func(t *testing.T) {
		existing := domain.NewUser("Ada", "ada@example.com", "hash")
		userRepo := &mockUserRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(existing, nil)

		useCase := NewUserUseCase(fakeTxManager{}, userRepo, passwordService)

		_, err := useCase.RegisterUser(ctx, validInput())
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		userRepo.AssertNotCalled(t, "Save")
	})

	t.Run("Failure_SaveFails", func(t *testing.T) {
		userRepo := &mockUserRepository{}
		passwordService := &mockPasswordService{}

		userRepo.On("FindByEmail", mock.Anything, "ada@example.com").
			Return(nil, domain.ErrUserNotFound)
		passwordService.On("HashPassword", "SecurePass123!").Return("$argon2id$hashed", nil)
		userRepo.On("Save", mock.Anything, mock.Anything).Return(false)

		useCase := NewUserUseCase(fakeTxManager{}, userRepo, passwordService)

		_, err := useCase.RegisterUser(ctx, validInput())
		assert.Error(t, err)
	})

	t.Run("Failure_Validation", func(t *testing.T) {
		tests := []struct {
			name  string
			input RegisterUserInput
		}{
			{"empty name", RegisterUserInput{Name: "", Email: "ada@example.com", Password: "SecurePass123!"}},
			{"blank name", RegisterUserInput{Name: "   ", Email: "ada@example.com", Password: "SecurePass123!"}},
			{"bad email", RegisterUserInput{Name: "Ada", Email: "not-an-email", Password: "SecurePass123!"}},
			{"weak password", RegisterUserInput{Name: "Ada", Email: "ada@example.com", Password: "password"}},
			{"short password", RegisterUserInput{Name: "Ada", Email: "ada@example.com", Password: "Ab1!"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				userRepo := &mockUserRepository{}
				useCase := NewUserUseCase(fakeTxManager{}, userRepo, &mockPasswordService{})

				_, err := useCase.RegisterUser(ctx, tt.input)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				userRepo.AssertNotCalled(t, "Save")
			})
		}
	})
}

func TestUserUseCase_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	user := domain.NewUser("Ada", "ada@example.com", "hash")

	userRepo := &mockUserRepository{}
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	useCase := NewUserUseCase(fakeTxManager{}, userRepo, &mockPasswordService{})

	// Lookup normalizes the email the same way registration does
	found, err := useCase.GetUserByEmail(ctx, "  Ada@Example.com ")
	require.NoError(t, err)
	assert.Same(t, user, found)
}

func TestUserUseCase_GetUserByID(t *testing.T) {
	ctx := context.Background()
	user := domain.NewUser("Ada", "ada@example.com", "hash")

	userRepo := &mockUserRepository{}
	userRepo.On("Find", mock.Anything, user.ID()).Return(user, nil)

	useCase := NewUserUseCase(fakeTxManager{}, userRepo, &mockPasswordService{})

	found, err := useCase.GetUserByID(ctx, user.ID())
	require.NoError(t, err)
	assert.Same(t, user, found)
}
