package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	userDomain "github.com/icarushq/icarus/internal/user/domain"
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

func (m *mockUserRepository) Save(ctx context.Context, user *userDomain.User) bool {
	args := m.Called(ctx, user)
	return args.Bool(0)
}

func (m *mockUserRepository) Find(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// mockAuthTokenRepository is a mock implementation of AuthTokenRepository for testing.
type mockAuthTokenRepository struct {
	mock.Mock
}

func (m *mockAuthTokenRepository) Save(ctx context.Context, token *authDomain.AuthToken) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}

func (m *mockAuthTokenRepository) Find(ctx context.Context, id uuid.UUID) (*authDomain.AuthToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthToken), args.Error(1)
}

func (m *mockAuthTokenRepository) ResolveBySelector(ctx context.Context, selector string) (*authDomain.AuthTokenResult, error) {
	args := m.Called(ctx, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthTokenResult), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
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
