package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
)

// mockAuthenticationUseCase is a testify mock for AuthenticationUseCase.
type mockAuthenticationUseCase struct {
	mock.Mock
}

func (m *mockAuthenticationUseCase) Authenticate(
	ctx context.Context,
	email, password string,
	operatingContext authDomain.OperatingContext,
	device authDomain.Device,
) (*authDomain.AuthenticationResult, error) {
	args := m.Called(ctx, email, password, operatingContext, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthenticationResult), args.Error(1)
}

// mockTokenUseCase is a testify mock for TokenUseCase.
type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) ResolveToken(ctx context.Context, bearer string) (*authDomain.AuthContext, error) {
	args := m.Called(ctx, bearer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuthContext), args.Error(1)
}

func (m *mockTokenUseCase) FlagTokenUsage(ctx context.Context, tokenID uuid.UUID) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *mockTokenUseCase) RevokeToken(ctx context.Context, tokenID uuid.UUID, reason *string) error {
	args := m.Called(ctx, tokenID, reason)
	return args.Error(0)
}

// mockPermissionChecker is a testify mock for PermissionChecker.
type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) Allows(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authDomain.OperatingContext,
	namespace, permission string,
) (bool, error) {
	args := m.Called(ctx, userID, operatingContext, namespace, permission)
	return args.Bool(0), args.Error(1)
}
