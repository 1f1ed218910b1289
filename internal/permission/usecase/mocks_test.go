package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/permission/domain"
)

// fakeTxManager runs transaction functions directly without a database.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTxManager) WithTxRetry(ctx context.Context, fn func(ctx context.Context) error, tries int) error {
	return fn(ctx)
}

// mockRoleRepository is a testify mock for RoleRepository.
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Save(ctx context.Context, role *domain.Role) bool {
	args := m.Called(ctx, role)
	return args.Bool(0)
}

func (m *mockRoleRepository) Find(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetPermissionGrantsForUser(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authDomain.OperatingContext,
) (*domain.PermissionGrants, error) {
	args := m.Called(ctx, userID, operatingContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionGrants), args.Error(1)
}

func (m *mockRoleRepository) AssignToUser(ctx context.Context, roleID, userID uuid.UUID) error {
	args := m.Called(ctx, roleID, userID)
	return args.Error(0)
}
