package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	authRepository "github.com/icarushq/icarus/internal/auth/repository"
	authUsecase "github.com/icarushq/icarus/internal/auth/usecase"
	"github.com/icarushq/icarus/internal/persistence"
	permissionDomain "github.com/icarushq/icarus/internal/permission/domain"
	permissionRepository "github.com/icarushq/icarus/internal/permission/repository"
	permissionUsecase "github.com/icarushq/icarus/internal/permission/usecase"
	userDomain "github.com/icarushq/icarus/internal/user/domain"
	userRepository "github.com/icarushq/icarus/internal/user/repository"
	userUsecase "github.com/icarushq/icarus/internal/user/usecase"
)

// The identity and snapshot maps live exactly as long as one unit of work,
// so repositories cannot be container singletons. Each adapter below builds
// a fresh repository set around a new UnitOfWork per operation and delegates
// to a use case constructed over it. Within the operation, repeated loads of
// one aggregate observe one live instance; across operations nothing is
// shared.

// newAuthenticationUseCase builds a unit-of-work scoped authentication use
// case.
func (c *Container) newAuthenticationUseCase() (authUsecase.AuthenticationUseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for authentication use case: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for authentication use case: %w", err)
	}

	work := persistence.NewUnitOfWork()
	dispatcher := c.Dispatcher()
	logger := c.Logger()

	userRepo := userRepository.NewUserRepository(db, c.config.DBDriver, work, dispatcher, logger)
	tokenRepo := authRepository.NewAuthTokenRepository(db, c.config.DBDriver, work, dispatcher, logger)

	return authUsecase.NewAuthenticationUseCase(
		txManager,
		userRepo,
		tokenRepo,
		c.PasswordService(),
		dispatcher,
		c.config.AuthTokenExpiration,
		nil,
	), nil
}

// newTokenUseCase builds a unit-of-work scoped token use case.
func (c *Container) newTokenUseCase() (authUsecase.TokenUseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token use case: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	work := persistence.NewUnitOfWork()
	tokenRepo := authRepository.NewAuthTokenRepository(
		db, c.config.DBDriver, work, c.Dispatcher(), c.Logger(),
	)

	return authUsecase.NewTokenUseCase(txManager, tokenRepo, nil), nil
}

// newUserUseCase builds a unit-of-work scoped user use case.
func (c *Container) newUserUseCase() (userUsecase.UseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user use case: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	work := persistence.NewUnitOfWork()
	userRepo := userRepository.NewUserRepository(
		db, c.config.DBDriver, work, c.Dispatcher(), c.Logger(),
	)

	return userUsecase.NewUserUseCase(txManager, userRepo, c.PasswordService()), nil
}

// newPermissionUseCase builds a unit-of-work scoped permission use case.
func (c *Container) newPermissionUseCase() (permissionUsecase.PermissionUseCase, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for permission use case: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for permission use case: %w", err)
	}

	work := persistence.NewUnitOfWork()
	roleRepo := permissionRepository.NewRoleRepository(
		db, c.config.DBDriver, work, c.Dispatcher(), c.Logger(),
	)

	return permissionUsecase.NewPermissionUseCase(txManager, roleRepo, c.Logger()), nil
}

// scopedAuthenticationUseCase delegates each call to a freshly scoped use
// case.
type scopedAuthenticationUseCase struct {
	container *Container
}

func (s *scopedAuthenticationUseCase) Authenticate(
	ctx context.Context,
	email, password string,
	operatingContext authDomain.OperatingContext,
	device authDomain.Device,
) (*authDomain.AuthenticationResult, error) {
	useCase, err := s.container.newAuthenticationUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.Authenticate(ctx, email, password, operatingContext, device)
}

// scopedTokenUseCase delegates each call to a freshly scoped use case.
type scopedTokenUseCase struct {
	container *Container
}

func (s *scopedTokenUseCase) ResolveToken(ctx context.Context, bearer string) (*authDomain.AuthContext, error) {
	useCase, err := s.container.newTokenUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.ResolveToken(ctx, bearer)
}

func (s *scopedTokenUseCase) FlagTokenUsage(ctx context.Context, tokenID uuid.UUID) error {
	useCase, err := s.container.newTokenUseCase()
	if err != nil {
		return err
	}
	return useCase.FlagTokenUsage(ctx, tokenID)
}

func (s *scopedTokenUseCase) RevokeToken(ctx context.Context, tokenID uuid.UUID, reason *string) error {
	useCase, err := s.container.newTokenUseCase()
	if err != nil {
		return err
	}
	return useCase.RevokeToken(ctx, tokenID, reason)
}

// scopedUserUseCase delegates each call to a freshly scoped use case.
type scopedUserUseCase struct {
	container *Container
}

func (s *scopedUserUseCase) RegisterUser(
	ctx context.Context,
	input userUsecase.RegisterUserInput,
) (*userDomain.User, error) {
	useCase, err := s.container.newUserUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.RegisterUser(ctx, input)
}

func (s *scopedUserUseCase) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	useCase, err := s.container.newUserUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.GetUserByEmail(ctx, email)
}

func (s *scopedUserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	useCase, err := s.container.newUserUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.GetUserByID(ctx, id)
}

// scopedPermissionUseCase delegates each call to a freshly scoped use case.
type scopedPermissionUseCase struct {
	container *Container
}

func (s *scopedPermissionUseCase) Allows(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authDomain.OperatingContext,
	namespace, permission string,
) (bool, error) {
	useCase, err := s.container.newPermissionUseCase()
	if err != nil {
		return false, err
	}
	return useCase.Allows(ctx, userID, operatingContext, namespace, permission)
}

func (s *scopedPermissionUseCase) CreateRole(
	ctx context.Context,
	input *permissionUsecase.CreateRoleInput,
) (*permissionDomain.Role, error) {
	useCase, err := s.container.newPermissionUseCase()
	if err != nil {
		return nil, err
	}
	return useCase.CreateRole(ctx, input)
}

func (s *scopedPermissionUseCase) AssignRole(ctx context.Context, roleID, userID uuid.UUID) error {
	useCase, err := s.container.newPermissionUseCase()
	if err != nil {
		return err
	}
	return useCase.AssignRole(ctx, roleID, userID)
}
