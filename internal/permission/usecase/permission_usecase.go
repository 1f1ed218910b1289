package usecase

import (
	"context"
	"log/slog"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/database"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/permission/domain"
	customValidation "github.com/icarushq/icarus/internal/validation"
)

// permissionUseCase implements PermissionUseCase.
type permissionUseCase struct {
	txManager database.TxManager
	roleRepo  RoleRepository
	logger    *slog.Logger
}

// NewPermissionUseCase creates a new permission use case.
func NewPermissionUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	logger *slog.Logger,
) PermissionUseCase {
	return &permissionUseCase{
		txManager: txManager,
		roleRepo:  roleRepo,
		logger:    logger,
	}
}

// Allows merges the user's role grants for the context and evaluates the
// permission against them.
func (uc *permissionUseCase) Allows(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authDomain.OperatingContext,
	namespace, permission string,
) (bool, error) {
	grants, err := uc.roleRepo.GetPermissionGrantsForUser(ctx, userID, operatingContext)
	if err != nil {
		return false, err
	}

	return grants.Allows(namespace, permission)
}

// validateCreateRoleInput validates the role creation parameters.
func validateCreateRoleInput(input *CreateRoleInput) error {
	return validation.ValidateStruct(input,
		validation.Field(&input.Context,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&input.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// CreateRole validates the input, builds the role aggregate and persists it
// within a transaction.
func (uc *permissionUseCase) CreateRole(ctx context.Context, input *CreateRoleInput) (*domain.Role, error) {
	if err := validateCreateRoleInput(input); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	roleContext, err := authDomain.ParseOperatingContext(input.Context)
	if err != nil {
		return nil, err
	}

	role := domain.NewRole(
		roleContext,
		input.Name,
		input.Description,
		domain.NewPermissionCollection(input.Permissions),
	)

	err = uc.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if !uc.roleRepo.Save(txCtx, role) {
			return apperrors.New("unable to create role")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("role created",
		slog.String("role_id", role.ID().String()),
		slog.String("context", role.Context().String()),
		slog.String("name", role.Name()),
	)

	return role, nil
}

// AssignRole links an existing role to a user. The role must exist.
func (uc *permissionUseCase) AssignRole(ctx context.Context, roleID, userID uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := uc.roleRepo.Find(txCtx, roleID); err != nil {
			return err
		}
		return uc.roleRepo.AssignToUser(txCtx, roleID, userID)
	})
}
