// Package usecase implements the user business logic and orchestrates user
// domain operations.
package usecase

import (
	"context"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authService "github.com/icarushq/icarus/internal/auth/service"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/user/domain"

	apperrors "github.com/icarushq/icarus/internal/errors"
	appValidation "github.com/icarushq/icarus/internal/validation"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// UserRepository defines the user persistence operations the use case needs.
type UserRepository interface {
	// Save inserts or updates the user. A false return means the write
	// failed and nothing was cached or dispatched.
	Save(ctx context.Context, user *domain.User) bool

	// Find retrieves a user by ID. Returns ErrUserNotFound if not found.
	Find(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// FindByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	passwordService authService.PasswordService
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	passwordService authService.PasswordService,
) UseCase {
	return &UserUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}

// validateRegisterUserInput validates the registration input using
// jellydator/validation: required fields, email format and password strength
// (min 8 chars, uppercase, lowercase, number, special char).
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser validates the input, hashes the password and persists a new
// user. The UserRegistered event is dispatched through the repository's
// post-persist hook once the insert succeeds.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	// An existing email fails fast; a concurrent insert still trips the
	// unique index and surfaces as a generic persistence failure.
	if _, err := uc.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !apperrors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := uc.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(strings.TrimSpace(input.Name), email, hashedPassword)

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !uc.userRepo.Save(ctx, user) {
			return apperrors.New("unable to register user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.Find(ctx, id)
}
