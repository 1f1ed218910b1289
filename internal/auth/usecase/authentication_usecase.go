// Package usecase implements business logic orchestration for authentication
// operations.
package usecase

import (
	"context"
	"fmt"
	"time"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	authService "github.com/icarushq/icarus/internal/auth/service"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
	userDomain "github.com/icarushq/icarus/internal/user/domain"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

// authenticationUseCase implements AuthenticationUseCase.
type authenticationUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	tokenRepo       AuthTokenRepository
	passwordService authService.PasswordService
	dispatcher      event.Dispatcher
	tokenExpiration time.Duration
	now             func() time.Time
}

// NewAuthenticationUseCase creates an AuthenticationUseCase with the provided
// dependencies. A zero tokenExpiration issues tokens that never expire.
func NewAuthenticationUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	tokenRepo AuthTokenRepository,
	passwordService authService.PasswordService,
	dispatcher event.Dispatcher,
	tokenExpiration time.Duration,
	now func() time.Time,
) AuthenticationUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &authenticationUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		passwordService: passwordService,
		dispatcher:      dispatcher,
		tokenExpiration: tokenExpiration,
		now:             now,
	}
}

// Authenticate runs the strictly ordered authentication flow. The order is a
// contract: the attempting gate fires before any user data is touched, the
// password is verified before the activity and context checks so that every
// credential failure is indistinguishable, and the notification goes out only
// after the token is durably persisted.
func (a *authenticationUseCase) Authenticate(
	ctx context.Context,
	email, password string,
	operatingContext authDomain.OperatingContext,
	device authDomain.Device,
) (*authDomain.AuthenticationResult, error) {
	// Pre-resolution gate
	attempting := &authDomain.AuthenticationAttempting{
		Email:   email,
		Device:  device,
		Context: operatingContext,
	}
	a.dispatcher.DispatchUntilHalted(ctx, attempting)
	if attempting.IsCancelled() {
		return nil, authDomain.NewUnableToAuthenticate(gateReason(attempting, "authentication attempt rejected"), nil)
	}

	// Resolve the user; an unknown email reads as bad credentials
	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.passwordService.VerifyPassword(password, user.Password()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	userID := user.ID()

	if !user.IsActive() {
		return nil, authDomain.NewUnableToAuthenticate("user is not active", &userID)
	}

	if !user.CanOperateIn(operatingContext) {
		return nil, authDomain.NewUnableToAuthenticate(
			fmt.Sprintf("user cannot operate in the %s context", operatingContext), &userID)
	}

	// Post-resolution gate, with the user known and credentials verified
	authorising := &authDomain.AuthenticationAuthorising{
		User: authDomain.AuthenticatingUser{
			UserID:          userID,
			Name:            user.Name(),
			Email:           user.Email(),
			EmailVerifiedAt: user.EmailVerifiedAt(),
		},
		Device:  device,
		Context: operatingContext,
	}
	a.dispatcher.DispatchUntilHalted(ctx, authorising)
	if authorising.IsCancelled() {
		return nil, authDomain.NewUnableToAuthenticate(gateReason(authorising, "authentication not authorised"), &userID)
	}

	unhashed, err := authDomain.GenerateToken(operatingContext)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if a.tokenExpiration > 0 {
		expiry := a.now().Add(a.tokenExpiration)
		expiresAt = &expiry
	}

	token := authDomain.NewAuthToken(userID, operatingContext, unhashed.Stored, device, expiresAt)

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !a.tokenRepo.Save(ctx, token) {
			return authDomain.NewUnableToAuthenticate("Unable to save auth token", &userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.dispatcher.Dispatch(ctx, authDomain.UserAuthenticated{
		UserID:      userID,
		AuthTokenID: token.ID(),
		Device:      device,
		Context:     operatingContext,
	})

	return &authDomain.AuthenticationResult{
		UserID:      userID,
		Token:       unhashed.Token,
		AuthTokenID: token.ID(),
		Context:     operatingContext,
		ExpiresAt:   expiresAt,
	}, nil
}

func gateReason(gate event.Cancellable, fallback string) string {
	if reason := gate.CancelReason(); reason != "" {
		return reason
	}
	return fallback
}
