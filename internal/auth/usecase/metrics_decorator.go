package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/metrics"
)

// operationStatus maps a use case outcome to a metrics status label.
// Rejected credentials and tokens are "denied": they are expected traffic,
// not failures of the system.
func operationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return "denied"
	default:
		return "error"
	}
}

// authenticationUseCaseWithMetrics decorates AuthenticationUseCase with
// metrics instrumentation.
type authenticationUseCaseWithMetrics struct {
	next    AuthenticationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthenticationUseCaseWithMetrics wraps an AuthenticationUseCase with
// metrics recording.
func NewAuthenticationUseCaseWithMetrics(
	useCase AuthenticationUseCase,
	m metrics.BusinessMetrics,
) AuthenticationUseCase {
	return &authenticationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authenticate records metrics for credential authentication operations.
func (a *authenticationUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	email, password string,
	operatingContext authDomain.OperatingContext,
	device authDomain.Device,
) (*authDomain.AuthenticationResult, error) {
	start := time.Now()
	result, err := a.next.Authenticate(ctx, email, password, operatingContext, device)

	status := operationStatus(err)
	a.metrics.RecordOperation(ctx, "auth", "authenticate", status)
	a.metrics.RecordDuration(ctx, "auth", "authenticate", time.Since(start), status)

	return result, err
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics
// instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ResolveToken records metrics for bearer token resolution operations.
func (t *tokenUseCaseWithMetrics) ResolveToken(
	ctx context.Context,
	bearer string,
) (*authDomain.AuthContext, error) {
	start := time.Now()
	authContext, err := t.next.ResolveToken(ctx, bearer)

	status := operationStatus(err)
	t.metrics.RecordOperation(ctx, "auth", "resolve_token", status)
	t.metrics.RecordDuration(ctx, "auth", "resolve_token", time.Since(start), status)

	return authContext, err
}

// FlagTokenUsage records metrics for usage flagging operations.
func (t *tokenUseCaseWithMetrics) FlagTokenUsage(ctx context.Context, tokenID uuid.UUID) error {
	start := time.Now()
	err := t.next.FlagTokenUsage(ctx, tokenID)

	status := operationStatus(err)
	t.metrics.RecordOperation(ctx, "auth", "flag_token_usage", status)
	t.metrics.RecordDuration(ctx, "auth", "flag_token_usage", time.Since(start), status)

	return err
}

// RevokeToken records metrics for token revocation operations.
func (t *tokenUseCaseWithMetrics) RevokeToken(
	ctx context.Context,
	tokenID uuid.UUID,
	reason *string,
) error {
	start := time.Now()
	err := t.next.RevokeToken(ctx, tokenID, reason)

	status := operationStatus(err)
	t.metrics.RecordOperation(ctx, "auth", "revoke_token", status)
	t.metrics.RecordDuration(ctx, "auth", "revoke_token", time.Since(start), status)

	return err
}
