package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/metrics"
	"github.com/icarushq/icarus/internal/permission/domain"
)

// permissionUseCaseWithMetrics decorates PermissionUseCase with metrics
// instrumentation.
type permissionUseCaseWithMetrics struct {
	next    PermissionUseCase
	metrics metrics.BusinessMetrics
}

// NewPermissionUseCaseWithMetrics wraps a PermissionUseCase with metrics
// recording.
func NewPermissionUseCaseWithMetrics(useCase PermissionUseCase, m metrics.BusinessMetrics) PermissionUseCase {
	return &permissionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// operationStatus maps a use case outcome to a metrics status label.
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

// Allows records each permission decision. A clean refusal is "denied", so
// authorization pressure is visible separately from failures.
func (p *permissionUseCaseWithMetrics) Allows(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authDomain.OperatingContext,
	namespace, permission string,
) (bool, error) {
	start := time.Now()
	allowed, err := p.next.Allows(ctx, userID, operatingContext, namespace, permission)

	status := operationStatus(err)
	if err == nil && !allowed {
		status = "denied"
	}
	p.metrics.RecordOperation(ctx, "permission", "allows", status)
	p.metrics.RecordDuration(ctx, "permission", "allows", time.Since(start), status)

	return allowed, err
}

// CreateRole records metrics for role creation operations.
func (p *permissionUseCaseWithMetrics) CreateRole(
	ctx context.Context,
	input *CreateRoleInput,
) (*domain.Role, error) {
	start := time.Now()
	role, err := p.next.CreateRole(ctx, input)

	status := operationStatus(err)
	p.metrics.RecordOperation(ctx, "permission", "create_role", status)
	p.metrics.RecordDuration(ctx, "permission", "create_role", time.Since(start), status)

	return role, err
}

// AssignRole records metrics for role assignment operations.
func (p *permissionUseCaseWithMetrics) AssignRole(ctx context.Context, roleID, userID uuid.UUID) error {
	start := time.Now()
	err := p.next.AssignRole(ctx, roleID, userID)

	status := operationStatus(err)
	p.metrics.RecordOperation(ctx, "permission", "assign_role", status)
	p.metrics.RecordDuration(ctx, "permission", "assign_role", time.Since(start), status)

	return err
}
