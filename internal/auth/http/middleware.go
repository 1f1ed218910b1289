package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	authUseCase "github.com/icarushq/icarus/internal/auth/usecase"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/httputil"
)

// AuthenticationMiddleware guards endpoints with bearer token authentication.
//
// The middleware extracts the token from the Authorization header
// (case-insensitive "Bearer" scheme), resolves it through
// TokenUseCase.ResolveToken and stores the resulting AuthContext in the
// request context for downstream handlers. After a successful resolution the
// token's last-used timestamp is flagged; a failure there never blocks the
// request.
//
// A missing header, a malformed header and an invalid, expired or revoked
// token all produce 401 Unauthorized with no distinguishing detail.
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		bearer := authHeader[len(bearerPrefix):]
		if bearer == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		authContext, err := tokenUseCase.ResolveToken(c.Request.Context(), bearer)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithAuthContext(c.Request.Context(), authContext)
		c.Request = c.Request.WithContext(ctx)

		if err := tokenUseCase.FlagTokenUsage(ctx, authContext.AuthTokenID); err != nil {
			// Usage tracking is best effort
			logger.Warn("failed to flag token usage",
				slog.String("token_id", authContext.AuthTokenID.String()),
				slog.Any("error", err),
			)
		}

		logger.Debug("authentication successful",
			slog.String("user_id", authContext.UserID.String()),
			slog.String("context", authContext.Context.String()),
		)

		c.Next()
	}
}

// PermissionChecker answers whether a user holds a permission in an
// operating context. Satisfied by the permission use case.
type PermissionChecker interface {
	Allows(
		ctx context.Context,
		userID uuid.UUID,
		operatingContext authDomain.OperatingContext,
		namespace, permission string,
	) (bool, error)
}

// RequirePermission authorizes the authenticated user against a fixed
// permission. It must run after AuthenticationMiddleware.
//
// The check uses the session's operating context, so a role granted for the
// account context never authorizes a platform request.
func RequirePermission(
	checker PermissionChecker,
	namespace, permission string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authContext, ok := GetAuthContext(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated session in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		allowed, err := checker.Allows(
			c.Request.Context(),
			authContext.UserID,
			authContext.Context,
			namespace, permission,
		)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !allowed {
			logger.Debug("authorization failed: missing permission",
				slog.String("user_id", authContext.UserID.String()),
				slog.String("namespace", namespace),
				slog.String("permission", permission),
			)
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
