package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/auth/http/dto"
	authUseCase "github.com/icarushq/icarus/internal/auth/usecase"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/httputil"
	customValidation "github.com/icarushq/icarus/internal/validation"
)

// TokenHandler handles the token lifecycle endpoints: login, session
// introspection and revocation.
type TokenHandler struct {
	authenticationUseCase authUseCase.AuthenticationUseCase
	tokenUseCase          authUseCase.TokenUseCase
	guard                 gin.HandlerFunc
	loginRateLimit        gin.HandlerFunc
	authedRateLimit       gin.HandlerFunc
	logger                *slog.Logger
}

// NewTokenHandler creates a new token handler. The rate limit middlewares
// may be nil when rate limiting is disabled.
func NewTokenHandler(
	authenticationUseCase authUseCase.AuthenticationUseCase,
	tokenUseCase authUseCase.TokenUseCase,
	guard gin.HandlerFunc,
	loginRateLimit gin.HandlerFunc,
	authedRateLimit gin.HandlerFunc,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		authenticationUseCase: authenticationUseCase,
		tokenUseCase:          tokenUseCase,
		guard:                 guard,
		loginRateLimit:        loginRateLimit,
		authedRateLimit:       authedRateLimit,
		logger:                logger,
	}
}

// RegisterRoutes mounts the token endpoints on the API group.
func (h *TokenHandler) RegisterRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")

	login := []gin.HandlerFunc{}
	if h.loginRateLimit != nil {
		login = append(login, h.loginRateLimit)
	}
	login = append(login, h.LoginHandler)
	auth.POST("/token", login...)

	authed := []gin.HandlerFunc{h.guard}
	if h.authedRateLimit != nil {
		authed = append(authed, h.authedRateLimit)
	}
	auth.GET("/session", append(authed, h.SessionHandler)...)
	auth.DELETE("/token", append(authed, h.RevokeHandler)...)
}

// LoginHandler authenticates credentials and issues a bearer token.
// POST /v1/auth/token - no authentication required.
// Returns 201 Created with the cleartext token and its expiration.
func (h *TokenHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	operatingContext, err := authDomain.ParseOperatingContext(req.Context)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	device := deviceFromRequest(c)

	result, err := h.authenticationUseCase.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
		operatingContext,
		device,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.LoginResponse{
		Token:     result.Token,
		UserID:    result.UserID.String(),
		Context:   result.Context.String(),
		ExpiresAt: result.ExpiresAt,
	}

	c.JSON(http.StatusCreated, response)
}

// SessionHandler describes the authenticated session.
// GET /v1/auth/session - requires a valid bearer token.
func (h *TokenHandler) SessionHandler(c *gin.Context) {
	authContext, ok := GetAuthContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		UserID:  authContext.UserID.String(),
		TokenID: authContext.AuthTokenID.String(),
		Context: authContext.Context.String(),
	})
}

// RevokeHandler revokes the current session's token.
// DELETE /v1/auth/token - requires a valid bearer token.
// Returns 204 No Content. Revocation is permanent.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	authContext, ok := GetAuthContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.RevokeTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
		if err := req.Validate(); err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
	}

	if err := h.tokenUseCase.RevokeToken(c.Request.Context(), authContext.AuthTokenID, req.Reason); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// deviceFromRequest extracts the client's user agent and IP for the token's
// device record. Both are optional.
func deviceFromRequest(c *gin.Context) authDomain.Device {
	device := authDomain.Device{}

	if userAgent := c.Request.UserAgent(); userAgent != "" {
		device.UserAgent = &userAgent
	}
	if ip := c.ClientIP(); ip != "" {
		device.IP = &ip
	}

	return device
}
