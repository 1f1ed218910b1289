// Package http provides HTTP handlers for user registration and profile
// access.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/icarushq/icarus/internal/auth/http"
	apperrors "github.com/icarushq/icarus/internal/errors"
	"github.com/icarushq/icarus/internal/httputil"
	"github.com/icarushq/icarus/internal/user/http/dto"
	userUseCase "github.com/icarushq/icarus/internal/user/usecase"
)

// UserHandler handles user registration and the authenticated profile
// endpoint.
type UserHandler struct {
	userUseCase     userUseCase.UseCase
	guard           gin.HandlerFunc
	authedRateLimit gin.HandlerFunc
	logger          *slog.Logger
}

// NewUserHandler creates a new user handler. The rate limit middleware may
// be nil when rate limiting is disabled.
func NewUserHandler(
	userUseCase userUseCase.UseCase,
	guard gin.HandlerFunc,
	authedRateLimit gin.HandlerFunc,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase:     userUseCase,
		guard:           guard,
		authedRateLimit: authedRateLimit,
		logger:          logger,
	}
}

// RegisterRoutes mounts the user endpoints on the API group.
func (h *UserHandler) RegisterRoutes(group *gin.RouterGroup) {
	users := group.Group("/users")
	users.POST("", h.RegisterHandler)

	me := []gin.HandlerFunc{h.guard}
	if h.authedRateLimit != nil {
		me = append(me, h.authedRateLimit)
	}
	users.GET("/me", append(me, h.MeHandler)...)
}

// RegisterHandler registers a new user account.
// POST /v1/users - no authentication required.
// Returns 201 Created with the user representation.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var input userUseCase.RegisterUserInput

	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// MeHandler returns the authenticated user's profile.
// GET /v1/users/me - requires a valid bearer token.
func (h *UserHandler) MeHandler(c *gin.Context) {
	authContext, ok := authHTTP.GetAuthContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	user, err := h.userUseCase.GetUserByID(c.Request.Context(), authContext.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
