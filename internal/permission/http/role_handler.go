// Package http provides HTTP handlers for role management endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/icarushq/icarus/internal/auth/http"
	"github.com/icarushq/icarus/internal/httputil"
	"github.com/icarushq/icarus/internal/permission/http/dto"
	permissionUsecase "github.com/icarushq/icarus/internal/permission/usecase"
)

// RoleHandler handles role management requests. Every route requires an
// authenticated session plus a role-management permission, so the permission
// engine guards its own administration.
type RoleHandler struct {
	permissionUseCase permissionUsecase.PermissionUseCase
	guard             gin.HandlerFunc
	authedRateLimit   gin.HandlerFunc
	logger            *slog.Logger
}

// NewRoleHandler creates a new RoleHandler. The rate limit middleware may be
// nil when rate limiting is disabled.
func NewRoleHandler(
	permissionUseCase permissionUsecase.PermissionUseCase,
	guard gin.HandlerFunc,
	authedRateLimit gin.HandlerFunc,
	logger *slog.Logger,
) *RoleHandler {
	return &RoleHandler{
		permissionUseCase: permissionUseCase,
		guard:             guard,
		authedRateLimit:   authedRateLimit,
		logger:            logger,
	}
}

// RegisterRoutes registers the role management endpoints on the API group.
func (h *RoleHandler) RegisterRoutes(group *gin.RouterGroup) {
	roles := group.Group("/roles")
	roles.Use(h.guard)
	if h.authedRateLimit != nil {
		roles.Use(h.authedRateLimit)
	}

	roles.POST("",
		authHTTP.RequirePermission(h.permissionUseCase, "roles", "create", h.logger),
		h.CreateHandler,
	)
	roles.POST("/:id/assignments",
		authHTTP.RequirePermission(h.permissionUseCase, "roles", "assign", h.logger),
		h.AssignHandler,
	)
}

// CreateHandler creates a new role from the request payload.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var input permissionUsecase.CreateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	role, err := h.permissionUseCase.CreateRole(c.Request.Context(), &input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewRoleResponse(role))
}

// AssignHandler links the role in the path to the user in the payload.
func (h *RoleHandler) AssignHandler(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.permissionUseCase.AssignRole(c.Request.Context(), roleID, userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
