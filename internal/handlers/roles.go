package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

// RoleHandler exposes role and permission administration.
type RoleHandler struct {
	roles       *services.RoleService
	permissions *services.PermissionService
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

type permissionRequest struct {
	Module      string `json:"module" validate:"required,min=2,max=100"`
	Action      string `json:"action" validate:"required,min=2,max=20"`
	Description string `json:"description"`
}

type grantRequest struct {
	PermissionID uint `json:"permission_id" validate:"required"`
}

func NewRoleHandler(roles *services.RoleService, permissions *services.PermissionService) *RoleHandler {
	return &RoleHandler{roles: roles, permissions: permissions}
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(requestContext(c), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	role, err := h.roles.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.roles.Create(requestContext(c), currentPrincipal(c), services.RoleInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.roles.Update(requestContext(c), currentPrincipal(c), id, services.RoleInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles/:id/permissions
func (h *RoleHandler) Grant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body grantRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.roles.AddPermission(requestContext(c), currentPrincipal(c), id, body.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/roles/:id/permissions
func (h *RoleHandler) Revoke(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body grantRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.roles.RemovePermission(requestContext(c), currentPrincipal(c), id, body.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.roles.Delete(requestContext(c), currentPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// GET /api/permissions
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.permissions.List(requestContext(c), currentPrincipal(c), c.Query("module"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, permissions)
}

// POST /api/permissions
func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var body permissionRequest
	if !bindAndValidate(c, &body) {
		return
	}
	permission, err := h.permissions.Create(requestContext(c), currentPrincipal(c), services.PermissionInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, permission)
}

// DELETE /api/permissions/:id
func (h *RoleHandler) DeletePermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.permissions.Delete(requestContext(c), currentPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
