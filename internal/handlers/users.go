package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type UserHandler struct {
	service *services.UserService
}

type updateUserRequest struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=2,max=200"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Role          *string `json:"role"`
	IsActive      *bool   `json:"is_active"`
	ResponsibleID *uint   `json:"responsible_id"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(requestContext(c), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	input := services.UpdateUserInput{
		FullName:      body.FullName,
		Email:         body.Email,
		IsActive:      body.IsActive,
		ResponsibleID: body.ResponsibleID,
	}
	if body.Role != nil {
		role := models.CoarseRole(strings.ToUpper(strings.TrimSpace(*body.Role)))
		input.Role = &role
	}

	user, err := h.service.Update(requestContext(c), currentPrincipal(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PUT /api/users/:id/password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body resetPasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if err := h.service.ResetPassword(requestContext(c), currentPrincipal(c), id, body.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": id})
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.Delete(requestContext(c), currentPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
