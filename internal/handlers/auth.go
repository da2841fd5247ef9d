package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/response"
)

type AuthHandler struct {
	service *services.AuthService
}

type registerRequest struct {
	FullName      string `json:"full_name" validate:"required,min=2,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role"`
	ResponsibleID *uint  `json:"responsible_id"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Register(requestContext(c), services.RegisterInput{
		FullName:      body.FullName,
		Email:         body.Email,
		Password:      body.Password,
		Role:          models.CoarseRole(strings.ToUpper(strings.TrimSpace(body.Role))),
		ResponsibleID: body.ResponsibleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.service.Login(requestContext(c), body.Email, body.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	payload := gin.H{
		"email":       principal.Email,
		"coarse_role": principal.CoarseRole,
	}
	if principal.UserID != nil {
		payload["user_id"] = *principal.UserID
	}
	if principal.Role != nil {
		payload["role"] = principal.Role
	}
	response.Success(c, http.StatusOK, payload)
}
