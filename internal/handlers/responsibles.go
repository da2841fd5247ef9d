package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type ResponsibleHandler struct {
	service *services.ResponsibleService
}

type responsibleRequest struct {
	FullName   string `json:"full_name" validate:"required,min=2,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Department string `json:"department" validate:"omitempty,max=200"`
}

type assignRoleRequest struct {
	RoleID *uint `json:"role_id"`
}

func NewResponsibleHandler(service *services.ResponsibleService) *ResponsibleHandler {
	return &ResponsibleHandler{service: service}
}

func (r responsibleRequest) input() services.ResponsibleInput {
	return services.ResponsibleInput{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Department: r.Department,
	}
}

// GET /api/responsibles
func (h *ResponsibleHandler) List(c *gin.Context) {
	responsibles, err := h.service.List(requestContext(c), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, responsibles)
}

// GET /api/responsibles/:id
func (h *ResponsibleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	responsible, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, responsible)
}

// POST /api/responsibles
func (h *ResponsibleHandler) Create(c *gin.Context) {
	var body responsibleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	responsible, err := h.service.Create(requestContext(c), currentPrincipal(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, responsible)
}

// PUT /api/responsibles/:id
func (h *ResponsibleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body responsibleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	responsible, err := h.service.Update(requestContext(c), currentPrincipal(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, responsible)
}

// PUT /api/responsibles/:id/role
func (h *ResponsibleHandler) AssignRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body assignRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	responsible, err := h.service.AssignRole(requestContext(c), currentPrincipal(c), id, body.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, responsible)
}

// DELETE /api/responsibles/:id
func (h *ResponsibleHandler) Delete(c *gin.Context) {
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
