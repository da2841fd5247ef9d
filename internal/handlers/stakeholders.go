package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type StakeholderHandler struct {
	service *services.StakeholderService
}

type stakeholderRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=200"`
	Organization string `json:"organization" validate:"omitempty,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	ProjectID    *uint  `json:"project_id"`
}

func NewStakeholderHandler(service *services.StakeholderService) *StakeholderHandler {
	return &StakeholderHandler{service: service}
}

func (r stakeholderRequest) input() services.StakeholderInput {
	return services.StakeholderInput{
		Name:         r.Name,
		Organization: r.Organization,
		Email:        r.Email,
		Phone:        r.Phone,
		ProjectID:    r.ProjectID,
	}
}

// GET /api/stakeholders
func (h *StakeholderHandler) List(c *gin.Context) {
	stakeholders, err := h.service.List(requestContext(c), currentPrincipal(c), parseUintQuery(c, "project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stakeholders)
}

// GET /api/stakeholders/:id
func (h *StakeholderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	stakeholder, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stakeholder)
}

// POST /api/stakeholders
func (h *StakeholderHandler) Create(c *gin.Context) {
	var body stakeholderRequest
	if !bindAndValidate(c, &body) {
		return
	}
	stakeholder, err := h.service.Create(requestContext(c), currentPrincipal(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, stakeholder)
}

// PUT /api/stakeholders/:id
func (h *StakeholderHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body stakeholderRequest
	if !bindAndValidate(c, &body) {
		return
	}
	stakeholder, err := h.service.Update(requestContext(c), currentPrincipal(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stakeholder)
}

// DELETE /api/stakeholders/:id
func (h *StakeholderHandler) Delete(c *gin.Context) {
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
