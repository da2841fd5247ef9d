package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type EducationHandler struct {
	service *services.EducationService
}

type createEducationRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	CategoryID    *uint `json:"category_id"`
	StatusID      *uint `json:"status_id"`
	ProjectID     *uint `json:"project_id"`
	TrainerID     *uint `json:"trainer_id"`
	ResponsibleID *uint `json:"responsible_id"`
}

type updateEducationRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	CategoryID    *uint `json:"category_id"`
	StatusID      *uint `json:"status_id"`
	ProjectID     *uint `json:"project_id"`
	TrainerID     *uint `json:"trainer_id"`
	ResponsibleID *uint `json:"responsible_id"`
}

func NewEducationHandler(service *services.EducationService) *EducationHandler {
	return &EducationHandler{service: service}
}

// GET /api/educations
func (h *EducationHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 20)

	items, total, err := h.service.List(requestContext(c), currentPrincipal(c), services.ListEducationsOptions{
		Page:     page,
		PageSize: per,
		Filters: services.EducationFilters{
			CategoryID: parseUintQuery(c, "category_id"),
			StatusID:   parseUintQuery(c, "status_id"),
			ProjectID:  parseUintQuery(c, "project_id"),
			TrainerID:  parseUintQuery(c, "trainer_id"),
			Query:      c.Query("q"),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/educations/:id
func (h *EducationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	education, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, education)
}

// POST /api/educations
func (h *EducationHandler) Create(c *gin.Context) {
	var body createEducationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	education, err := h.service.Create(requestContext(c), currentPrincipal(c), services.CreateEducationInput{
		Name:          body.Name,
		Description:   body.Description,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		CategoryID:    body.CategoryID,
		StatusID:      body.StatusID,
		ProjectID:     body.ProjectID,
		TrainerID:     body.TrainerID,
		ResponsibleID: body.ResponsibleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, education)
}

// PUT /api/educations/:id
func (h *EducationHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateEducationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	education, err := h.service.Update(requestContext(c), currentPrincipal(c), id, services.UpdateEducationInput{
		Name:          body.Name,
		Description:   body.Description,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		CategoryID:    body.CategoryID,
		StatusID:      body.StatusID,
		ProjectID:     body.ProjectID,
		TrainerID:     body.TrainerID,
		ResponsibleID: body.ResponsibleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, education)
}

// DELETE /api/educations/:id
func (h *EducationHandler) Delete(c *gin.Context) {
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
