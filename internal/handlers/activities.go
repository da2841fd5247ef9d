package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type ActivityHandler struct {
	service *services.ActivityService
}

type activityRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=200"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	ProjectID   *uint      `json:"project_id"`
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (r activityRequest) input() services.ActivityInput {
	return services.ActivityInput{
		Name:        r.Name,
		Description: r.Description,
		Date:        r.Date,
		ProjectID:   r.ProjectID,
	}
}

// GET /api/activities
func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(requestContext(c), currentPrincipal(c), parseUintQuery(c, "project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, activities)
}

// GET /api/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	activity, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, activity)
}

// POST /api/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	var body activityRequest
	if !bindAndValidate(c, &body) {
		return
	}
	activity, err := h.service.Create(requestContext(c), currentPrincipal(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, activity)
}

// PUT /api/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body activityRequest
	if !bindAndValidate(c, &body) {
		return
	}
	activity, err := h.service.Update(requestContext(c), currentPrincipal(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, activity)
}

// DELETE /api/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
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
