package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type lookupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

// CategoryHandler exposes the education category catalogue.
type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(requestContext(c), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var body lookupRequest
	if !bindAndValidate(c, &body) {
		return
	}
	category, err := h.service.Create(requestContext(c), currentPrincipal(c), services.LookupInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body lookupRequest
	if !bindAndValidate(c, &body) {
		return
	}
	category, err := h.service.Update(requestContext(c), currentPrincipal(c), id, services.LookupInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
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

// StatusHandler exposes the shared workflow states.
type StatusHandler struct {
	service *services.StatusService
}

func NewStatusHandler(service *services.StatusService) *StatusHandler {
	return &StatusHandler{service: service}
}

// GET /api/statuses
func (h *StatusHandler) List(c *gin.Context) {
	statuses, err := h.service.List(requestContext(c), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, statuses)
}

// POST /api/statuses
func (h *StatusHandler) Create(c *gin.Context) {
	var body lookupRequest
	if !bindAndValidate(c, &body) {
		return
	}
	status, err := h.service.Create(requestContext(c), currentPrincipal(c), services.LookupInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, status)
}

// PUT /api/statuses/:id
func (h *StatusHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body lookupRequest
	if !bindAndValidate(c, &body) {
		return
	}
	status, err := h.service.Update(requestContext(c), currentPrincipal(c), id, services.LookupInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// DELETE /api/statuses/:id
func (h *StatusHandler) Delete(c *gin.Context) {
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
