package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type TrainerHandler struct {
	service *services.TrainerService
}

type trainerRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Expertise string `json:"expertise" validate:"omitempty,max=200"`
}

func NewTrainerHandler(service *services.TrainerService) *TrainerHandler {
	return &TrainerHandler{service: service}
}

func (r trainerRequest) input() services.TrainerInput {
	return services.TrainerInput{
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone,
		Expertise: r.Expertise,
	}
}

// GET /api/trainers
func (h *TrainerHandler) List(c *gin.Context) {
	trainers, err := h.service.List(requestContext(c), currentPrincipal(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainers)
}

// GET /api/trainers/:id
func (h *TrainerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	trainer, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainer)
}

// POST /api/trainers
func (h *TrainerHandler) Create(c *gin.Context) {
	var body trainerRequest
	if !bindAndValidate(c, &body) {
		return
	}
	trainer, err := h.service.Create(requestContext(c), currentPrincipal(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, trainer)
}

// PUT /api/trainers/:id
func (h *TrainerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body trainerRequest
	if !bindAndValidate(c, &body) {
		return
	}
	trainer, err := h.service.Update(requestContext(c), currentPrincipal(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, trainer)
}

// DELETE /api/trainers/:id
func (h *TrainerHandler) Delete(c *gin.Context) {
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
