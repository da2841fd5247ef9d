package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

type PaymentHandler struct {
	service *services.PaymentService
}

type paymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
	EducationID *uint   `json:"education_id"`
	TrainerID   *uint   `json:"trainer_id"`
	StatusID    *uint   `json:"status_id"`
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (r paymentRequest) input() services.PaymentInput {
	return services.PaymentInput{
		Amount:      r.Amount,
		Description: r.Description,
		EducationID: r.EducationID,
		TrainerID:   r.TrainerID,
		StatusID:    r.StatusID,
	}
}

// GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.service.List(requestContext(c), currentPrincipal(c), services.PaymentFilters{
		EducationID: parseUintQuery(c, "education_id"),
		TrainerID:   parseUintQuery(c, "trainer_id"),
		StatusID:    parseUintQuery(c, "status_id"),
		Unpaid:      c.Query("unpaid") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payments)
}

// GET /api/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := h.service.Get(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payment)
}

// GET /api/payments/education/:id/total
func (h *PaymentHandler) TotalForEducation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	total, err := h.service.TotalForEducation(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"education_id": id, "total": total})
}

// POST /api/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var body paymentRequest
	if !bindAndValidate(c, &body) {
		return
	}
	payment, err := h.service.Create(requestContext(c), currentPrincipal(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, payment)
}

// PUT /api/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body paymentRequest
	if !bindAndValidate(c, &body) {
		return
	}
	payment, err := h.service.Update(requestContext(c), currentPrincipal(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payment)
}

// POST /api/payments/:id/pay
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := h.service.MarkPaid(requestContext(c), currentPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payment)
}

// DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
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
