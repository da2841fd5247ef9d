package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/response"
)

// LogHandler exposes the operational log stores: the activity trail,
// slow-call samples, raw API logs, captured errors, and client-reported
// actions. Read routes are mounted behind the "logs" permission middleware;
// the frontend ingest route only requires authentication.
type LogHandler struct {
	activity    *services.ActivityLogService
	performance *services.PerformanceLogService
	api         *services.ApiLogService
	errors      *services.ErrorLogService
	frontend    *services.FrontendLogService
}

type cleanupRequest struct {
	RetentionDays int `json:"retention_days" validate:"required,min=1"`
}

type frontendLogRequest struct {
	Action  string `json:"action" validate:"required,min=2,max=255"`
	Page    string `json:"page" validate:"omitempty,max=255"`
	Details string `json:"details" validate:"omitempty,max=2000"`
}

func NewLogHandler(activity *services.ActivityLogService, performance *services.PerformanceLogService, api *services.ApiLogService, errors *services.ErrorLogService, frontend *services.FrontendLogService) *LogHandler {
	return &LogHandler{activity: activity, performance: performance, api: api, errors: errors, frontend: frontend}
}

func timeRangeQuery(c *gin.Context) (since, until *time.Time) {
	if raw := c.Query("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			since = &parsed
		}
	}
	if raw := c.Query("until"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			until = &parsed
		}
	}
	return since, until
}

// GET /api/logs/activity
func (h *LogHandler) ListActivity(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)

	filters := services.ActivityLogFilters{
		UserID:     parseUintQuery(c, "user_id"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   parseUintQuery(c, "entity_id"),
	}
	filters.Since, filters.Until = timeRangeQuery(c)

	logs, total, err := h.activity.List(requestContext(c), services.ActivityLogListOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// POST /api/logs/activity/cleanup
func (h *LogHandler) CleanupActivity(c *gin.Context) {
	var body cleanupRequest
	if !bindAndValidate(c, &body) {
		return
	}
	removed, err := h.activity.DeleteOlderThan(requestContext(c), body.RetentionDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// GET /api/logs/performance
func (h *LogHandler) ListPerformance(c *gin.Context) {
	samples, err := h.performance.List(requestContext(c), c.Query("label"), parseIntQuery(c, "limit", 100))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, samples)
}

// GET /api/logs/errors
func (h *LogHandler) ListErrors(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)

	filters := services.ErrorLogFilters{
		UserID:        parseUintQuery(c, "user_id"),
		ExceptionType: c.Query("exception_type"),
		Endpoint:      c.Query("endpoint"),
	}
	filters.Since, filters.Until = timeRangeQuery(c)

	logs, total, err := h.errors.List(requestContext(c), services.ErrorLogListOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/logs/frontend
// The page being filtered on is "page_name"; "page" stays the pagination cursor.
func (h *LogHandler) ListFrontend(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)

	filters := services.FrontendLogFilters{
		UserID: parseUintQuery(c, "user_id"),
		Action: c.Query("action"),
		Page:   c.Query("page_name"),
	}
	filters.Since, filters.Until = timeRangeQuery(c)

	logs, total, err := h.frontend.List(requestContext(c), services.FrontendLogListOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// POST /api/logs/frontend
// Open to any authenticated caller; the actor comes from the principal, never
// the payload.
func (h *LogHandler) CreateFrontend(c *gin.Context) {
	var body frontendLogRequest
	if !bindAndValidate(c, &body) {
		return
	}

	var userID *uint
	if principal := currentPrincipal(c); principal != nil && principal.UserID != nil {
		id := *principal.UserID
		userID = &id
	}

	if err := h.frontend.Record(userID, body.Action, body.Page, body.Details); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"recorded": true})
}

// GET /api/logs/api
func (h *LogHandler) ListAPI(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 50)

	logs, total, err := h.api.List(requestContext(c), services.ApiLogListOptions{
		Page:     page,
		PageSize: per,
		Filters: services.ApiLogFilters{
			UserEmail:  c.Query("user_email"),
			Endpoint:   c.Query("endpoint"),
			Method:     c.Query("method"),
			StatusCode: parseIntQuery(c, "status_code", 0),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}
