package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/models"
)

type captureSink struct {
	mu      sync.Mutex
	entries []models.ApiLog
}

func (s *captureSink) Record(entry models.ApiLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *captureSink) all() []models.ApiLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ApiLog(nil), s.entries...)
}

func TestRequestLogCapturesCall(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &captureSink{}
	r := gin.New()
	r.Use(RequestLog(sink))
	r.POST("/api/educations", func(c *gin.Context) {
		var body map[string]any
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/educations", strings.NewReader(`{"name":"Go Fundamentals"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	entries := sink.all()
	require.Len(t, entries, 1)
	entry := entries[0]
	require.Equal(t, "/api/educations", entry.Endpoint)
	require.Equal(t, http.MethodPost, entry.Method)
	require.Equal(t, http.StatusCreated, entry.StatusCode)
	require.JSONEq(t, `{"name":"Go Fundamentals"}`, string(entry.RequestBody))
	require.JSONEq(t, `{"id":1}`, string(entry.ResponseBody))
}

func TestRequestLogSkipsExcludedPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &captureSink{}
	r := gin.New()
	r.Use(RequestLog(sink))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, sink.all())
}

func TestRequestLogDropsNonJSONBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &captureSink{}
	r := gin.New()
	r.Use(RequestLog(sink))
	r.GET("/plain", func(c *gin.Context) {
		c.String(http.StatusOK, "not json")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.Equal(t, http.StatusOK, w.Code)

	entries := sink.all()
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].RequestBody)
	require.Nil(t, entries[0].ResponseBody)
}
