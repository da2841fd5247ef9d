package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/database/testutil"
	"github.com/akademi/edutrack/internal/models"
)

const middlewareTestSecret = "middleware-test-secret-at-least-32b!"

func newTestResolver(t *testing.T) (*iauth.PrincipalResolver, *iauth.TokenService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	tokens, err := iauth.NewTokenService(iauth.TokenConfig{Secret: middlewareTestSecret, TTL: time.Minute})
	require.NoError(t, err)

	user := models.User{
		FullName: "Admin",
		Email:    "admin@akademi.org",
		Password: "irrelevant",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	resolver, err := iauth.NewPrincipalResolver(db, tokens)
	require.NoError(t, err)
	return resolver, tokens
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver, tokens := newTestResolver(t)

	r := gin.New()
	r.GET("/secure", Auth(resolver), func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": principal.Email})
	})

	// Missing Authorization header -> 401
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token -> 401
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer nope")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token -> downstream handler executes with principal in context
	token, err := tokens.Issue("admin@akademi.org", "ADMIN")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "admin@akademi.org", payload["email"])
}
