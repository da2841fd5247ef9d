package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/database/testutil"
	"github.com/akademi/edutrack/internal/models"
)

type captureRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *captureRecorder) Record(actorID *uint, action, entityType string, entityID *uint, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func newPermissionRouter(t *testing.T, principal *iauth.Principal, recorder authz.ActivityRecorder, module, action string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	engine, err := authz.NewEngine(db)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/resource", func(c *gin.Context) {
		if principal != nil {
			c.Set(CtxPrincipalKey, principal)
		}
		c.Next()
	}, RequirePermission(engine, recorder, module, action), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequirePermissionWithoutAuth(t *testing.T) {
	r := newPermissionRouter(t, nil, nil, "education", "view")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionAllowed(t *testing.T) {
	id := uint(1)
	principal := &iauth.Principal{Email: "admin@akademi.org", UserID: &id, CoarseRole: models.RoleAdmin}
	r := newPermissionRouter(t, principal, nil, "education", "delete")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionDeniedIsAudited(t *testing.T) {
	recorder := &captureRecorder{}
	id := uint(2)
	principal := &iauth.Principal{Email: "trainer@akademi.org", UserID: &id, CoarseRole: models.RoleTrainer}
	r := newPermissionRouter(t, principal, recorder, "education", "delete")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Equal(t, []string{"PERMISSION_DENIED"}, recorder.actions)
}
