package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/database/testutil"
	"github.com/akademi/edutrack/internal/models"
)

type serviceTestEnv struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
	perf     *PerformanceLogService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	engine, err := authz.NewEngine(db)
	require.NoError(t, err)

	activity, err := NewActivityLogService(db)
	require.NoError(t, err)
	t.Cleanup(activity.Flush)

	perf, err := NewPerformanceLogService(db)
	require.NoError(t, err)
	t.Cleanup(perf.Flush)

	return &serviceTestEnv{db: db, engine: engine, activity: activity, perf: perf}
}

func adminPrincipal() *auth.Principal {
	id := uint(1)
	return &auth.Principal{Email: "admin@akademi.org", UserID: &id, CoarseRole: models.RoleAdmin}
}

func trainerPrincipal() *auth.Principal {
	id := uint(2)
	return &auth.Principal{Email: "trainer@akademi.org", UserID: &id, CoarseRole: models.RoleTrainer}
}

// activityRows flushes pending writes and returns all audit rows.
func (env *serviceTestEnv) activityRows(t *testing.T) []models.ActivityLog {
	t.Helper()

	env.activity.Flush()
	var rows []models.ActivityLog
	require.NoError(t, env.db.Order("id").Find(&rows).Error)
	return rows
}
