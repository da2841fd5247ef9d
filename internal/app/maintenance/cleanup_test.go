package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	testutil "github.com/akademi/edutrack/internal/database/testutil"
	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/internal/services"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activitySvc, err := services.NewActivityLogService(db)
	require.NoError(t, err)
	perfSvc, err := services.NewPerformanceLogService(db)
	require.NoError(t, err)
	apiSvc, err := services.NewApiLogService(db)
	require.NoError(t, err)
	errorSvc, err := services.NewErrorLogService(db)
	require.NoError(t, err)
	frontendSvc, err := services.NewFrontendLogService(db)
	require.NoError(t, err)

	now := time.Now()
	stale := now.AddDate(0, 0, -30)

	seedActivity := func(createdAt time.Time, action string) {
		entry := models.ActivityLog{Action: action, EntityType: "Education"}
		require.NoError(t, db.Create(&entry).Error)
		require.NoError(t, db.Model(&entry).Update("created_at", createdAt).Error)
	}
	seedActivity(stale, "CREATE_EDUCATION")
	seedActivity(now, "UPDATE_EDUCATION")

	sample := models.PerformanceLog{Label: "EducationService.List", DurationMs: 1500}
	require.NoError(t, db.Create(&sample).Error)
	require.NoError(t, db.Model(&sample).Update("created_at", stale).Error)

	apiEntry := models.ApiLog{Endpoint: "/api/educations", Method: "GET", StatusCode: 200}
	require.NoError(t, db.Create(&apiEntry).Error)
	require.NoError(t, db.Model(&apiEntry).Update("created_at", stale).Error)

	errorEntry := models.ErrorLog{Endpoint: "/api/educations", ExceptionType: "panic", Message: "boom"}
	require.NoError(t, db.Create(&errorEntry).Error)
	require.NoError(t, db.Model(&errorEntry).Update("created_at", stale).Error)

	frontendEntry := models.FrontendLog{Action: "VIEW_DASHBOARD", Page: "/dashboard"}
	require.NoError(t, db.Create(&frontendEntry).Error)
	require.NoError(t, db.Model(&frontendEntry).Update("created_at", stale).Error)

	c := NewCleaner(activitySvc, perfSvc, apiSvc, errorSvc, frontendSvc,
		WithRetentionDays(7),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var activityCount int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&activityCount).Error)
	require.Equal(t, int64(1), activityCount)

	var remaining models.ActivityLog
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, "UPDATE_EDUCATION", remaining.Action)

	var perfCount int64
	require.NoError(t, db.Model(&models.PerformanceLog{}).Count(&perfCount).Error)
	require.Equal(t, int64(0), perfCount)

	var apiCount int64
	require.NoError(t, db.Model(&models.ApiLog{}).Count(&apiCount).Error)
	require.Equal(t, int64(0), apiCount)

	var errorCount int64
	require.NoError(t, db.Model(&models.ErrorLog{}).Count(&errorCount).Error)
	require.Equal(t, int64(0), errorCount)

	var frontendCount int64
	require.NoError(t, db.Model(&models.FrontendLog{}).Count(&frontendCount).Error)
	require.Equal(t, int64(0), frontendCount)
}

func TestCleanerSkipsMissingStores(t *testing.T) {
	c := NewCleaner(nil, nil, nil, nil, nil,
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.Start())
	require.NoError(t, c.RunOnce(context.Background()))

	done := c.Stop()
	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestCleanerStartSchedulesSweep(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activitySvc, err := services.NewActivityLogService(db)
	require.NoError(t, err)

	c := NewCleaner(activitySvc, nil, nil, nil, nil,
		WithRetentionDays(7),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.Start())
	t.Cleanup(func() { <-c.Stop().Done() })

	require.Len(t, c.cron.Entries(), 1)
}
