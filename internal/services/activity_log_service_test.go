package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/models"
)

func TestActivityLogRecordAndList(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()

	actor := uint(9)
	entity := uint(3)
	env.activity.Record(&actor, "CREATE_EDUCATION", "Education", &entity, "Created education: Go Fundamentals")
	env.activity.Record(nil, "PERMISSION_DENIED", "Authorization", nil, "ghost@akademi.org denied payment:delete")
	env.activity.Flush()

	logs, total, err := env.activity.List(ctx, ActivityLogListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)

	filtered, total, err := env.activity.List(ctx, ActivityLogListOptions{
		Filters: ActivityLogFilters{Action: "PERMISSION_DENIED"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Nil(t, filtered[0].UserID)

	byUser, total, err := env.activity.List(ctx, ActivityLogListOptions{
		Filters: ActivityLogFilters{UserID: &actor},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "CREATE_EDUCATION", byUser[0].Action)
}

func TestActivityLogRecordTruncatesOversizedFields(t *testing.T) {
	env := newServiceTestEnv(t)

	env.activity.Record(nil,
		strings.Repeat("A", 500),
		strings.Repeat("E", 500),
		nil,
		strings.Repeat("d", 5000),
	)
	env.activity.Flush()

	rows := env.activityRows(t)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Action, maxActivityAction)
	require.Len(t, rows[0].EntityType, maxActivityEntityType)
	require.Len(t, rows[0].Description, maxActivityDescription)
}

func TestActivityLogDeleteOlderThan(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()

	old := models.ActivityLog{Action: "LOGIN", CreatedAt: time.Now().AddDate(0, 0, -120)}
	recent := models.ActivityLog{Action: "LOGIN", CreatedAt: time.Now()}
	require.NoError(t, env.db.Create(&old).Error)
	require.NoError(t, env.db.Create(&recent).Error)

	removed, err := env.activity.DeleteOlderThan(ctx, 90)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, total, err := env.activity.List(ctx, ActivityLogListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, err = env.activity.DeleteOlderThan(ctx, 0)
	require.Error(t, err)
}
