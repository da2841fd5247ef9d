package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/models"
)

func TestFrontendLogRecordAndList(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()

	svc, err := NewFrontendLogService(env.db)
	require.NoError(t, err)
	t.Cleanup(svc.Flush)

	actor := uint(7)
	require.NoError(t, svc.Record(&actor, "OPEN_EDUCATION", "/educations/12", "clicked row"))
	require.NoError(t, svc.Record(nil, "EXPORT_PAYMENTS", "/payments", ""))
	svc.Flush()

	logs, total, err := svc.List(ctx, FrontendLogListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)

	byAction, total, err := svc.List(ctx, FrontendLogListOptions{
		Filters: FrontendLogFilters{Action: "EXPORT"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Nil(t, byAction[0].UserID)

	byPage, total, err := svc.List(ctx, FrontendLogListOptions{
		Filters: FrontendLogFilters{Page: "educations"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, &actor, byPage[0].UserID)
}

func TestFrontendLogRecordRequiresAction(t *testing.T) {
	env := newServiceTestEnv(t)

	svc, err := NewFrontendLogService(env.db)
	require.NoError(t, err)

	require.Error(t, svc.Record(nil, "   ", "/dashboard", ""))
	svc.Flush()

	var count int64
	require.NoError(t, env.db.Model(&models.FrontendLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestFrontendLogRecordTruncatesOversizedFields(t *testing.T) {
	env := newServiceTestEnv(t)

	svc, err := NewFrontendLogService(env.db)
	require.NoError(t, err)

	require.NoError(t, svc.Record(nil,
		strings.Repeat("a", 500),
		strings.Repeat("p", 500),
		strings.Repeat("d", 5000),
	))
	svc.Flush()

	var rows []models.FrontendLog
	require.NoError(t, env.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Action, maxFrontendAction)
	require.Len(t, rows[0].Page, maxFrontendPage)
	require.Len(t, rows[0].Details, maxFrontendDetails)
}

func TestFrontendLogDeleteOlderThan(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()

	svc, err := NewFrontendLogService(env.db)
	require.NoError(t, err)

	old := models.FrontendLog{Action: "LOGIN_PAGE", CreatedAt: time.Now().AddDate(0, 0, -120)}
	recent := models.FrontendLog{Action: "LOGIN_PAGE", CreatedAt: time.Now()}
	require.NoError(t, env.db.Create(&old).Error)
	require.NoError(t, env.db.Create(&recent).Error)

	removed, err := svc.DeleteOlderThan(ctx, 90)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, total, err := svc.List(ctx, FrontendLogListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
