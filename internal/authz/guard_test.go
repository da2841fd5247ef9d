package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/models"
	appErrors "github.com/akademi/edutrack/pkg/errors"
)

type recordedActivity struct {
	actorID     *uint
	action      string
	entityType  string
	entityID    *uint
	description string
}

type fakeActivityRecorder struct {
	entries []recordedActivity
}

func (f *fakeActivityRecorder) Record(actorID *uint, action, entityType string, entityID *uint, description string) {
	f.entries = append(f.entries, recordedActivity{actorID, action, entityType, entityID, description})
}

type fakePerformanceRecorder struct {
	labels    []string
	durations []int64
}

func (f *fakePerformanceRecorder) Record(label string, durationMs int64) {
	f.labels = append(f.labels, label)
	f.durations = append(f.durations, durationMs)
}

func TestGuardedRunsOperationWhenAllowed(t *testing.T) {
	engine, _ := newTestEngine(t)
	p := coarsePrincipal(models.RoleAdmin)

	got, err := Guarded(context.Background(), engine, p, "education", "create", func() (string, error) {
		return "created", nil
	})
	require.NoError(t, err)
	require.Equal(t, "created", got)
}

func TestGuardedDenialSkipsOperation(t *testing.T) {
	engine, _ := newTestEngine(t)
	p := coarsePrincipal(models.RoleTrainer)

	ran := false
	got, err := Guarded(context.Background(), engine, p, "education", "delete", func() (*models.Education, error) {
		ran = true
		return &models.Education{}, nil
	})
	require.False(t, ran)
	require.Nil(t, got)
	require.True(t, appErrors.IsForbidden(err))
}

func TestWithActivityLogRecordsOnSuccess(t *testing.T) {
	recorder := &fakeActivityRecorder{}
	actorID := uint(7)

	spec := ActivitySpec[*models.Education]{
		Action:     "CREATE_EDUCATION",
		EntityType: "Education",
		EntityID:   func(e *models.Education) *uint { return &e.ID },
		Describe:   func(e *models.Education) string { return "Created education: " + e.Name },
	}

	edu := &models.Education{ID: 42, Name: "Go Fundamentals"}

	got, err := WithActivityLog(recorder, &actorID, spec, func() (*models.Education, error) {
		return edu, nil
	})
	require.NoError(t, err)
	require.Equal(t, edu, got)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	require.Equal(t, &actorID, entry.actorID)
	require.Equal(t, "CREATE_EDUCATION", entry.action)
	require.Equal(t, "Education", entry.entityType)
	require.Equal(t, uint(42), *entry.entityID)
	require.Equal(t, "Created education: Go Fundamentals", entry.description)
}

func TestWithActivityLogErrorPropagatesUnchanged(t *testing.T) {
	recorder := &fakeActivityRecorder{}
	opErr := errors.New("insert failed")

	spec := ActivitySpec[*models.Education]{Action: "CREATE_EDUCATION", EntityType: "Education"}

	_, err := WithActivityLog(recorder, nil, spec, func() (*models.Education, error) {
		return nil, opErr
	})
	require.Same(t, opErr, err)
	require.Empty(t, recorder.entries, "errors are not recorded unless LogOnError is set")

	spec.LogOnError = true
	_, err = WithActivityLog(recorder, nil, spec, func() (*models.Education, error) {
		return nil, opErr
	})
	require.Same(t, opErr, err)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, "CREATE_EDUCATION", recorder.entries[0].action)
	require.Contains(t, recorder.entries[0].description, "insert failed")
	require.Nil(t, recorder.entries[0].entityID)
}

func TestWithActivityLogNilRecorderIsSafe(t *testing.T) {
	got, err := WithActivityLog(nil, nil, ActivitySpec[int]{Action: "NOOP"}, func() (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	require.Equal(t, 5, got)
}

func TestWithTimingFastCallIsNotSampled(t *testing.T) {
	recorder := &fakePerformanceRecorder{}

	got, err := WithTiming(recorder, "EducationService.List", func() ([]int, error) {
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, got)
	require.Empty(t, recorder.labels)
}

func TestWithTimingSlowCallIsSampled(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a real slow call")
	}

	recorder := &fakePerformanceRecorder{}

	_, err := WithTiming(recorder, "EducationService.Export", func() (struct{}, error) {
		time.Sleep(slowCallThreshold + 50*time.Millisecond)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"EducationService.Export"}, recorder.labels)
	require.GreaterOrEqual(t, recorder.durations[0], int64(1000))
}

func TestWithTimingErrorPassesThrough(t *testing.T) {
	opErr := errors.New("boom")
	_, err := WithTiming(&fakePerformanceRecorder{}, "X", func() (int, error) {
		return 0, opErr
	})
	require.Same(t, opErr, err)
}
