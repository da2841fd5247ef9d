package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/models"
	apperrors "github.com/akademi/edutrack/pkg/errors"
)

// ActivityInput describes the fields accepted when creating or updating a
// scheduled project activity.
type ActivityInput struct {
	Name        string
	Description string
	Date        *time.Time
	ProjectID   *uint
}

// ActivityService manages scheduled project events. It is distinct from the
// activity log, which records who did what in the system.
type ActivityService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewActivityService constructs an ActivityService.
func NewActivityService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*ActivityService, error) {
	if db == nil {
		return nil, errors.New("activity service: db is required")
	}
	if engine == nil {
		return nil, errors.New("activity service: authz engine is required")
	}
	return &ActivityService{db: db, engine: engine, activity: activity}, nil
}

func activitySpec(action string) authz.ActivitySpec[*models.Activity] {
	return authz.ActivitySpec[*models.Activity]{
		Action:     action,
		EntityType: "Activity",
		EntityID:   func(a *models.Activity) *uint { return &a.ID },
		Describe:   func(a *models.Activity) string { return a.Name },
	}
}

// Create schedules a new activity.
func (s *ActivityService) Create(ctx context.Context, p *auth.Principal, input ActivityInput) (*models.Activity, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "activity", "create", func() (*models.Activity, error) {
		return authz.WithActivityLog(s.activity, actorID(p), activitySpec("CREATE_ACTIVITY"), func() (*models.Activity, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			activity := &models.Activity{
				Name:        name,
				Description: strings.TrimSpace(input.Description),
				Date:        input.Date,
				ProjectID:   input.ProjectID,
			}
			if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
				return nil, fmt.Errorf("activity service: create: %w", err)
			}
			return activity, nil
		})
	})
}

// Get returns one activity with its project preloaded.
func (s *ActivityService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Activity, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "activity", "view", func() (*models.Activity, error) {
		var activity models.Activity
		if err := s.db.WithContext(ctx).Preload("Project").First(&activity, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("activity")
			}
			return nil, fmt.Errorf("activity service: get: %w", err)
		}
		return &activity, nil
	})
}

// List returns activities ordered by date, optionally narrowed to one project.
func (s *ActivityService) List(ctx context.Context, p *auth.Principal, projectID *uint) ([]models.Activity, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "activity", "view", func() ([]models.Activity, error) {
		query := s.db.WithContext(ctx).Model(&models.Activity{})
		if projectID != nil {
			query = query.Where("project_id = ?", *projectID)
		}

		var activities []models.Activity
		if err := query.Order("date").Find(&activities).Error; err != nil {
			return nil, fmt.Errorf("activity service: list: %w", err)
		}
		return activities, nil
	})
}

// Update rewrites an activity.
func (s *ActivityService) Update(ctx context.Context, p *auth.Principal, id uint, input ActivityInput) (*models.Activity, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "activity", "update", func() (*models.Activity, error) {
		return authz.WithActivityLog(s.activity, actorID(p), activitySpec("UPDATE_ACTIVITY"), func() (*models.Activity, error) {
			var activity models.Activity
			if err := s.db.WithContext(ctx).First(&activity, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("activity")
				}
				return nil, fmt.Errorf("activity service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			activity.Name = name
			activity.Description = strings.TrimSpace(input.Description)
			activity.Date = input.Date
			activity.ProjectID = input.ProjectID

			if err := s.db.WithContext(ctx).Save(&activity).Error; err != nil {
				return nil, fmt.Errorf("activity service: update: %w", err)
			}
			return &activity, nil
		})
	})
}

// Delete removes an activity.
func (s *ActivityService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "activity", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_ACTIVITY",
			EntityType: "Activity",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted activity #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Activity{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("activity service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("activity")
			}
			return struct{}{}, nil
		})
	})
	return err
}
