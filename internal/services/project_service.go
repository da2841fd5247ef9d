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

// ProjectInput describes the fields accepted when creating or updating a project.
type ProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	StatusID    *uint
}

// ProjectService manages projects and their scheduled activities.
type ProjectService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
	perf     *PerformanceLogService
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService, perf *PerformanceLogService) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if engine == nil {
		return nil, errors.New("project service: authz engine is required")
	}
	return &ProjectService{db: db, engine: engine, activity: activity, perf: perf}, nil
}

func projectSpec(action string) authz.ActivitySpec[*models.Project] {
	return authz.ActivitySpec[*models.Project]{
		Action:     action,
		EntityType: "Project",
		EntityID:   func(pr *models.Project) *uint { return &pr.ID },
		Describe:   func(pr *models.Project) string { return pr.Name },
	}
}

// Create provisions a new project.
func (s *ProjectService) Create(ctx context.Context, p *auth.Principal, input ProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "project", "create", func() (*models.Project, error) {
		return authz.WithActivityLog(s.activity, actorID(p), projectSpec("CREATE_PROJECT"), func() (*models.Project, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
				return nil, apperrors.NewBadRequest("end date precedes start date")
			}

			project := &models.Project{
				Name:        name,
				Description: strings.TrimSpace(input.Description),
				StartDate:   input.StartDate,
				EndDate:     input.EndDate,
				StatusID:    input.StatusID,
			}
			if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
				return nil, fmt.Errorf("project service: create: %w", err)
			}
			return project, nil
		})
	})
}

// Get returns one project with its status preloaded.
func (s *ProjectService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Project, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "project", "view", func() (*models.Project, error) {
		var project models.Project
		if err := s.db.WithContext(ctx).Preload("Status").First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("project")
			}
			return nil, fmt.Errorf("project service: get: %w", err)
		}
		return &project, nil
	})
}

// List returns all projects, most recent first.
func (s *ProjectService) List(ctx context.Context, p *auth.Principal) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "project", "view", func() ([]models.Project, error) {
		return authz.WithTiming(s.perf, "ProjectService.List", func() ([]models.Project, error) {
			var projects []models.Project
			err := s.db.WithContext(ctx).
				Preload("Status").
				Order("created_at DESC").
				Find(&projects).Error
			if err != nil {
				return nil, fmt.Errorf("project service: list: %w", err)
			}
			return projects, nil
		})
	})
}

// Update rewrites a project's details.
func (s *ProjectService) Update(ctx context.Context, p *auth.Principal, id uint, input ProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "project", "update", func() (*models.Project, error) {
		return authz.WithActivityLog(s.activity, actorID(p), projectSpec("UPDATE_PROJECT"), func() (*models.Project, error) {
			var project models.Project
			if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("project")
				}
				return nil, fmt.Errorf("project service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
				return nil, apperrors.NewBadRequest("end date precedes start date")
			}

			project.Name = name
			project.Description = strings.TrimSpace(input.Description)
			project.StartDate = input.StartDate
			project.EndDate = input.EndDate
			project.StatusID = input.StatusID

			if err := s.db.WithContext(ctx).Save(&project).Error; err != nil {
				return nil, fmt.Errorf("project service: update: %w", err)
			}
			return &project, nil
		})
	})
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "project", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_PROJECT",
			EntityType: "Project",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted project #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Project{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("project service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("project")
			}
			return struct{}{}, nil
		})
	})
	return err
}
