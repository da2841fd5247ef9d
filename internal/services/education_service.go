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

// CreateEducationInput describes the fields accepted when creating an education.
type CreateEducationInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time

	CategoryID    *uint
	StatusID      *uint
	ProjectID     *uint
	TrainerID     *uint
	ResponsibleID *uint
}

// UpdateEducationInput enumerates mutable education attributes. Nil fields
// are left unchanged.
type UpdateEducationInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time

	CategoryID    *uint
	StatusID      *uint
	ProjectID     *uint
	TrainerID     *uint
	ResponsibleID *uint
}

// EducationFilters captures listing filters.
type EducationFilters struct {
	CategoryID *uint
	StatusID   *uint
	ProjectID  *uint
	TrainerID  *uint
	Query      string
}

// ListEducationsOptions controls pagination for education listing.
type ListEducationsOptions struct {
	Page     int
	PageSize int
	Filters  EducationFilters
}

// EducationService manages the training-programme lifecycle. Every operation
// is authorization-guarded and mutations are written to the activity log.
type EducationService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
	perf     *PerformanceLogService
}

// NewEducationService constructs an EducationService.
func NewEducationService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService, perf *PerformanceLogService) (*EducationService, error) {
	if db == nil {
		return nil, errors.New("education service: db is required")
	}
	if engine == nil {
		return nil, errors.New("education service: authz engine is required")
	}
	return &EducationService{db: db, engine: engine, activity: activity, perf: perf}, nil
}

// Create provisions a new education.
func (s *EducationService) Create(ctx context.Context, p *auth.Principal, input CreateEducationInput) (*models.Education, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "education", "create", func() (*models.Education, error) {
		spec := authz.ActivitySpec[*models.Education]{
			Action:     "CREATE_EDUCATION",
			EntityType: "Education",
			EntityID:   func(e *models.Education) *uint { return &e.ID },
			Describe:   func(e *models.Education) string { return "Created education: " + e.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Education, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
				return nil, apperrors.NewBadRequest("end date precedes start date")
			}

			education := &models.Education{
				Name:          name,
				Description:   strings.TrimSpace(input.Description),
				StartDate:     input.StartDate,
				EndDate:       input.EndDate,
				CategoryID:    input.CategoryID,
				StatusID:      input.StatusID,
				ProjectID:     input.ProjectID,
				TrainerID:     input.TrainerID,
				ResponsibleID: input.ResponsibleID,
			}
			if err := s.db.WithContext(ctx).Create(education).Error; err != nil {
				return nil, fmt.Errorf("education service: create: %w", err)
			}
			return education, nil
		})
	})
}

// Get returns one education with its associations preloaded.
func (s *EducationService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Education, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "education", "view", func() (*models.Education, error) {
		var education models.Education
		err := s.db.WithContext(ctx).
			Preload("Category").
			Preload("Status").
			Preload("Project").
			Preload("Trainer").
			Preload("Responsible").
			First(&education, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("education")
			}
			return nil, fmt.Errorf("education service: get: %w", err)
		}
		return &education, nil
	})
}

// List returns paginated educations matching the filters.
func (s *EducationService) List(ctx context.Context, p *auth.Principal, opts ListEducationsOptions) ([]models.Education, int64, error) {
	ctx = ensureContext(ctx)

	type listing struct {
		items []models.Education
		total int64
	}

	result, err := authz.Guarded(ctx, s.engine, p, "education", "view", func() (listing, error) {
		return authz.WithTiming(s.perf, "EducationService.List", func() (listing, error) {
			page := opts.Page
			if page <= 0 {
				page = 1
			}
			perPage := opts.PageSize
			if perPage <= 0 || perPage > 200 {
				perPage = 50
			}

			query := s.db.WithContext(ctx).Model(&models.Education{})
			if opts.Filters.CategoryID != nil {
				query = query.Where("category_id = ?", *opts.Filters.CategoryID)
			}
			if opts.Filters.StatusID != nil {
				query = query.Where("status_id = ?", *opts.Filters.StatusID)
			}
			if opts.Filters.ProjectID != nil {
				query = query.Where("project_id = ?", *opts.Filters.ProjectID)
			}
			if opts.Filters.TrainerID != nil {
				query = query.Where("trainer_id = ?", *opts.Filters.TrainerID)
			}
			if q := strings.TrimSpace(opts.Filters.Query); q != "" {
				query = query.Where("name LIKE ?", "%"+q+"%")
			}

			var out listing
			if err := query.Count(&out.total).Error; err != nil {
				return out, fmt.Errorf("education service: count: %w", err)
			}
			err := query.
				Preload("Category").
				Preload("Status").
				Order("created_at DESC").
				Offset((page - 1) * perPage).
				Limit(perPage).
				Find(&out.items).Error
			if err != nil {
				return out, fmt.Errorf("education service: list: %w", err)
			}
			return out, nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return result.items, result.total, nil
}

// Update applies the provided changes to an existing education.
func (s *EducationService) Update(ctx context.Context, p *auth.Principal, id uint, input UpdateEducationInput) (*models.Education, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "education", "update", func() (*models.Education, error) {
		spec := authz.ActivitySpec[*models.Education]{
			Action:     "UPDATE_EDUCATION",
			EntityType: "Education",
			EntityID:   func(e *models.Education) *uint { return &e.ID },
			Describe:   func(e *models.Education) string { return "Updated education: " + e.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Education, error) {
			var education models.Education
			if err := s.db.WithContext(ctx).First(&education, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("education")
				}
				return nil, fmt.Errorf("education service: load: %w", err)
			}

			updates := map[string]any{}
			if input.Name != nil {
				name := strings.TrimSpace(*input.Name)
				if name == "" {
					return nil, apperrors.NewBadRequest("name cannot be empty")
				}
				updates["name"] = name
			}
			if input.Description != nil {
				updates["description"] = strings.TrimSpace(*input.Description)
			}
			if input.StartDate != nil {
				updates["start_date"] = input.StartDate
			}
			if input.EndDate != nil {
				updates["end_date"] = input.EndDate
			}
			if input.CategoryID != nil {
				updates["category_id"] = input.CategoryID
			}
			if input.StatusID != nil {
				updates["status_id"] = input.StatusID
			}
			if input.ProjectID != nil {
				updates["project_id"] = input.ProjectID
			}
			if input.TrainerID != nil {
				updates["trainer_id"] = input.TrainerID
			}
			if input.ResponsibleID != nil {
				updates["responsible_id"] = input.ResponsibleID
			}

			if len(updates) > 0 {
				if err := s.db.WithContext(ctx).Model(&education).Updates(updates).Error; err != nil {
					return nil, fmt.Errorf("education service: update: %w", err)
				}
			}
			return &education, nil
		})
	})
}

// Delete removes an education. The removal is recorded even when the delete
// itself fails, so attempted destructive actions stay visible.
func (s *EducationService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "education", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_EDUCATION",
			EntityType: "Education",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted education #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Education{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("education service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("education")
			}
			return struct{}{}, nil
		})
	})
	return err
}
