package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/models"
	apperrors "github.com/akademi/edutrack/pkg/errors"
)

// LookupInput describes the fields accepted for category and status records.
type LookupInput struct {
	Name        string
	Description string
}

// CategoryService manages education categories.
type CategoryService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	if engine == nil {
		return nil, errors.New("category service: authz engine is required")
	}
	return &CategoryService{db: db, engine: engine, activity: activity}, nil
}

// Create adds a new category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, p *auth.Principal, input LookupInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "category", "create", func() (*models.Category, error) {
		spec := authz.ActivitySpec[*models.Category]{
			Action:     "CREATE_CATEGORY",
			EntityType: "Category",
			EntityID:   func(c *models.Category) *uint { return &c.ID },
			Describe:   func(c *models.Category) string { return c.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Category, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			category := &models.Category{Name: name, Description: strings.TrimSpace(input.Description)}
			if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("category service: create: %w", err)
			}
			return category, nil
		})
	})
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context, p *auth.Principal) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "category", "view", func() ([]models.Category, error) {
		var categories []models.Category
		if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
			return nil, fmt.Errorf("category service: list: %w", err)
		}
		return categories, nil
	})
}

// Update rewrites a category.
func (s *CategoryService) Update(ctx context.Context, p *auth.Principal, id uint, input LookupInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "category", "update", func() (*models.Category, error) {
		spec := authz.ActivitySpec[*models.Category]{
			Action:     "UPDATE_CATEGORY",
			EntityType: "Category",
			EntityID:   func(c *models.Category) *uint { return &c.ID },
			Describe:   func(c *models.Category) string { return c.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Category, error) {
			var category models.Category
			if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("category")
				}
				return nil, fmt.Errorf("category service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			category.Name = name
			category.Description = strings.TrimSpace(input.Description)

			if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("category service: update: %w", err)
			}
			return &category, nil
		})
	})
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "category", "delete", func() (struct{}, error) {
		result := s.db.WithContext(ctx).Delete(&models.Category{}, id)
		if result.Error != nil {
			return struct{}{}, fmt.Errorf("category service: delete: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return struct{}{}, apperrors.NewNotFound("category")
		}
		if s.activity != nil {
			s.activity.Record(actorID(p), "DELETE_CATEGORY", "Category", &id, fmt.Sprintf("Deleted category #%d", id))
		}
		return struct{}{}, nil
	})
	return err
}

// StatusService manages the shared workflow states.
type StatusService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewStatusService constructs a StatusService.
func NewStatusService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*StatusService, error) {
	if db == nil {
		return nil, errors.New("status service: db is required")
	}
	if engine == nil {
		return nil, errors.New("status service: authz engine is required")
	}
	return &StatusService{db: db, engine: engine, activity: activity}, nil
}

// Create adds a new status. Names are unique.
func (s *StatusService) Create(ctx context.Context, p *auth.Principal, input LookupInput) (*models.Status, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "status", "create", func() (*models.Status, error) {
		spec := authz.ActivitySpec[*models.Status]{
			Action:     "CREATE_STATUS",
			EntityType: "Status",
			EntityID:   func(st *models.Status) *uint { return &st.ID },
			Describe:   func(st *models.Status) string { return st.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Status, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			status := &models.Status{Name: name, Description: strings.TrimSpace(input.Description)}
			if err := s.db.WithContext(ctx).Create(status).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("status service: create: %w", err)
			}
			return status, nil
		})
	})
}

// List returns all statuses ordered by name.
func (s *StatusService) List(ctx context.Context, p *auth.Principal) ([]models.Status, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "status", "view", func() ([]models.Status, error) {
		var statuses []models.Status
		if err := s.db.WithContext(ctx).Order("name").Find(&statuses).Error; err != nil {
			return nil, fmt.Errorf("status service: list: %w", err)
		}
		return statuses, nil
	})
}

// Update rewrites a status.
func (s *StatusService) Update(ctx context.Context, p *auth.Principal, id uint, input LookupInput) (*models.Status, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "status", "update", func() (*models.Status, error) {
		spec := authz.ActivitySpec[*models.Status]{
			Action:     "UPDATE_STATUS",
			EntityType: "Status",
			EntityID:   func(st *models.Status) *uint { return &st.ID },
			Describe:   func(st *models.Status) string { return st.Name },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Status, error) {
			var status models.Status
			if err := s.db.WithContext(ctx).First(&status, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("status")
				}
				return nil, fmt.Errorf("status service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			status.Name = name
			status.Description = strings.TrimSpace(input.Description)

			if err := s.db.WithContext(ctx).Save(&status).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("status service: update: %w", err)
			}
			return &status, nil
		})
	})
}

// Delete removes a status.
func (s *StatusService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "status", "delete", func() (struct{}, error) {
		result := s.db.WithContext(ctx).Delete(&models.Status{}, id)
		if result.Error != nil {
			return struct{}{}, fmt.Errorf("status service: delete: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return struct{}{}, apperrors.NewNotFound("status")
		}
		if s.activity != nil {
			s.activity.Record(actorID(p), "DELETE_STATUS", "Status", &id, fmt.Sprintf("Deleted status #%d", id))
		}
		return struct{}{}, nil
	})
	return err
}
