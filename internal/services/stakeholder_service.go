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

// StakeholderInput describes the fields accepted when creating or updating a stakeholder.
type StakeholderInput struct {
	Name         string
	Organization string
	Email        string
	Phone        string
	ProjectID    *uint
}

// StakeholderService manages external-party records attached to projects.
type StakeholderService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewStakeholderService constructs a StakeholderService.
func NewStakeholderService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*StakeholderService, error) {
	if db == nil {
		return nil, errors.New("stakeholder service: db is required")
	}
	if engine == nil {
		return nil, errors.New("stakeholder service: authz engine is required")
	}
	return &StakeholderService{db: db, engine: engine, activity: activity}, nil
}

func stakeholderSpec(action string) authz.ActivitySpec[*models.Stakeholder] {
	return authz.ActivitySpec[*models.Stakeholder]{
		Action:     action,
		EntityType: "Stakeholder",
		EntityID:   func(st *models.Stakeholder) *uint { return &st.ID },
		Describe:   func(st *models.Stakeholder) string { return st.Name },
	}
}

// Create registers a new stakeholder.
func (s *StakeholderService) Create(ctx context.Context, p *auth.Principal, input StakeholderInput) (*models.Stakeholder, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "stakeholder", "create", func() (*models.Stakeholder, error) {
		return authz.WithActivityLog(s.activity, actorID(p), stakeholderSpec("CREATE_STAKEHOLDER"), func() (*models.Stakeholder, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			stakeholder := &models.Stakeholder{
				Name:         name,
				Organization: strings.TrimSpace(input.Organization),
				Email:        strings.ToLower(strings.TrimSpace(input.Email)),
				Phone:        strings.TrimSpace(input.Phone),
				ProjectID:    input.ProjectID,
			}
			if err := s.db.WithContext(ctx).Create(stakeholder).Error; err != nil {
				return nil, fmt.Errorf("stakeholder service: create: %w", err)
			}
			return stakeholder, nil
		})
	})
}

// Get returns one stakeholder with its project preloaded.
func (s *StakeholderService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Stakeholder, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "stakeholder", "view", func() (*models.Stakeholder, error) {
		var stakeholder models.Stakeholder
		if err := s.db.WithContext(ctx).Preload("Project").First(&stakeholder, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("stakeholder")
			}
			return nil, fmt.Errorf("stakeholder service: get: %w", err)
		}
		return &stakeholder, nil
	})
}

// List returns stakeholders, optionally narrowed to one project.
func (s *StakeholderService) List(ctx context.Context, p *auth.Principal, projectID *uint) ([]models.Stakeholder, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "stakeholder", "view", func() ([]models.Stakeholder, error) {
		query := s.db.WithContext(ctx).Model(&models.Stakeholder{})
		if projectID != nil {
			query = query.Where("project_id = ?", *projectID)
		}

		var stakeholders []models.Stakeholder
		if err := query.Order("name").Find(&stakeholders).Error; err != nil {
			return nil, fmt.Errorf("stakeholder service: list: %w", err)
		}
		return stakeholders, nil
	})
}

// Update rewrites a stakeholder's details.
func (s *StakeholderService) Update(ctx context.Context, p *auth.Principal, id uint, input StakeholderInput) (*models.Stakeholder, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "stakeholder", "update", func() (*models.Stakeholder, error) {
		return authz.WithActivityLog(s.activity, actorID(p), stakeholderSpec("UPDATE_STAKEHOLDER"), func() (*models.Stakeholder, error) {
			var stakeholder models.Stakeholder
			if err := s.db.WithContext(ctx).First(&stakeholder, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("stakeholder")
				}
				return nil, fmt.Errorf("stakeholder service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			stakeholder.Name = name
			stakeholder.Organization = strings.TrimSpace(input.Organization)
			stakeholder.Email = strings.ToLower(strings.TrimSpace(input.Email))
			stakeholder.Phone = strings.TrimSpace(input.Phone)
			stakeholder.ProjectID = input.ProjectID

			if err := s.db.WithContext(ctx).Save(&stakeholder).Error; err != nil {
				return nil, fmt.Errorf("stakeholder service: update: %w", err)
			}
			return &stakeholder, nil
		})
	})
}

// Delete removes a stakeholder record.
func (s *StakeholderService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "stakeholder", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_STAKEHOLDER",
			EntityType: "Stakeholder",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted stakeholder #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Stakeholder{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("stakeholder service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("stakeholder")
			}
			return struct{}{}, nil
		})
	})
	return err
}
