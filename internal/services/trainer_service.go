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

// TrainerInput describes the fields accepted when creating or updating a trainer.
type TrainerInput struct {
	FullName  string
	Email     string
	Phone     string
	Expertise string
}

// TrainerService manages trainer records.
type TrainerService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewTrainerService constructs a TrainerService.
func NewTrainerService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*TrainerService, error) {
	if db == nil {
		return nil, errors.New("trainer service: db is required")
	}
	if engine == nil {
		return nil, errors.New("trainer service: authz engine is required")
	}
	return &TrainerService{db: db, engine: engine, activity: activity}, nil
}

func trainerSpec(action string) authz.ActivitySpec[*models.Trainer] {
	return authz.ActivitySpec[*models.Trainer]{
		Action:     action,
		EntityType: "Trainer",
		EntityID:   func(tr *models.Trainer) *uint { return &tr.ID },
		Describe:   func(tr *models.Trainer) string { return tr.FullName },
	}
}

// Create registers a new trainer.
func (s *TrainerService) Create(ctx context.Context, p *auth.Principal, input TrainerInput) (*models.Trainer, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "trainer", "create", func() (*models.Trainer, error) {
		return authz.WithActivityLog(s.activity, actorID(p), trainerSpec("CREATE_TRAINER"), func() (*models.Trainer, error) {
			name := strings.TrimSpace(input.FullName)
			if name == "" {
				return nil, apperrors.NewBadRequest("full name is required")
			}

			trainer := &models.Trainer{
				FullName:  name,
				Email:     strings.ToLower(strings.TrimSpace(input.Email)),
				Phone:     strings.TrimSpace(input.Phone),
				Expertise: strings.TrimSpace(input.Expertise),
			}
			if err := s.db.WithContext(ctx).Create(trainer).Error; err != nil {
				return nil, fmt.Errorf("trainer service: create: %w", err)
			}
			return trainer, nil
		})
	})
}

// Get returns one trainer.
func (s *TrainerService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Trainer, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "trainer", "view", func() (*models.Trainer, error) {
		var trainer models.Trainer
		if err := s.db.WithContext(ctx).First(&trainer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("trainer")
			}
			return nil, fmt.Errorf("trainer service: get: %w", err)
		}
		return &trainer, nil
	})
}

// List returns trainers, optionally filtered by a name or expertise substring.
func (s *TrainerService) List(ctx context.Context, p *auth.Principal, query string) ([]models.Trainer, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "trainer", "view", func() ([]models.Trainer, error) {
		q := s.db.WithContext(ctx).Model(&models.Trainer{})
		if query = strings.TrimSpace(query); query != "" {
			like := "%" + query + "%"
			q = q.Where("full_name LIKE ? OR expertise LIKE ?", like, like)
		}

		var trainers []models.Trainer
		if err := q.Order("full_name").Find(&trainers).Error; err != nil {
			return nil, fmt.Errorf("trainer service: list: %w", err)
		}
		return trainers, nil
	})
}

// Update rewrites a trainer's details.
func (s *TrainerService) Update(ctx context.Context, p *auth.Principal, id uint, input TrainerInput) (*models.Trainer, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "trainer", "update", func() (*models.Trainer, error) {
		return authz.WithActivityLog(s.activity, actorID(p), trainerSpec("UPDATE_TRAINER"), func() (*models.Trainer, error) {
			var trainer models.Trainer
			if err := s.db.WithContext(ctx).First(&trainer, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("trainer")
				}
				return nil, fmt.Errorf("trainer service: load: %w", err)
			}

			name := strings.TrimSpace(input.FullName)
			if name == "" {
				return nil, apperrors.NewBadRequest("full name is required")
			}

			trainer.FullName = name
			trainer.Email = strings.ToLower(strings.TrimSpace(input.Email))
			trainer.Phone = strings.TrimSpace(input.Phone)
			trainer.Expertise = strings.TrimSpace(input.Expertise)

			if err := s.db.WithContext(ctx).Save(&trainer).Error; err != nil {
				return nil, fmt.Errorf("trainer service: update: %w", err)
			}
			return &trainer, nil
		})
	})
}

// Delete removes a trainer record.
func (s *TrainerService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "trainer", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_TRAINER",
			EntityType: "Trainer",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted trainer #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Trainer{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("trainer service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("trainer")
			}
			return struct{}{}, nil
		})
	})
	return err
}
