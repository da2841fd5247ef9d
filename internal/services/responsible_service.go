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

// ResponsibleInput describes the fields accepted when creating or updating a
// responsible party.
type ResponsibleInput struct {
	FullName   string
	Email      string
	Phone      string
	Department string
}

// ResponsibleService manages responsible-party records and their role
// assignments. Role assignment feeds the fine-grained authorization tier.
type ResponsibleService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewResponsibleService constructs a ResponsibleService.
func NewResponsibleService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*ResponsibleService, error) {
	if db == nil {
		return nil, errors.New("responsible service: db is required")
	}
	if engine == nil {
		return nil, errors.New("responsible service: authz engine is required")
	}
	return &ResponsibleService{db: db, engine: engine, activity: activity}, nil
}

func responsibleSpec(action string) authz.ActivitySpec[*models.Responsible] {
	return authz.ActivitySpec[*models.Responsible]{
		Action:     action,
		EntityType: "Responsible",
		EntityID:   func(r *models.Responsible) *uint { return &r.ID },
		Describe:   func(r *models.Responsible) string { return r.FullName },
	}
}

// Create registers a new responsible party.
func (s *ResponsibleService) Create(ctx context.Context, p *auth.Principal, input ResponsibleInput) (*models.Responsible, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "responsible", "create", func() (*models.Responsible, error) {
		return authz.WithActivityLog(s.activity, actorID(p), responsibleSpec("CREATE_RESPONSIBLE"), func() (*models.Responsible, error) {
			name := strings.TrimSpace(input.FullName)
			if name == "" {
				return nil, apperrors.NewBadRequest("full name is required")
			}

			responsible := &models.Responsible{
				FullName:   name,
				Email:      strings.ToLower(strings.TrimSpace(input.Email)),
				Phone:      strings.TrimSpace(input.Phone),
				Department: strings.TrimSpace(input.Department),
			}
			if err := s.db.WithContext(ctx).Create(responsible).Error; err != nil {
				return nil, fmt.Errorf("responsible service: create: %w", err)
			}
			return responsible, nil
		})
	})
}

// Get returns one responsible party with its role preloaded.
func (s *ResponsibleService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Responsible, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "responsible", "view", func() (*models.Responsible, error) {
		var responsible models.Responsible
		if err := s.db.WithContext(ctx).Preload("Role.Permissions").First(&responsible, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("responsible")
			}
			return nil, fmt.Errorf("responsible service: get: %w", err)
		}
		return &responsible, nil
	})
}

// List returns all responsible parties ordered by name.
func (s *ResponsibleService) List(ctx context.Context, p *auth.Principal) ([]models.Responsible, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "responsible", "view", func() ([]models.Responsible, error) {
		var responsibles []models.Responsible
		if err := s.db.WithContext(ctx).Preload("Role").Order("full_name").Find(&responsibles).Error; err != nil {
			return nil, fmt.Errorf("responsible service: list: %w", err)
		}
		return responsibles, nil
	})
}

// Update rewrites a responsible party's contact details.
func (s *ResponsibleService) Update(ctx context.Context, p *auth.Principal, id uint, input ResponsibleInput) (*models.Responsible, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "responsible", "update", func() (*models.Responsible, error) {
		return authz.WithActivityLog(s.activity, actorID(p), responsibleSpec("UPDATE_RESPONSIBLE"), func() (*models.Responsible, error) {
			var responsible models.Responsible
			if err := s.db.WithContext(ctx).First(&responsible, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("responsible")
				}
				return nil, fmt.Errorf("responsible service: load: %w", err)
			}

			name := strings.TrimSpace(input.FullName)
			if name == "" {
				return nil, apperrors.NewBadRequest("full name is required")
			}

			responsible.FullName = name
			responsible.Email = strings.ToLower(strings.TrimSpace(input.Email))
			responsible.Phone = strings.TrimSpace(input.Phone)
			responsible.Department = strings.TrimSpace(input.Department)

			if err := s.db.WithContext(ctx).Save(&responsible).Error; err != nil {
				return nil, fmt.Errorf("responsible service: update: %w", err)
			}
			return &responsible, nil
		})
	})
}

// AssignRole attaches a fine-grained role to the responsible party, or
// clears the assignment when roleID is nil. The change takes effect on the
// linked account's next request.
func (s *ResponsibleService) AssignRole(ctx context.Context, p *auth.Principal, id uint, roleID *uint) (*models.Responsible, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "responsible", "update", func() (*models.Responsible, error) {
		return authz.WithActivityLog(s.activity, actorID(p), responsibleSpec("ASSIGN_ROLE"), func() (*models.Responsible, error) {
			var responsible models.Responsible
			if err := s.db.WithContext(ctx).First(&responsible, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("responsible")
				}
				return nil, fmt.Errorf("responsible service: load: %w", err)
			}

			if roleID != nil {
				var role models.Role
				if err := s.db.WithContext(ctx).First(&role, *roleID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, apperrors.NewNotFound("role")
					}
					return nil, fmt.Errorf("responsible service: load role: %w", err)
				}
			}

			if err := s.db.WithContext(ctx).Model(&responsible).Update("role_id", roleID).Error; err != nil {
				return nil, fmt.Errorf("responsible service: assign role: %w", err)
			}
			responsible.RoleID = roleID
			return &responsible, nil
		})
	})
}

// Delete removes a responsible party.
func (s *ResponsibleService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "responsible", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_RESPONSIBLE",
			EntityType: "Responsible",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted responsible #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Responsible{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("responsible service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("responsible")
			}
			return struct{}{}, nil
		})
	})
	return err
}
