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

// PermissionInput describes the fields accepted when creating a permission.
type PermissionInput struct {
	Module      string
	Action      string
	Description string
}

// PermissionService manages the capability catalogue. The standard grid is
// seeded at startup; this service covers inspection and the occasional
// custom capability.
type PermissionService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	if engine == nil {
		return nil, errors.New("permission service: authz engine is required")
	}
	return &PermissionService{db: db, engine: engine, activity: activity}, nil
}

// List returns the capability catalogue, optionally narrowed to one module.
func (s *PermissionService) List(ctx context.Context, p *auth.Principal, module string) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "permissions", "view", func() ([]models.Permission, error) {
		query := s.db.WithContext(ctx).Model(&models.Permission{})
		if module = strings.TrimSpace(module); module != "" {
			query = query.Where("module = ?", module)
		}

		var permissions []models.Permission
		if err := query.Order("module, action").Find(&permissions).Error; err != nil {
			return nil, fmt.Errorf("permission service: list: %w", err)
		}
		return permissions, nil
	})
}

// Create adds a custom capability. The (module, action) pair is unique.
func (s *PermissionService) Create(ctx context.Context, p *auth.Principal, input PermissionInput) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "permissions", "create", func() (*models.Permission, error) {
		spec := authz.ActivitySpec[*models.Permission]{
			Action:     "CREATE_PERMISSION",
			EntityType: "Permission",
			EntityID:   func(perm *models.Permission) *uint { return &perm.ID },
			Describe:   func(perm *models.Permission) string { return perm.Key() },
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (*models.Permission, error) {
			module := strings.TrimSpace(input.Module)
			action := strings.TrimSpace(input.Action)
			if module == "" || action == "" {
				return nil, apperrors.NewBadRequest("module and action are required")
			}

			permission := &models.Permission{
				Module:      module,
				Action:      action,
				Description: strings.TrimSpace(input.Description),
			}
			if err := s.db.WithContext(ctx).Create(permission).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("permission service: create: %w", err)
			}
			return permission, nil
		})
	})
}

// Delete removes a capability and all grants that reference it.
func (s *PermissionService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "permissions", "delete", func() (struct{}, error) {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var permission models.Permission
			if err := tx.First(&permission, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewNotFound("permission")
				}
				return fmt.Errorf("permission service: load: %w", err)
			}
			if err := tx.Model(&permission).Association("Roles").Clear(); err != nil {
				return fmt.Errorf("permission service: clear grants: %w", err)
			}
			if err := tx.Delete(&permission).Error; err != nil {
				return fmt.Errorf("permission service: delete: %w", err)
			}
			return nil
		})
		if err == nil && s.activity != nil {
			s.activity.Record(actorID(p), "DELETE_PERMISSION", "Permission", &id, fmt.Sprintf("Deleted permission #%d", id))
		}
		return struct{}{}, err
	})
	return err
}
