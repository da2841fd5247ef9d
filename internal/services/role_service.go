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

// RoleInput describes the fields accepted when creating or updating a role.
type RoleInput struct {
	Name        string
	Description string
}

// RoleService manages fine-grained roles and their permission grants. All
// operations are guarded under the reserved "roles" module, so only
// administrators can mutate them.
type RoleService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewRoleService constructs a RoleService.
func NewRoleService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	if engine == nil {
		return nil, errors.New("role service: authz engine is required")
	}
	return &RoleService{db: db, engine: engine, activity: activity}, nil
}

func roleSpec(action string) authz.ActivitySpec[*models.Role] {
	return authz.ActivitySpec[*models.Role]{
		Action:     action,
		EntityType: "Role",
		EntityID:   func(r *models.Role) *uint { return &r.ID },
		Describe:   func(r *models.Role) string { return r.Name },
	}
}

// Create adds a new role. Names are unique.
func (s *RoleService) Create(ctx context.Context, p *auth.Principal, input RoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "create", func() (*models.Role, error) {
		return authz.WithActivityLog(s.activity, actorID(p), roleSpec("CREATE_ROLE"), func() (*models.Role, error) {
			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}

			role := &models.Role{Name: name, Description: strings.TrimSpace(input.Description)}
			if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("role service: create: %w", err)
			}
			return role, nil
		})
	})
}

// Get returns one role with its permission grants preloaded.
func (s *RoleService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "view", func() (*models.Role, error) {
		var role models.Role
		if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("role")
			}
			return nil, fmt.Errorf("role service: get: %w", err)
		}
		return &role, nil
	})
}

// List returns all roles with their permissions preloaded.
func (s *RoleService) List(ctx context.Context, p *auth.Principal) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "view", func() ([]models.Role, error) {
		var roles []models.Role
		if err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&roles).Error; err != nil {
			return nil, fmt.Errorf("role service: list: %w", err)
		}
		return roles, nil
	})
}

// Update rewrites a role's name and description.
func (s *RoleService) Update(ctx context.Context, p *auth.Principal, id uint, input RoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "update", func() (*models.Role, error) {
		return authz.WithActivityLog(s.activity, actorID(p), roleSpec("UPDATE_ROLE"), func() (*models.Role, error) {
			var role models.Role
			if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("role")
				}
				return nil, fmt.Errorf("role service: load: %w", err)
			}

			name := strings.TrimSpace(input.Name)
			if name == "" {
				return nil, apperrors.NewBadRequest("name is required")
			}
			role.Name = name
			role.Description = strings.TrimSpace(input.Description)

			if err := s.db.WithContext(ctx).Save(&role).Error; err != nil {
				if isUniqueConstraintError(err) {
					return nil, apperrors.ErrConflict.WithInternal(err)
				}
				return nil, fmt.Errorf("role service: update: %w", err)
			}
			return &role, nil
		})
	})
}

// AddPermission grants a permission to a role. Granting an already-held
// permission is a no-op.
func (s *RoleService) AddPermission(ctx context.Context, p *auth.Principal, roleID, permissionID uint) (*models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "update", func() (*models.Role, error) {
		return authz.WithActivityLog(s.activity, actorID(p), roleSpec("GRANT_PERMISSION"), func() (*models.Role, error) {
			role, permission, err := s.loadPair(ctx, roleID, permissionID)
			if err != nil {
				return nil, err
			}

			if !role.HasPermission(permission.Module, permission.Action) {
				if err := s.db.WithContext(ctx).Model(role).Association("Permissions").Append(permission); err != nil {
					return nil, fmt.Errorf("role service: grant permission: %w", err)
				}
				role.Permissions = append(role.Permissions, *permission)
			}
			return role, nil
		})
	})
}

// RemovePermission revokes a permission from a role.
func (s *RoleService) RemovePermission(ctx context.Context, p *auth.Principal, roleID, permissionID uint) (*models.Role, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "roles", "update", func() (*models.Role, error) {
		return authz.WithActivityLog(s.activity, actorID(p), roleSpec("REVOKE_PERMISSION"), func() (*models.Role, error) {
			role, permission, err := s.loadPair(ctx, roleID, permissionID)
			if err != nil {
				return nil, err
			}

			if err := s.db.WithContext(ctx).Model(role).Association("Permissions").Delete(permission); err != nil {
				return nil, fmt.Errorf("role service: revoke permission: %w", err)
			}

			kept := role.Permissions[:0]
			for _, existing := range role.Permissions {
				if !existing.Equal(*permission) {
					kept = append(kept, existing)
				}
			}
			role.Permissions = kept
			return role, nil
		})
	})
}

// Delete removes a role. Responsible parties linked to it fall back to
// having no fine-grained role.
func (s *RoleService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "roles", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_ROLE",
			EntityType: "Role",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted role #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				var role models.Role
				if err := tx.First(&role, id).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperrors.NewNotFound("role")
					}
					return fmt.Errorf("role service: load: %w", err)
				}
				if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
					return fmt.Errorf("role service: clear grants: %w", err)
				}
				if err := tx.Model(&models.Responsible{}).Where("role_id = ?", id).Update("role_id", nil).Error; err != nil {
					return fmt.Errorf("role service: unlink responsibles: %w", err)
				}
				if err := tx.Delete(&role).Error; err != nil {
					return fmt.Errorf("role service: delete: %w", err)
				}
				return nil
			})
			return struct{}{}, err
		})
	})
	return err
}

func (s *RoleService) loadPair(ctx context.Context, roleID, permissionID uint) (*models.Role, *models.Permission, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NewNotFound("role")
		}
		return nil, nil, fmt.Errorf("role service: load role: %w", err)
	}

	var permission models.Permission
	if err := s.db.WithContext(ctx).First(&permission, permissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NewNotFound("permission")
		}
		return nil, nil, fmt.Errorf("role service: load permission: %w", err)
	}

	return &role, &permission, nil
}
