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
	"github.com/akademi/edutrack/pkg/crypto"
	apperrors "github.com/akademi/edutrack/pkg/errors"
)

// UpdateUserInput enumerates mutable account attributes. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	FullName      *string
	Email         *string
	Role          *models.CoarseRole
	IsActive      *bool
	ResponsibleID *uint
}

// UserService manages account administration: listing, updates, activation
// and password resets. Account creation goes through AuthService.Register.
type UserService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if engine == nil {
		return nil, errors.New("user service: authz engine is required")
	}
	return &UserService{db: db, engine: engine, activity: activity}, nil
}

func userSpec(action string) authz.ActivitySpec[*models.User] {
	return authz.ActivitySpec[*models.User]{
		Action:     action,
		EntityType: "User",
		EntityID:   func(u *models.User) *uint { return &u.ID },
		Describe:   func(u *models.User) string { return u.Email },
	}
}

// Get returns one account with its responsible link preloaded.
func (s *UserService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.User, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "users", "view", func() (*models.User, error) {
		var user models.User
		if err := s.db.WithContext(ctx).Preload("Responsible.Role").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("user")
			}
			return nil, fmt.Errorf("user service: get: %w", err)
		}
		return &user, nil
	})
}

// List returns all accounts ordered by email.
func (s *UserService) List(ctx context.Context, p *auth.Principal) ([]models.User, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "users", "view", func() ([]models.User, error) {
		var users []models.User
		if err := s.db.WithContext(ctx).Preload("Responsible").Order("email").Find(&users).Error; err != nil {
			return nil, fmt.Errorf("user service: list: %w", err)
		}
		return users, nil
	})
}

// Update applies the provided changes to an account.
func (s *UserService) Update(ctx context.Context, p *auth.Principal, id uint, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "users", "update", func() (*models.User, error) {
		return authz.WithActivityLog(s.activity, actorID(p), userSpec("UPDATE_USER"), func() (*models.User, error) {
			var user models.User
			if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("user")
				}
				return nil, fmt.Errorf("user service: load: %w", err)
			}

			updates := map[string]any{}
			if input.FullName != nil {
				name := strings.TrimSpace(*input.FullName)
				if name == "" {
					return nil, apperrors.NewBadRequest("full name cannot be empty")
				}
				updates["full_name"] = name
			}
			if input.Email != nil {
				email := strings.ToLower(strings.TrimSpace(*input.Email))
				if email == "" {
					return nil, apperrors.NewBadRequest("email cannot be empty")
				}
				updates["email"] = email
			}
			if input.Role != nil {
				if *input.Role != "" && !input.Role.Valid() {
					return nil, apperrors.NewBadRequest("unknown role")
				}
				updates["role"] = *input.Role
			}
			if input.IsActive != nil {
				updates["is_active"] = *input.IsActive
			}
			if input.ResponsibleID != nil {
				updates["responsible_id"] = input.ResponsibleID
			}

			if len(updates) > 0 {
				if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
					if isUniqueConstraintError(err) {
						return nil, apperrors.ErrConflict.WithInternal(err)
					}
					return nil, fmt.Errorf("user service: update: %w", err)
				}
			}
			return &user, nil
		})
	})
}

// ResetPassword replaces an account's password.
func (s *UserService) ResetPassword(ctx context.Context, p *auth.Principal, id uint, newPassword string) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "users", "update", func() (*models.User, error) {
		return authz.WithActivityLog(s.activity, actorID(p), userSpec("RESET_PASSWORD"), func() (*models.User, error) {
			if len(newPassword) < 8 {
				return nil, apperrors.NewBadRequest("password must be at least 8 characters")
			}

			var user models.User
			if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("user")
				}
				return nil, fmt.Errorf("user service: load: %w", err)
			}

			hashed, err := crypto.HashPassword(newPassword)
			if err != nil {
				return nil, fmt.Errorf("user service: hash password: %w", err)
			}
			if err := s.db.WithContext(ctx).Model(&user).Update("password", hashed).Error; err != nil {
				return nil, fmt.Errorf("user service: reset password: %w", err)
			}
			return &user, nil
		})
	})
	return err
}

// Delete removes an account. Self-deletion is rejected so an administrator
// cannot lock themselves out mid-session.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "users", "delete", func() (struct{}, error) {
		if p != nil && p.UserID != nil && *p.UserID == id {
			return struct{}{}, apperrors.NewBadRequest("cannot delete your own account")
		}

		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_USER",
			EntityType: "User",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted user #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.User{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("user service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("user")
			}
			return struct{}{}, nil
		})
	})
	return err
}
