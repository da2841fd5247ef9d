package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/pkg/crypto"
	apperrors "github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/metrics"
)

// RegisterInput describes the fields accepted when registering an account.
type RegisterInput struct {
	FullName string
	Email    string
	Password string

	// Role is the optional legacy coarse role. Accounts on the fine-grained
	// system leave it empty and link a Responsible instead.
	Role          models.CoarseRole
	ResponsibleID *uint
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles account registration and credential login.
type AuthService struct {
	db       *gorm.DB
	tokens   *auth.TokenService
	activity *ActivityLogService
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, tokens *auth.TokenService, activity *ActivityLogService) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("auth service: token service is required")
	}
	return &AuthService{db: db, tokens: tokens, activity: activity}, nil
}

// Register provisions a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, apperrors.NewBadRequest("full name is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}
	if input.Role != "" && !input.Role.Valid() {
		return nil, apperrors.NewBadRequest("unknown role")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		FullName:      strings.TrimSpace(input.FullName),
		Email:         email,
		Password:      hashed,
		Role:          input.Role,
		ResponsibleID: input.ResponsibleID,
		IsActive:      true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithInternal(err)
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(&user.ID, "REGISTER", "User", &user.ID, "Registered account "+user.Email)
	}

	return user, nil
}

// Login verifies credentials and issues a signed token carrying the
// account's coarse role. Disabled accounts are rejected before the password
// check so their credentials are never evaluated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: lookup user: %w", err)
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrAccountDisabled
	}
	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("auth service: record login time: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	if s.activity != nil {
		s.activity.Record(&user.ID, "LOGIN", "User", &user.ID, user.Email+" logged in")
	}

	return &LoginResult{Token: token, User: &user}, nil
}
