package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/pkg/logger"
)

// Principal is the resolved, request-scoped representation of the caller.
// It is constructed once per request from a validated token and never
// mutated afterwards.
type Principal struct {
	// Email is the stable identity key taken from the token subject.
	Email string

	// UserID is set when the subject still maps to a live user record.
	UserID *uint

	// CoarseRole is the legacy role. Sourced from the user record when one
	// exists, otherwise from the token claim itself.
	CoarseRole models.CoarseRole

	// Role is the fine-grained role reached through the user's linked
	// responsible record, when assigned.
	Role *models.Role
}

// Resolved reports whether an identity was established for the request.
func (p *Principal) Resolved() bool {
	return p != nil && p.Email != ""
}

// PrincipalResolver turns inbound bearer credentials into a Principal.
type PrincipalResolver struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewPrincipalResolver constructs a resolver backed by the user store.
func NewPrincipalResolver(db *gorm.DB, tokens *TokenService) (*PrincipalResolver, error) {
	if db == nil {
		return nil, errors.New("principal resolver: db is required")
	}
	if tokens == nil {
		return nil, errors.New("principal resolver: token service is required")
	}
	return &PrincipalResolver{db: db, tokens: tokens}, nil
}

// ResolveFromHeader extracts the bearer token from an Authorization header
// value and resolves the caller. Ordinary invalid input (absent header,
// malformed, expired, or role-less token) yields nil, never an error:
// downstream authorization then denies.
func (r *PrincipalResolver) ResolveFromHeader(ctx context.Context, header string) *Principal {
	token, ok := bearerToken(header)
	if !ok {
		return nil
	}

	claims, err := r.tokens.Validate(token)
	if err != nil {
		// Includes ErrMissingRoleClaim: a token without a role claim is
		// treated as unauthenticated for role-based checks.
		logger.WithModule("auth").Debug("token rejected", zap.Error(err))
		return nil
	}

	principal := &Principal{
		Email:      claims.Subject,
		CoarseRole: models.CoarseRole(claims.Role),
	}

	var user models.User
	err = r.db.WithContext(ctx).
		Preload("Responsible.Role").
		First(&user, "email = ?", claims.Subject).Error
	if err != nil {
		// The coarse role claim from the token survives even when the user
		// record is gone, so legacy tokens keep working. Fine-grained role
		// data requires the live record and stays unset.
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithModule("auth").Warn("user lookup failed", zap.Error(err))
		}
		return principal
	}

	principal.UserID = &user.ID
	principal.CoarseRole = user.Role
	if user.Responsible != nil && user.Responsible.Role != nil {
		principal.Role = user.Responsible.Role
	}

	return principal
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
