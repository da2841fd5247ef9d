package authz

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/models"
	appErrors "github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/logger"
)

// adminRoleName grants a full bypass in the fine-grained tier.
const adminRoleName = "ADMIN"

// lookupTimeout bounds the role-with-permissions fetch so an unavailable
// store fails closed instead of hanging the request.
const lookupTimeout = 3 * time.Second

// reservedModules are administrator-only: the RESPONSIBLE coarse role may
// only view them.
var reservedModules = map[string]struct{}{
	"roles":       {},
	"permissions": {},
}

// Engine decides whether a principal may perform (module, action). Two rule
// tiers are evaluated in fixed order: the legacy coarse role first, then the
// fine-grained role/permission system for accounts with no coarse role. The
// coarse tier takes precedence so pre-migration accounts keep working
// without a permission-grant backfill.
type Engine struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewEngine constructs an authorization engine backed by the role store.
func NewEngine(db *gorm.DB) (*Engine, error) {
	if db == nil {
		return nil, errors.New("authz engine: db is required")
	}
	return &Engine{db: db, log: logger.WithModule("authz")}, nil
}

// Authorize returns the allow/deny decision for the principal. It is a pure
// decision: no mutation, no audit write. Recording denials is the
// interception layer's job.
func (e *Engine) Authorize(ctx context.Context, p *auth.Principal, module, action string) bool {
	if !p.Resolved() {
		return false
	}

	// Legacy tier. A coarse role decides immediately; denials here do not
	// fall through to the fine-grained tier.
	switch p.CoarseRole {
	case models.RoleAdmin:
		return true
	case models.RoleResponsible:
		if _, reserved := reservedModules[module]; reserved {
			return action == "view"
		}
		return true
	case models.RoleTrainer:
		return action == "view"
	}

	// Fine-grained tier: reached only when the account carries no coarse role.
	if p.Role == nil {
		return false
	}
	if p.Role.Name == adminRoleName {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var role models.Role
	err := e.db.WithContext(ctx).Preload("Permissions").First(&role, p.Role.ID).Error
	if err != nil {
		// Fail closed: an unavailable permission store denies.
		e.log.Warn("role lookup failed, denying",
			zap.Uint("role_id", p.Role.ID),
			zap.String("module", module),
			zap.String("action", action),
			zap.Error(err),
		)
		return false
	}

	return role.HasPermission(module, action)
}

// Require is the guard form of Authorize: it returns a forbidden error
// carrying the missing (module, action) when the decision is deny.
func (e *Engine) Require(ctx context.Context, p *auth.Principal, module, action string) error {
	if e.Authorize(ctx, p, module, action) {
		return nil
	}
	return appErrors.NewForbidden(module, action)
}
