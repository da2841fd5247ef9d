package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/metrics"
	"github.com/akademi/edutrack/pkg/response"
)

// deniedAction is the audit action recorded for requests that fail the
// permission check.
const deniedAction = "PERMISSION_DENIED"

// RequirePermission checks that the authenticated principal may perform
// (module, action) before the handler runs. Denials are written to the
// activity log asynchronously so the 403 is never delayed by the audit store.
func RequirePermission(engine *authz.Engine, recorder authz.ActivityRecorder, module, action string) gin.HandlerFunc {
	capability := module + ":" + action

	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !engine.Authorize(c.Request.Context(), principal, module, action) {
			metrics.PermissionChecks.WithLabelValues(module, action, "denied").Inc()
			if recorder != nil {
				var actorID *uint
				if principal.UserID != nil {
					id := *principal.UserID
					actorID = &id
				}
				recorder.Record(actorID, deniedAction, "Authorization", nil,
					principal.Email+" denied "+capability)
			}
			response.Error(c, errors.NewForbidden(module, action))
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(module, action, "allowed").Inc()
		c.Next()
	}
}
