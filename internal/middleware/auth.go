package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/response"
)

const (
	CtxPrincipalKey = "authPrincipal"
	CtxUserIDKey    = "userID"
)

// Auth resolves the request's bearer token into a Principal and stores it in
// the request context. Requests that do not resolve are rejected with 401;
// downstream handlers can rely on a resolved principal being present.
func Auth(resolver *iauth.PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := resolver.ResolveFromHeader(c.Request.Context(), c.GetHeader("Authorization"))
		if principal == nil {
			// Normalise all resolution failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxPrincipalKey, principal)
		if principal.UserID != nil {
			c.Set(CtxUserIDKey, *principal.UserID)
		}

		c.Next()
	}
}

// PrincipalFrom extracts the resolved principal placed by Auth. The second
// return is false for unauthenticated requests (routes mounted outside Auth).
func PrincipalFrom(c *gin.Context) (*iauth.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*iauth.Principal)
	return principal, ok && principal != nil
}
