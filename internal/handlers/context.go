package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentPrincipal returns the principal the auth middleware resolved, or nil
// on routes mounted outside it.
func currentPrincipal(c *gin.Context) *auth.Principal {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return principal
}
