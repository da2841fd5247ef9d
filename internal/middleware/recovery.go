package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akademi/edutrack/pkg/logger"
	"github.com/akademi/edutrack/pkg/response"
)

// ErrorLogSink receives captured failures for durable storage.
// Implementations persist asynchronously; a nil sink disables capture.
type ErrorLogSink interface {
	Record(userID *uint, endpoint, exceptionType, message, stacktrace string)
}

// Recovery converts panics into a 500 response, logs the error, and hands it
// to the error log sink with the stack trace and best-effort actor.
func Recovery(sink ErrorLogSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				if sink != nil {
					var userID *uint
					if principal, ok := PrincipalFrom(c); ok && principal.UserID != nil {
						id := *principal.UserID
						userID = &id
					}
					sink.Record(userID, c.Request.URL.Path, "panic", fmt.Sprint(r), string(stack))
				}
				// Avoid leaking internals to clients
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Success(c, http.StatusNotFound, gin.H{"error": fmt.Sprintf("route %s not found", c.Request.URL.Path)})
}
