package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation identifier between client and server.
const RequestIDHeader = "X-Request-ID"

// CtxRequestIDKey locates the request identifier on the Gin context.
const CtxRequestIDKey = "requestID"

// RequestID assigns each request a correlation identifier, honouring one
// supplied by the client. The identifier is echoed on the response and made
// available to downstream handlers and the access log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the correlation identifier assigned to the request.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(CtxRequestIDKey)
}
