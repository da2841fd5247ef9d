package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/akademi/edutrack/internal/models"
)

// maxCapturedBody bounds how much of a request/response body is persisted
// per API log row.
const maxCapturedBody = 4096

// ApiLogSink receives completed request/response records. Implementations
// are expected to persist asynchronously.
type ApiLogSink interface {
	Record(entry models.ApiLog)
}

// skipAPILogPaths are high-frequency or sensitive endpoints that are never
// captured.
var skipAPILogPaths = map[string]struct{}{
	"/health":         {},
	"/metrics":        {},
	"/api/auth/login": {},
}

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.buf.Len() < maxCapturedBody {
		w.buf.Write(b[:min(len(b), maxCapturedBody-w.buf.Len())])
	}
	return w.ResponseWriter.Write(b)
}

// RequestLog captures each API call (endpoint, caller, bodies, latency) and
// hands it to the sink. Bodies are truncated and only stored when they are
// valid JSON, keeping the log table queryable.
func RequestLog(sink ApiLogSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil {
			c.Next()
			return
		}
		if _, skip := skipAPILogPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxCapturedBody))
			rest, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), bytes.NewReader(rest)))
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		start := time.Now()
		c.Next()

		entry := models.ApiLog{
			Endpoint:     c.Request.URL.Path,
			Method:       c.Request.Method,
			StatusCode:   capture.Status(),
			RequestBody:  jsonBody(requestBody),
			ResponseBody: jsonBody(capture.buf.Bytes()),
			DurationMs:   time.Since(start).Milliseconds(),
			IPAddress:    c.ClientIP(),
		}
		if principal, ok := PrincipalFrom(c); ok {
			entry.UserEmail = principal.Email
		}

		sink.Record(entry)
	}
}

// jsonBody returns the payload when it is self-contained JSON, nil otherwise.
// Truncated JSON fails validation and is dropped rather than stored broken.
func jsonBody(b []byte) datatypes.JSON {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return datatypes.JSON(b)
}
