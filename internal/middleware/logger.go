package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// RequestID reuses an inbound X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// Logger writes one line per request. Health probes are skipped.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/readyz" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		user := "-"
		if id, err := GetUserID(c); err == nil {
			user = id.String()
		}
		line := "req=%s %s %s status=%d took=%s user=%s"
		args := []any{GetRequestID(c), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond), user}
		if caseID := c.Param("id"); caseID != "" {
			line += " id=%s"
			args = append(args, caseID)
		}
		if len(c.Errors) > 0 {
			line += " errors=%q"
			args = append(args, c.Errors.String())
		}
		log.Printf(line, args...)
	}
}

// Recovery turns a handler panic into a 500 envelope and logs the stack
// under the request ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("middleware.Recovery: req=%s panic: %v\n%s", GetRequestID(c), r, debug.Stack())
				abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
			}
		}()
		c.Next()
	}
}
