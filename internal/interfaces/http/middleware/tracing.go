package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxUserIDLength caps the user id copied onto spans
const MaxUserIDLength = 100

// Tracing starts a server span per request through otelgin. It is a
// pass-through when disabled.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(serviceName)
}

// SpanAttributes tags the active span. It runs after routing so path
// parameters are known.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if id, err := uuid.Parse(c.Param("id")); err == nil {
				span.SetAttributes(attribute.String("intake.session_id", id.String()))
			}
			if user := c.GetHeader(UserIDHeader); user != "" && len(user) <= MaxUserIDLength {
				span.SetAttributes(attribute.String("user_id", user))
			}
		}
		c.Next()
	}
}
