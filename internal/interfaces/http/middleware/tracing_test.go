package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing_TagsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(RequestID(), Tracing("intake-test", true))
	r.GET("/intake/sessions/:id", SpanAttributes(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/intake/sessions/"+id.String(), nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set(UserIDHeader, "officer-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "req-1", attrs["request_id"])
	assert.Equal(t, id.String(), attrs["intake.session_id"])
	assert.Equal(t, "officer-7", attrs["user_id"])
}

func TestTracing_Disabled(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(Tracing("intake-test", false), SpanAttributes()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
