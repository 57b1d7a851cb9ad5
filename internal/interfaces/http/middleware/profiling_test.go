package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profiledLabels(t *testing.T, cfg ProfilingConfig, route, target string) map[string]string {
	t.Helper()
	labels := map[string]string{}

	r := gin.New()
	r.Use(ProfilingWithConfig(cfg))
	r.Any(route, func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, target, nil))
	require.Equal(t, http.StatusOK, w.Code)
	return labels
}

func TestProfiling_LabelsStepRequests(t *testing.T) {
	labels := profiledLabels(t, DefaultProfilingConfig(),
		"/api/v1/intake/sessions/:id/steps/:step/forms/:form/fields/:field",
		"/api/v1/intake/sessions/5f0c/steps/contact/forms/contact/fields/mobileNumber",
	)

	assert.Equal(t, map[string]string{
		"controller": "intake/sessions",
		"route":      "/api/v1/intake/sessions/:id/steps/:step/forms/:form/fields/:field",
		"method":     http.MethodPut,
		"step":       "contact",
	}, labels)
}

func TestProfiling_Skips(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ProfilingConfig
		route  string
		target string
	}{
		{"health", DefaultProfilingConfig(), "/health", "/health"},
		{"swagger", DefaultProfilingConfig(), "/swagger/*any", "/swagger/index.html"},
		{"disabled", ProfilingConfig{}, "/api/v1/system/info", "/api/v1/system/info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, profiledLabels(t, tt.cfg, tt.route, tt.target))
		})
	}
}

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"":                                     "",
		"/api/v1/system/info":                  "system/info",
		"/api/v1/intake/sessions/:id":          "intake/sessions",
		"/api/v2/intake/submissions":           "intake/submissions",
		"/api/v1/intake/sessions/:id/steps/:s": "intake/sessions",
		"/swagger/*any":                        "swagger",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}
