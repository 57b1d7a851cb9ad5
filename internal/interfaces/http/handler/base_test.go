package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appintake "github.com/agricred/intake/internal/application/intake"
	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/interfaces/http/dto"
	"github.com/agricred/intake/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetRequestID(t *testing.T) {
	t.Run("from context", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set("request_id", "ctx-id")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("from header", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty", func(t *testing.T) {
		c, _ := newTestContext()
		assert.Empty(t, getRequestID(c))
	})
}

func TestGetSubmitter(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Rv-Thakur9", "Rv-Thakur9", true},
		{"  padded  ", "padded", true},
		{"", "", false},
		{"   ", "", false},
		{strings.Repeat("u", middleware.MaxUserIDLength+1), "", false},
	}
	for _, tt := range tests {
		c, _ := newTestContext()
		c.Request.Header.Set(middleware.UserIDHeader, tt.header)

		got, ok := getSubmitter(c)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got)
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}
	report := intake.ValidationReport{
		Step: intake.StepFinal,
		Sections: []intake.SectionReport{{
			Section: intake.FormRepayment,
			Errors:  []intake.FieldError{{Field: "type", Code: "required", Message: "Repayment Type is required"}},
		}},
	}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain error", intake.ErrSessionNotFound, http.StatusNotFound, dto.ErrCodeSessionNotFound},
		{"wrapped domain error", fmt.Errorf("apply: %w", intake.ErrAlreadySubmitted), http.StatusConflict, dto.ErrCodeAlreadySubmitted},
		{"validation report", &appintake.ValidationFailedError{Report: report}, http.StatusUnprocessableEntity, dto.ErrCodeValidationFailed},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			c.Set("request_id", "req-1")

			h.HandleError(c, tt.err)

			require.Equal(t, tt.status, w.Code)
			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code      string                   `json:"code"`
					Message   string                   `json:"message"`
					RequestID string                   `json:"request_id"`
					Details   *intake.ValidationReport `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.NotContains(t, resp.Error.Message, "disk on fire")

			if tt.code == dto.ErrCodeValidationFailed {
				require.NotNil(t, resp.Error.Details)
				assert.Equal(t, report, *resp.Error.Details)
			}
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, nil)

	assert.Equal(t, 0, w.Body.Len())
}
