package handler

import (
	appintake "github.com/agricred/intake/internal/application/intake"
	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SetValueRequest sets one field. Value is a JSON scalar, or a list of
// scalars for multi-select fields; an empty string clears the field.
type SetValueRequest struct {
	Value any `json:"value"`
}

func (r SetValueRequest) valid() bool {
	list, ok := r.Value.([]any)
	if !ok {
		return isScalar(r.Value)
	}
	for _, v := range list {
		if !isScalar(v) {
			return false
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return false
	}
	return true
}

// AddRowRequest optionally overrides the defaults of a new collection row
type AddRowRequest struct {
	Defaults map[string]any `json:"defaults"`
}

// NavigateRequest jumps to a step index. Indexes outside the step table
// leave the session where it is.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required"`
}

// UploadDocumentForm is the non-file part of a proof upload
type UploadDocumentForm struct {
	DocumentType string `form:"document_type" binding:"required,max=64"`
}

// SessionView is a session with its asset total formatted for display
type SessionView struct {
	*appintake.SessionResponse
	TotalAssetValueDisplay string `json:"total_asset_value_display"`
}

// ContinueView is the Continue outcome with a display-ready session
type ContinueView struct {
	Advanced bool                    `json:"advanced"`
	Report   intake.ValidationReport `json:"report"`
	Session  SessionView             `json:"session"`
}

// DocumentView is a stored proof with the updated session
type DocumentView struct {
	intake.StoredDocument
	Session SessionView `json:"session"`
}

// SubmitView is an accepted submission with a display-ready total
type SubmitView struct {
	*appintake.SubmitResponse
	TotalAssetValueDisplay string `json:"total_asset_value_display"`
}

func (h *IntakeHandler) sessionView(s *appintake.SessionResponse) SessionView {
	return SessionView{
		SessionResponse:        s,
		TotalAssetValueDisplay: h.money.Format(s.TotalAssetValue),
	}
}

// bindList reads pagination parameters on top of the defaults
func bindList(c *gin.Context) (dto.ListRequest, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	return req, nil
}
