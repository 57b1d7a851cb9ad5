package intake

import (
	"io"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StepSummary is one entry of the progress indicator
type StepSummary struct {
	Index  int               `json:"index"`
	Name   string            `json:"name"`
	Title  string            `json:"title"`
	Status intake.StepStatus `json:"status"`
}

// SessionResponse is the full view of a wizard session
type SessionResponse struct {
	ID              uuid.UUID                      `json:"id"`
	Version         int                            `json:"version"`
	CurrentStep     int                            `json:"current_step"`
	CurrentStepName string                         `json:"current_step_name"`
	IsFirst         bool                           `json:"is_first"`
	IsLast          bool                           `json:"is_last"`
	Submitted       bool                           `json:"submitted"`
	SubmittedBy     string                         `json:"submitted_by,omitempty"`
	SubmittedAt     *time.Time                     `json:"submitted_at,omitempty"`
	Steps           []StepSummary                  `json:"steps"`
	Data            map[string]intake.StepSnapshot `json:"data"`
	TotalAssetValue decimal.Decimal                `json:"total_asset_value"`
	CreatedAt       time.Time                      `json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// ContinueResponse is the outcome of pressing Continue
type ContinueResponse struct {
	Advanced bool                    `json:"advanced"`
	Report   intake.ValidationReport `json:"report"`
	Session  *SessionResponse        `json:"session"`
}

// RecordValidationResponse lists the failing fields of one record
type RecordValidationResponse struct {
	Record intake.RecordID     `json:"record"`
	Valid  bool                `json:"valid"`
	Errors []intake.FieldError `json:"errors,omitempty"`
}

// SubmitResponse describes an accepted submission
type SubmitResponse struct {
	SubmissionID    uuid.UUID       `json:"submission_id"`
	SessionID       uuid.UUID       `json:"session_id"`
	SubmittedBy     string          `json:"submitted_by"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	TotalAssetValue decimal.Decimal `json:"total_asset_value"`
	Archived        bool            `json:"archived"`
}

// SubmissionResponse is an archived submission
type SubmissionResponse struct {
	ID              uuid.UUID               `json:"id"`
	SessionID       uuid.UUID               `json:"session_id"`
	SubmittedBy     string                  `json:"submitted_by"`
	SubmittedAt     time.Time               `json:"submitted_at"`
	TotalAssetValue decimal.Decimal         `json:"total_asset_value"`
	Snapshot        *intake.SessionSnapshot `json:"snapshot,omitempty"`
}

// UploadDocumentRequest carries one proof document
type UploadDocumentRequest struct {
	SessionID    uuid.UUID
	DocumentType string
	FileName     string
	Body         io.Reader
}

// DocumentResponse describes a stored proof document
type DocumentResponse struct {
	intake.StoredDocument
	Session *SessionResponse `json:"session"`
}

// ValidationFailedError carries the report of a step that blocked an
// operation
type ValidationFailedError struct {
	Report intake.ValidationReport
}

func (e *ValidationFailedError) Error() string {
	return intake.ErrValidationFailed.Message
}

func (e *ValidationFailedError) Unwrap() error {
	return intake.ErrValidationFailed
}

func toSessionResponse(s *intake.Session) *SessionResponse {
	snap := s.Snapshot()
	seq := s.Sequencer()

	resp := &SessionResponse{
		ID:              s.ID,
		Version:         s.GetVersion(),
		CurrentStep:     seq.Current(),
		CurrentStepName: seq.CurrentStep().Name,
		IsFirst:         seq.IsFirst(),
		IsLast:          seq.IsLast(),
		Submitted:       s.IsSubmitted(),
		SubmittedBy:     snap.SubmittedBy,
		SubmittedAt:     snap.SubmittedAt,
		Steps:           make([]StepSummary, 0, seq.Len()),
		Data:            snap.Steps,
		TotalAssetValue: decimal.Zero,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	for i, step := range seq.Steps() {
		resp.Steps = append(resp.Steps, StepSummary{
			Index:  i,
			Name:   step.Name,
			Title:  step.Title,
			Status: seq.StatusOf(i),
		})
	}
	for _, step := range snap.Steps {
		if step.Assets != nil {
			resp.TotalAssetValue = resp.TotalAssetValue.Add(step.Assets.TotalValue)
		}
	}
	return resp
}

func toSubmissionResponse(sub *intake.Submission, withSnapshot bool) SubmissionResponse {
	resp := SubmissionResponse{
		ID:              sub.ID,
		SessionID:       sub.SessionID,
		SubmittedBy:     sub.SubmittedBy,
		SubmittedAt:     sub.SubmittedAt,
		TotalAssetValue: sub.TotalAssetValue,
	}
	if withSnapshot {
		snap := sub.Snapshot
		resp.Snapshot = &snap
	}
	return resp
}
