package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Submission is the archived record of a submitted session
type Submission struct {
	ID              uuid.UUID
	SessionID       uuid.UUID
	SubmittedBy     string
	SubmittedAt     time.Time
	TotalAssetValue decimal.Decimal
	Snapshot        SessionSnapshot
}

// NewSubmission wraps an exported snapshot for archiving
func NewSubmission(snap SessionSnapshot) *Submission {
	sub := &Submission{
		ID:          uuid.New(),
		SessionID:   snap.SessionID,
		SubmittedBy: snap.SubmittedBy,
		Snapshot:    snap,
	}
	if snap.SubmittedAt != nil {
		sub.SubmittedAt = *snap.SubmittedAt
	}
	for _, step := range snap.Steps {
		if step.Assets != nil {
			sub.TotalAssetValue = sub.TotalAssetValue.Add(step.Assets.TotalValue)
		}
	}
	return sub
}
