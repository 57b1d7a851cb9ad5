package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionModel is the archived export of one submitted session
type SubmissionModel struct {
	BaseModel
	SessionID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SubmittedBy     string          `gorm:"type:varchar(100);not null;index"`
	SubmittedAt     time.Time       `gorm:"not null;index"`
	TotalAssetValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Snapshot        []byte          `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for the model
func (SubmissionModel) TableName() string {
	return "submissions"
}

// SubmissionModelFromDomain maps a submission onto its row
func SubmissionModelFromDomain(s *intake.Submission) (*SubmissionModel, error) {
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	now := time.Now()
	return &SubmissionModel{
		BaseModel:       BaseModel{ID: s.ID, CreatedAt: now, UpdatedAt: now},
		SessionID:       s.SessionID,
		SubmittedBy:     s.SubmittedBy,
		SubmittedAt:     s.SubmittedAt,
		TotalAssetValue: s.TotalAssetValue,
		Snapshot:        snapshot,
	}, nil
}

// ToDomain converts the row back into a submission
func (m *SubmissionModel) ToDomain() (*intake.Submission, error) {
	var snap intake.SessionSnapshot
	if err := json.Unmarshal(m.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of submission %s: %w", m.ID, err)
	}
	return &intake.Submission{
		ID:              m.ID,
		SessionID:       m.SessionID,
		SubmittedBy:     m.SubmittedBy,
		SubmittedAt:     m.SubmittedAt,
		TotalAssetValue: m.TotalAssetValue,
		Snapshot:        snap,
	}, nil
}
