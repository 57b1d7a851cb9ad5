package intake

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionSnapshot is the plain-data export of a session, keyed by step name
type SessionSnapshot struct {
	SessionID   uuid.UUID               `json:"session_id" yaml:"session_id"`
	CurrentStep int                     `json:"current_step" yaml:"current_step"`
	Steps       map[string]StepSnapshot `json:"steps" yaml:"steps"`
	SubmittedAt *time.Time              `json:"submitted_at,omitempty" yaml:"submitted_at,omitempty"`
	SubmittedBy string                  `json:"submitted_by,omitempty" yaml:"submitted_by,omitempty"`
}

// StepSnapshot is the data fragment owned by one step
type StepSnapshot struct {
	Index       int                           `json:"index" yaml:"index"`
	Name        string                        `json:"name" yaml:"name"`
	Title       string                        `json:"title" yaml:"title"`
	Status      StepStatus                    `json:"status" yaml:"status"`
	Forms       map[string]map[string]any     `json:"forms,omitempty" yaml:"forms,omitempty"`
	Collections map[string]CollectionSnapshot `json:"collections,omitempty" yaml:"collections,omitempty"`
	Assets      *LedgerSnapshot               `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// CollectionSnapshot lists the records of one collection in order
type CollectionSnapshot struct {
	Policy  DeletionPolicy `json:"policy" yaml:"policy"`
	Records []Record       `json:"records" yaml:"records"`
}

// LedgerSnapshot holds every asset category and the derived total
type LedgerSnapshot struct {
	Categories map[AssetCategory]map[string]any `json:"categories" yaml:"categories"`
	TotalValue decimal.Decimal                  `json:"total_value" yaml:"total_value"`
}

// StepNames returns the snapshot's step names ordered by step index
func (s SessionSnapshot) StepNames() []string {
	names := make([]string, len(s.Steps))
	for name, step := range s.Steps {
		if step.Index >= 0 && step.Index < len(names) {
			names[step.Index] = name
		}
	}
	return names
}

func snapshotLedger(l Ledger) *LedgerSnapshot {
	categories := make(map[AssetCategory]map[string]any, len(AssetCategories()))
	for _, e := range l.Entries() {
		categories[e.Category] = e.Fields
	}
	return &LedgerSnapshot{Categories: categories, TotalValue: l.TotalValue()}
}
