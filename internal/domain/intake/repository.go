package intake

import (
	"context"

	"github.com/agricred/intake/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionRepository keeps live wizard sessions
type SessionRepository interface {
	// Save stores a new session
	Save(ctx context.Context, session *Session) error
	// View runs fn with the session locked. fn must not modify the session.
	// It returns ErrSessionNotFound for unknown or expired ids.
	View(ctx context.Context, id uuid.UUID, fn func(*Session) error) error
	// Update runs fn with exclusive access to the session. Events for one
	// session are applied one at a time through this method.
	Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) error
	// Delete removes the session
	Delete(ctx context.Context, id uuid.UUID) error
	// Count returns the number of live sessions
	Count(ctx context.Context) int
}

// SubmissionArchive keeps exported snapshots of submitted sessions
type SubmissionArchive interface {
	Store(ctx context.Context, submission *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) (*Submission, error)
	List(ctx context.Context, submittedBy string, filter shared.Filter) (shared.Paginated[Submission], error)
}
