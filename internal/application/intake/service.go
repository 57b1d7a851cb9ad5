// Package intake runs AgriCred wizard sessions on behalf of the HTTP
// layer. It owns session lifecycle, proof uploads and submission.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record id strategies
const (
	RecordIDsSequence = "sequence"
	RecordIDsUUID     = "uuid"
)

// Metrics receives wizard activity. telemetry.WizardMetrics implements it.
type Metrics interface {
	SessionStarted(ctx context.Context)
	SessionsDropped(ctx context.Context, n int)
	EventApplied(ctx context.Context, kind string)
	StepContinued(ctx context.Context, step string, advanced bool)
	Submitted(ctx context.Context, ok bool, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) SessionStarted(context.Context)                 {}
func (noopMetrics) SessionsDropped(context.Context, int)           {}
func (noopMetrics) EventApplied(context.Context, string)           {}
func (noopMetrics) StepContinued(context.Context, string, bool)    {}
func (noopMetrics) Submitted(context.Context, bool, time.Duration) {}

// ServiceOption configures an IntakeService
type ServiceOption func(*IntakeService)

// WithEventPublisher publishes session domain events after submission
func WithEventPublisher(p shared.EventPublisher) ServiceOption {
	return func(s *IntakeService) { s.events = p }
}

// WithMetrics records wizard activity
func WithMetrics(m Metrics) ServiceOption {
	return func(s *IntakeService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *IntakeService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *IntakeService) { s.now = now }
}

// WithRecordIDs selects how collection record ids are generated
func WithRecordIDs(strategy string) ServiceOption {
	return func(s *IntakeService) { s.recordIDs = strategy }
}

// WithMaxUploadSize caps the size of one proof document
func WithMaxUploadSize(n int64) ServiceOption {
	return func(s *IntakeService) { s.maxUploadSize = n }
}

// IntakeService drives wizard sessions. Sessions live in the session
// repository; every mutation goes through SessionRepository.Update so
// events of one session are applied one at a time.
type IntakeService struct {
	sessions      intake.SessionRepository
	archive       intake.SubmissionArchive
	documents     intake.DocumentStore
	events        shared.EventPublisher
	metrics       Metrics
	logger        *zap.Logger
	now           func() time.Time
	recordIDs     string
	maxUploadSize int64
}

// NewIntakeService creates an IntakeService. archive and documents may be
// nil, which disables archiving and proof uploads respectively.
func NewIntakeService(
	sessions intake.SessionRepository,
	archive intake.SubmissionArchive,
	documents intake.DocumentStore,
	opts ...ServiceOption,
) *IntakeService {
	s := &IntakeService{
		sessions:      sessions,
		archive:       archive,
		documents:     documents,
		metrics:       noopMetrics{},
		logger:        zap.NewNop(),
		now:           time.Now,
		recordIDs:     RecordIDsSequence,
		maxUploadSize: 10 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Steps returns the step table new sessions are built from
func (s *IntakeService) Steps() []intake.StepDefinition {
	return intake.AgriCredSteps(s.now().Year())
}

// Start opens a new session positioned at the first step
func (s *IntakeService) Start(ctx context.Context) (*SessionResponse, error) {
	now := s.now()
	session := intake.NewSession(intake.AgriCredSteps(now.Year()), s.idGenerator())
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.SessionStarted(ctx)
	s.log(ctx).Info("intake session started", zap.String("session_id", session.ID.String()))
	return toSessionResponse(session), nil
}

func (s *IntakeService) idGenerator() intake.IDGenerator {
	if s.recordIDs == RecordIDsUUID {
		return intake.UUIDGenerator{}
	}
	return intake.NewSequenceGenerator("row")
}

// Get returns the current state of a session
func (s *IntakeService) Get(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	var resp *SessionResponse
	err := s.sessions.View(ctx, id, func(session *intake.Session) error {
		resp = toSessionResponse(session)
		return nil
	})
	return resp, err
}

// Abandon drops a session
func (s *IntakeService) Abandon(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.SessionsDropped(ctx, 1)
	s.log(ctx).Info("intake session abandoned", zap.String("session_id", id.String()))
	return nil
}

// Apply performs one user event on a session
func (s *IntakeService) Apply(ctx context.Context, id uuid.UUID, event intake.Event) (*SessionResponse, error) {
	var resp *SessionResponse
	err := s.sessions.Update(ctx, id, func(session *intake.Session) error {
		if err := session.Apply(event); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.EventApplied(ctx, string(event.Kind))
	return resp, nil
}

// UpdateAsset sets one field of an asset category. Unknown categories are
// rejected here because the request addressed a section that does not exist.
func (s *IntakeService) UpdateAsset(ctx context.Context, id uuid.UUID, step, category, field string, value any) (*SessionResponse, error) {
	c, err := intake.ParseAssetCategory(category)
	if err != nil {
		return nil, intake.ErrUnknownSection
	}
	return s.Apply(ctx, id, intake.AssetUpdated(step, c, field, value))
}

// Navigate jumps to a step. Out of range indexes leave the session as is.
func (s *IntakeService) Navigate(ctx context.Context, id uuid.UUID, index int) (*SessionResponse, error) {
	return s.Apply(ctx, id, intake.Navigated(index))
}

// SetDerived writes a read-only form field
func (s *IntakeService) SetDerived(ctx context.Context, id uuid.UUID, step, form, field string, value any) (*SessionResponse, error) {
	var resp *SessionResponse
	err := s.sessions.Update(ctx, id, func(session *intake.Session) error {
		if err := session.SetDerivedField(step, form, field, value); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	return resp, err
}

// Continue validates the current step and advances when it is clean
func (s *IntakeService) Continue(ctx context.Context, id uuid.UUID) (*ContinueResponse, error) {
	var resp *ContinueResponse
	err := s.sessions.Update(ctx, id, func(session *intake.Session) error {
		before := session.Sequencer().Current()
		report, _ := session.Continue()
		resp = &ContinueResponse{
			Advanced: session.Sequencer().Current() != before,
			Report:   report,
			Session:  toSessionResponse(session),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.StepContinued(ctx, resp.Report.Step, resp.Advanced)
	return resp, nil
}

// Validate checks one step without changing the session
func (s *IntakeService) Validate(ctx context.Context, id uuid.UUID, step string) (*intake.ValidationReport, error) {
	var report intake.ValidationReport
	err := s.sessions.View(ctx, id, func(session *intake.Session) error {
		var err error
		report, err = session.ValidateStep(step)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ValidateRecord checks a single collection record
func (s *IntakeService) ValidateRecord(ctx context.Context, id uuid.UUID, step, collection string, record intake.RecordID) (*RecordValidationResponse, error) {
	var errs []intake.FieldError
	err := s.sessions.View(ctx, id, func(session *intake.Session) error {
		var err error
		errs, err = session.ValidateRecord(step, collection, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &RecordValidationResponse{Record: record, Valid: len(errs) == 0, Errors: errs}, nil
}

// Submit validates the final step, archives the exported snapshot and
// marks the session submitted. The session is only marked once the
// archive has accepted the submission.
func (s *IntakeService) Submit(ctx context.Context, id uuid.UUID, submitter string) (*SubmitResponse, error) {
	var (
		sub     *intake.Submission
		events  []shared.DomainEvent
		elapsed time.Duration
	)
	err := s.sessions.Update(ctx, id, func(session *intake.Session) error {
		report, err := session.CheckSubmit()
		if errors.Is(err, intake.ErrValidationFailed) {
			return &ValidationFailedError{Report: report}
		}
		if err != nil {
			return err
		}

		at := s.now()
		sub = intake.NewSubmission(session.Export(submitter, at))
		if s.archive != nil {
			if err := s.archive.Store(ctx, sub); err != nil {
				return fmt.Errorf("failed to archive submission: %w", err)
			}
		}
		if _, _, err := session.Submit(submitter, at); err != nil {
			return err
		}
		events = pullEvents(session)
		elapsed = at.Sub(session.CreatedAt)
		return nil
	})
	if err != nil {
		s.metrics.Submitted(ctx, false, 0)
		return nil, err
	}
	s.metrics.Submitted(ctx, true, elapsed)

	if s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.log(ctx).Warn("failed to publish submission events",
				zap.String("session_id", id.String()),
				zap.Error(err),
			)
		}
	}

	s.log(ctx).Info("intake session submitted",
		zap.String("session_id", id.String()),
		zap.String("submission_id", sub.ID.String()),
		zap.String("submitted_by", submitter),
	)
	return &SubmitResponse{
		SubmissionID:    sub.ID,
		SessionID:       sub.SessionID,
		SubmittedBy:     sub.SubmittedBy,
		SubmittedAt:     sub.SubmittedAt,
		TotalAssetValue: sub.TotalAssetValue,
		Archived:        s.archive != nil,
	}, nil
}

// UploadDocument stores a proof document and records its file name on the
// proof step. The file type is sniffed from the content, not taken from
// the client.
func (s *IntakeService) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*DocumentResponse, error) {
	if s.documents == nil {
		return nil, shared.NewDomainError("UPLOADS_DISABLED", "Document uploads are not configured")
	}
	docType := intake.DocumentType(req.DocumentType)
	if !docType.IsValid() {
		return nil, intake.ErrInvalidDocumentType
	}

	// fail fast before reading the body
	err := s.sessions.View(ctx, req.SessionID, func(session *intake.Session) error {
		if session.IsSubmitted() {
			return intake.ErrAlreadySubmitted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, intake.ErrEmptyDocument
	case int64(len(data)) > s.maxUploadSize:
		return nil, intake.ErrDocumentTooLarge
	}

	contentType, ok := sniffDocument(data)
	if !ok {
		return nil, intake.ErrUnsupportedFile
	}

	stored, err := s.documents.Store(ctx, intake.DocumentUpload{
		SessionID:   req.SessionID,
		Type:        docType,
		FileName:    req.FileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	var resp *SessionResponse
	err = s.sessions.Update(ctx, req.SessionID, func(session *intake.Session) error {
		if err := session.Apply(intake.FieldChanged(intake.StepProof, intake.FormDocument, "documentType", string(docType))); err != nil {
			return err
		}
		if err := session.SetDerivedField(intake.StepProof, intake.FormDocument, "fileName", stored.FileName); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		if delErr := s.documents.Delete(ctx, stored.Key); delErr != nil {
			s.log(ctx).Warn("failed to remove orphaned document",
				zap.String("key", stored.Key),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.log(ctx).Info("proof document stored",
		zap.String("session_id", req.SessionID.String()),
		zap.String("document_type", string(docType)),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)
	return &DocumentResponse{StoredDocument: stored, Session: resp}, nil
}

func sniffDocument(data []byte) (string, bool) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if intake.IsAcceptedDocumentMIME(m.String()) {
			return m.String(), true
		}
	}
	return "", false
}

// GetSubmission returns an archived submission with its snapshot
func (s *IntakeService) GetSubmission(ctx context.Context, id uuid.UUID) (*SubmissionResponse, error) {
	if s.archive == nil {
		return nil, intake.ErrSubmissionNotFound
	}
	sub, err := s.archive.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSubmissionResponse(sub, true)
	return &resp, nil
}

// ListSubmissions pages through archived submissions, optionally
// restricted to one submitter
func (s *IntakeService) ListSubmissions(ctx context.Context, submittedBy string, filter shared.Filter) (shared.Paginated[SubmissionResponse], error) {
	if s.archive == nil {
		return shared.NewPaginated([]SubmissionResponse{}, 0, filter.Page, filter.PageSize), nil
	}
	page, err := s.archive.List(ctx, submittedBy, filter)
	if err != nil {
		return shared.Paginated[SubmissionResponse]{}, err
	}
	items := make([]SubmissionResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toSubmissionResponse(&page.Items[i], false)
	}
	return shared.Paginated[SubmissionResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ActiveSessions returns the number of live sessions
func (s *IntakeService) ActiveSessions(ctx context.Context) int {
	return s.sessions.Count(ctx)
}

// pullEvents takes the pending domain events off an aggregate
func pullEvents(agg shared.AggregateRoot) []shared.DomainEvent {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	return events
}

func (s *IntakeService) log(ctx context.Context) *zap.Logger {
	log := logger.WithTraceContext(ctx, s.logger)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	return log
}
