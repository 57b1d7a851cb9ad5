package intake

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/persistence"
	"github.com/agricred/intake/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ============================================================================
// Mocks
// ============================================================================

// MockSubmissionArchive is a mock implementation of SubmissionArchive
type MockSubmissionArchive struct {
	mock.Mock
}

func (m *MockSubmissionArchive) Store(ctx context.Context, submission *intake.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionArchive) FindByID(ctx context.Context, id uuid.UUID) (*intake.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intake.Submission), args.Error(1)
}

func (m *MockSubmissionArchive) FindBySession(ctx context.Context, sessionID uuid.UUID) (*intake.Submission, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intake.Submission), args.Error(1)
}

func (m *MockSubmissionArchive) List(ctx context.Context, submittedBy string, filter shared.Filter) (shared.Paginated[intake.Submission], error) {
	args := m.Called(ctx, submittedBy, filter)
	return args.Get(0).(shared.Paginated[intake.Submission]), args.Error(1)
}

var _ intake.SubmissionArchive = (*MockSubmissionArchive)(nil)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingMetrics counts metric calls
type recordingMetrics struct {
	mu        sync.Mutex
	started   int
	dropped   int
	applied   []string
	continued []bool
	submitted []bool
}

func (r *recordingMetrics) SessionStarted(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingMetrics) SessionsDropped(_ context.Context, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped += n
}

func (r *recordingMetrics) EventApplied(_ context.Context, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, kind)
}

func (r *recordingMetrics) StepContinued(_ context.Context, _ string, advanced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.continued = append(r.continued, advanced)
}

func (r *recordingMetrics) Submitted(_ context.Context, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, ok)
}

// ============================================================================
// Fixtures
// ============================================================================

var testNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
)

type serviceFixture struct {
	service   *IntakeService
	sessions  *persistence.InMemorySessionRepository
	documents *storage.MemoryDocumentStore
	archive   *MockSubmissionArchive
	events    *MockEventPublisher
	metrics   *recordingMetrics
}

func newServiceFixture(t *testing.T, opts ...ServiceOption) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		sessions:  persistence.NewInMemorySessionRepository(0),
		documents: storage.NewMemoryDocumentStore("proofs"),
		archive:   new(MockSubmissionArchive),
		events:    new(MockEventPublisher),
		metrics:   &recordingMetrics{},
	}
	t.Cleanup(func() { _ = f.sessions.Close() })

	base := []ServiceOption{
		WithEventPublisher(f.events),
		WithMetrics(f.metrics),
		WithClock(func() time.Time { return testNow }),
		WithMaxUploadSize(1 << 10),
	}
	f.service = NewIntakeService(f.sessions, f.archive, f.documents, append(base, opts...)...)
	return f
}

func (f *serviceFixture) start(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := f.service.Start(context.Background())
	require.NoError(t, err)
	return resp.ID
}

// readyToSubmit moves a session to the final step with a valid final form
func (f *serviceFixture) readyToSubmit(t *testing.T, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := f.service.UpdateAsset(ctx, id, intake.StepProperty, string(intake.AssetTractor), intake.ValueField, "300000")
	require.NoError(t, err)
	_, err = f.service.Navigate(ctx, id, 7)
	require.NoError(t, err)
	_, err = f.service.Apply(ctx, id, intake.FieldChanged(intake.StepFinal, intake.FormRepayment, "gracePeriod", "6"))
	require.NoError(t, err)
}

// ============================================================================
// Session lifecycle
// ============================================================================

func TestIntakeService_Start(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.service.Start(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, 0, resp.CurrentStep)
	assert.Equal(t, intake.StepRegistration, resp.CurrentStepName)
	assert.True(t, resp.IsFirst)
	assert.False(t, resp.IsLast)
	assert.False(t, resp.Submitted)
	require.Len(t, resp.Steps, 8)
	assert.Equal(t, intake.StepStatusCurrent, resp.Steps[0].Status)
	assert.Len(t, resp.Data, 8)
	assert.True(t, decimal.Zero.Equal(resp.TotalAssetValue))
	assert.Equal(t, testNow, resp.CreatedAt)
	assert.Equal(t, 1, f.metrics.started)
	assert.Equal(t, 1, f.service.ActiveSessions(context.Background()))
}

func TestIntakeService_Start_RecordIDStrategy(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		f := newServiceFixture(t)
		resp, err := f.service.Start(context.Background())
		require.NoError(t, err)
		id := resp.Data[intake.StepGeneralInformation].Collections[intake.CollectionIncome].Records[0].ID
		assert.True(t, strings.HasPrefix(string(id), "row-"), "got %s", id)
	})

	t.Run("uuid", func(t *testing.T) {
		f := newServiceFixture(t, WithRecordIDs(RecordIDsUUID))
		resp, err := f.service.Start(context.Background())
		require.NoError(t, err)
		id := resp.Data[intake.StepGeneralInformation].Collections[intake.CollectionIncome].Records[0].ID
		_, parseErr := uuid.Parse(string(id))
		assert.NoError(t, parseErr)
	})
}

func TestIntakeService_Get_NotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, intake.ErrSessionNotFound)
}

func TestIntakeService_Abandon(t *testing.T) {
	f := newServiceFixture(t)
	id := f.start(t)

	require.NoError(t, f.service.Abandon(context.Background(), id))

	assert.Equal(t, 1, f.metrics.dropped)
	_, err := f.service.Get(context.Background(), id)
	assert.ErrorIs(t, err, intake.ErrSessionNotFound)
	assert.ErrorIs(t, f.service.Abandon(context.Background(), id), intake.ErrSessionNotFound)
}

// ============================================================================
// Events
// ============================================================================

func TestIntakeService_Apply(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.Apply(ctx, id, intake.FieldChanged(intake.StepRegistration, intake.FormAccount, "fullName", "Ravi"))
	require.NoError(t, err)
	assert.Equal(t, "Ravi", resp.Data[intake.StepRegistration].Forms[intake.FormAccount]["fullName"])

	resp, err = f.service.Apply(ctx, id, intake.RowAdded(intake.StepGeneralInformation, intake.CollectionIncome, nil))
	require.NoError(t, err)
	assert.Len(t, resp.Data[intake.StepGeneralInformation].Collections[intake.CollectionIncome].Records, 2)

	_, err = f.service.Apply(ctx, id, intake.FieldChanged(intake.StepRegistration, "nope", "fullName", "x"))
	assert.ErrorIs(t, err, intake.ErrUnknownSection)

	_, err = f.service.Apply(ctx, id, intake.FieldChanged("nope", intake.FormAccount, "fullName", "x"))
	assert.ErrorIs(t, err, intake.ErrUnknownStep)

	assert.Equal(t, []string{string(intake.EventFieldChanged), string(intake.EventRowAdded)}, f.metrics.applied)
}

func TestIntakeService_UpdateAsset(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.UpdateAsset(ctx, id, intake.StepProperty, string(intake.AssetTractor), intake.ValueField, "250000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250000).Equal(resp.TotalAssetValue))

	_, err = f.service.UpdateAsset(ctx, id, intake.StepProperty, "spaceship", intake.ValueField, "1")
	assert.ErrorIs(t, err, intake.ErrUnknownSection)

	_, err = f.service.UpdateAsset(ctx, id, intake.StepRegistration, string(intake.AssetTractor), intake.ValueField, "1")
	assert.ErrorIs(t, err, intake.ErrUnknownSection)
}

func TestIntakeService_Navigate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.Navigate(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CurrentStep)
	assert.Equal(t, intake.StepStatusCompleted, resp.Steps[2].Status)

	resp, err = f.service.Navigate(ctx, id, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CurrentStep)
}

func TestIntakeService_SetDerived(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.SetDerived(ctx, id, intake.StepFinal, intake.FormLoan, "amount", "₹25,000")
	require.NoError(t, err)
	assert.Equal(t, "₹25,000", resp.Data[intake.StepFinal].Forms[intake.FormLoan]["amount"])

	// the same field is not writable through a user event
	resp, err = f.service.Apply(ctx, id, intake.FieldChanged(intake.StepFinal, intake.FormLoan, "amount", "₹1"))
	require.NoError(t, err)
	assert.Equal(t, "₹25,000", resp.Data[intake.StepFinal].Forms[intake.FormLoan]["amount"])
}

func TestIntakeService_ConcurrentEvents(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Apply(ctx, id, intake.RowAdded(intake.StepProperty, intake.CollectionLand, nil))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	resp, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	records := resp.Data[intake.StepProperty].Collections[intake.CollectionLand].Records
	assert.Len(t, records, 26)

	seen := make(map[intake.RecordID]bool)
	for _, r := range records {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

// ============================================================================
// Validation / Continue
// ============================================================================

func TestIntakeService_Continue(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	t.Run("blocked by an invalid step", func(t *testing.T) {
		resp, err := f.service.Continue(ctx, id)
		require.NoError(t, err)
		assert.False(t, resp.Advanced)
		assert.False(t, resp.Report.Valid())
		assert.Equal(t, 0, resp.Session.CurrentStep)
	})

	t.Run("advances from a clean step", func(t *testing.T) {
		_, err := f.service.Navigate(ctx, id, 3)
		require.NoError(t, err)

		resp, err := f.service.Continue(ctx, id)
		require.NoError(t, err)
		assert.True(t, resp.Advanced, "report: %+v", resp.Report)
		assert.Equal(t, 4, resp.Session.CurrentStep)
	})

	assert.Equal(t, []bool{false, true}, f.metrics.continued)
}

func TestIntakeService_Validate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	report, err := f.service.Validate(ctx, id, intake.StepRegistration)
	require.NoError(t, err)
	assert.Equal(t, intake.StepRegistration, report.Step)
	assert.False(t, report.Valid())

	_, err = f.service.Validate(ctx, id, "nope")
	assert.ErrorIs(t, err, intake.ErrUnknownStep)

	resp, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Version)
}

func TestIntakeService_ValidateRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	row := resp.Data[intake.StepProperty].Collections[intake.CollectionLand].Records[0].ID

	result, err := f.service.ValidateRecord(ctx, id, intake.StepProperty, intake.CollectionLand, row)
	require.NoError(t, err)
	assert.Equal(t, row, result.Record)
	assert.Equal(t, result.Valid, len(result.Errors) == 0)

	missing, err := f.service.ValidateRecord(ctx, id, intake.StepProperty, intake.CollectionLand, "row-999")
	require.NoError(t, err)
	assert.True(t, missing.Valid)

	_, err = f.service.ValidateRecord(ctx, id, intake.StepProperty, "nope", row)
	assert.ErrorIs(t, err, intake.ErrUnknownSection)
}

// ============================================================================
// Submit
// ============================================================================

func TestIntakeService_Submit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)
	f.readyToSubmit(t, id)

	f.archive.On("Store", mock.Anything, mock.MatchedBy(func(s *intake.Submission) bool {
		return s.SessionID == id && s.SubmittedBy == "Rv-Thakur9"
	})).Return(nil).Once()
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == intake.EventTypeSessionSubmitted
	})).Return(nil).Once()

	resp, err := f.service.Submit(ctx, id, "Rv-Thakur9")
	require.NoError(t, err)

	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, testNow, resp.SubmittedAt)
	assert.True(t, decimal.NewFromInt(300000).Equal(resp.TotalAssetValue))
	assert.True(t, resp.Archived)
	assert.Equal(t, []bool{true}, f.metrics.submitted)

	session, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, session.Submitted)
	assert.Equal(t, "Rv-Thakur9", session.SubmittedBy)

	_, err = f.service.Apply(ctx, id, intake.Navigated(0))
	assert.ErrorIs(t, err, intake.ErrAlreadySubmitted)
	_, err = f.service.Submit(ctx, id, "Rv-Thakur9")
	assert.ErrorIs(t, err, intake.ErrAlreadySubmitted)

	f.archive.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestPullEvents(t *testing.T) {
	session := intake.NewAgriCredSession(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	event := shared.NewBaseDomainEvent("intake.test", "Session", session.ID, time.Now())
	session.AddDomainEvent(&event)

	events := pullEvents(session)

	require.Len(t, events, 1)
	assert.Equal(t, "intake.test", events[0].EventType())
	assert.Empty(t, session.GetDomainEvents())
}

func TestIntakeService_Submit_NotAtFinalStep(t *testing.T) {
	f := newServiceFixture(t)
	id := f.start(t)

	_, err := f.service.Submit(context.Background(), id, "Rv-Thakur9")

	assert.ErrorIs(t, err, intake.ErrNotAtFinalStep)
	f.archive.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	assert.Equal(t, []bool{false}, f.metrics.submitted)
}

func TestIntakeService_Submit_ValidationFailed(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)
	_, err := f.service.Navigate(ctx, id, 7)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, id, "Rv-Thakur9")

	assert.ErrorIs(t, err, intake.ErrValidationFailed)
	var vErr *ValidationFailedError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, intake.StepFinal, vErr.Report.Step)
	assert.False(t, vErr.Report.Valid())
	f.archive.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_ArchiveFailureKeepsSessionOpen(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)
	f.readyToSubmit(t, id)

	f.archive.On("Store", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	_, err := f.service.Submit(ctx, id, "Rv-Thakur9")
	require.Error(t, err)

	session, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.Submitted)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	f.archive.On("Store", mock.Anything, mock.Anything).Return(nil).Once()
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = f.service.Submit(ctx, id, "Rv-Thakur9")
	assert.NoError(t, err)
}

func TestIntakeService_Submit_WithoutArchive(t *testing.T) {
	sessions := persistence.NewInMemorySessionRepository(0)
	t.Cleanup(func() { _ = sessions.Close() })
	svc := NewIntakeService(sessions, nil, nil, WithClock(func() time.Time { return testNow }))
	f := &serviceFixture{service: svc}
	ctx := context.Background()
	id := f.start(t)
	f.readyToSubmit(t, id)

	resp, err := svc.Submit(ctx, id, "Rv-Thakur9")
	require.NoError(t, err)
	assert.False(t, resp.Archived)

	page, err := svc.ListSubmissions(ctx, "", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

// ============================================================================
// Proof documents
// ============================================================================

func TestIntakeService_UploadDocument(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	resp, err := f.service.UploadDocument(ctx, UploadDocumentRequest{
		SessionID:    id,
		DocumentType: string(intake.DocumentPANCard),
		FileName:     "pan card.png",
		Body:         bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, intake.DocumentPANCard, resp.Type)
	form := resp.Session.Data[intake.StepProof].Forms[intake.FormDocument]
	assert.Equal(t, string(intake.DocumentPANCard), form["documentType"])
	assert.Equal(t, resp.FileName, form["fileName"])

	data, contentType, ok := f.documents.Get(resp.Key)
	require.True(t, ok)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)
}

func TestIntakeService_UploadDocument_Rejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)

	tests := []struct {
		name    string
		docType string
		body    []byte
		session uuid.UUID
		want    error
	}{
		{"unknown document type", "passport", pdfBytes, id, intake.ErrInvalidDocumentType},
		{"unknown session", string(intake.DocumentAadhaarCard), pdfBytes, uuid.New(), intake.ErrSessionNotFound},
		{"empty file", string(intake.DocumentAadhaarCard), nil, id, intake.ErrEmptyDocument},
		{"too large", string(intake.DocumentAadhaarCard), append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), 2<<10)...), id, intake.ErrDocumentTooLarge},
		{"plain text", string(intake.DocumentAadhaarCard), []byte("definitely not a scan"), id, intake.ErrUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UploadDocument(ctx, UploadDocumentRequest{
				SessionID:    tt.session,
				DocumentType: tt.docType,
				FileName:     "proof",
				Body:         bytes.NewReader(tt.body),
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, f.documents.Len())
}

func TestIntakeService_UploadDocument_SubmittedSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.start(t)
	f.readyToSubmit(t, id)
	f.archive.On("Store", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
	_, err := f.service.Submit(ctx, id, "Rv-Thakur9")
	require.NoError(t, err)

	_, err = f.service.UploadDocument(ctx, UploadDocumentRequest{
		SessionID:    id,
		DocumentType: string(intake.DocumentAadhaarCard),
		FileName:     "aadhaar.pdf",
		Body:         bytes.NewReader(pdfBytes),
	})
	assert.ErrorIs(t, err, intake.ErrAlreadySubmitted)
	assert.Equal(t, 0, f.documents.Len())
}

// ============================================================================
// Archive reads
// ============================================================================

func TestIntakeService_ListSubmissions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	filter := shared.DefaultFilter()

	sub := intake.Submission{
		ID:              uuid.New(),
		SessionID:       uuid.New(),
		SubmittedBy:     "Rv-Thakur9",
		SubmittedAt:     testNow,
		TotalAssetValue: decimal.NewFromInt(1000),
	}
	f.archive.On("List", mock.Anything, "Rv-Thakur9", filter).
		Return(shared.NewPaginated([]intake.Submission{sub}, 1, 1, 20), nil)

	page, err := f.service.ListSubmissions(ctx, "Rv-Thakur9", filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sub.ID, page.Items[0].ID)
	assert.Nil(t, page.Items[0].Snapshot)
	assert.Equal(t, int64(1), page.Total)
}

func TestIntakeService_GetSubmission(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	missing := uuid.New()

	f.archive.On("FindByID", mock.Anything, missing).Return(nil, intake.ErrSubmissionNotFound)

	_, err := f.service.GetSubmission(ctx, missing)
	assert.ErrorIs(t, err, intake.ErrSubmissionNotFound)
}
