package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appintake "github.com/agricred/intake/internal/application/intake"
	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/infrastructure/config"
	"github.com/agricred/intake/internal/infrastructure/persistence"
	"github.com/agricred/intake/internal/infrastructure/persistence/models"
	"github.com/agricred/intake/internal/infrastructure/storage"
	"github.com/agricred/intake/internal/interfaces/http/dto"
	"github.com/agricred/intake/internal/interfaces/http/middleware"
	"github.com/agricred/intake/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testNow  = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
)

// ============================================================================
// Fixtures
// ============================================================================

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		RequestID string          `json:"request_id"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
	Meta *dto.Meta `json:"meta"`
}

type sessionBody struct {
	ID                     uuid.UUID                      `json:"id"`
	CurrentStep            int                            `json:"current_step"`
	Submitted              bool                           `json:"submitted"`
	Data                   map[string]intake.StepSnapshot `json:"data"`
	TotalAssetValueDisplay string                         `json:"total_asset_value_display"`
}

type apiFixture struct {
	engine    *gin.Engine
	sessions  *persistence.InMemorySessionRepository
	documents *storage.MemoryDocumentStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.SubmissionModel{}))

	f := &apiFixture{
		sessions:  persistence.NewInMemorySessionRepository(0),
		documents: storage.NewMemoryDocumentStore("proofs"),
	}
	t.Cleanup(func() { _ = f.sessions.Close() })

	service := appintake.NewIntakeService(f.sessions, persistence.NewGormSubmissionArchive(db), f.documents,
		appintake.WithClock(func() time.Time { return testNow }),
		appintake.WithMaxUploadSize(1<<10),
	)
	h := NewIntakeHandler(service, config.ThemeConfig{AppTitle: "AgriCred", PrimaryColor: "#2e7d32"}, "en-IN")

	middleware.SetupValidator()
	f.engine = gin.New()
	f.engine.Use(middleware.RequestID())
	router.NewRouter(f.engine).Register(h.Routes()).Setup()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (f *apiFixture) start(t *testing.T) sessionBody {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/intake/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSession(t, resp)
}

func decodeSession(t *testing.T, resp apiResponse) sessionBody {
	t.Helper()
	var s sessionBody
	require.NoError(t, json.Unmarshal(resp.Data, &s))
	return s
}

func sessionPath(id uuid.UUID, rest string) string {
	return "/intake/sessions/" + id.String() + rest
}

// ============================================================================
// Steps and theme
// ============================================================================

func TestIntakeHandler_ListSteps(t *testing.T) {
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/intake/steps", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var steps []intake.StepDefinition
	require.NoError(t, json.Unmarshal(resp.Data, &steps))
	require.Len(t, steps, 8)
	assert.Equal(t, intake.StepRegistration, steps[0].Name)
	assert.Equal(t, intake.StepFinal, steps[7].Name)
}

func TestIntakeHandler_GetTheme(t *testing.T) {
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/intake/theme", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var theme config.ThemeConfig
	require.NoError(t, json.Unmarshal(resp.Data, &theme))
	assert.Equal(t, "AgriCred", theme.AppTitle)
}

// ============================================================================
// Session lifecycle
// ============================================================================

func TestIntakeHandler_StartAndGet(t *testing.T) {
	f := newAPIFixture(t)

	s := f.start(t)
	assert.Equal(t, 0, s.CurrentStep)
	assert.Equal(t, "₹0.00", s.TotalAssetValueDisplay)
	assert.Len(t, s.Data, 8)

	w, resp := f.do(t, http.MethodGet, sessionPath(s.ID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, s.ID, decodeSession(t, resp).ID)
}

func TestIntakeHandler_GetSession_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		w, resp := f.do(t, http.MethodGet, "/intake/sessions/"+id, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeSessionNotFound, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	}
}

func TestIntakeHandler_AbandonSession(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, _ := f.do(t, http.MethodDelete, sessionPath(s.ID, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = f.do(t, http.MethodGet, sessionPath(s.ID, ""), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============================================================================
// Events
// ============================================================================

func TestIntakeHandler_SetField(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodPut,
		sessionPath(s.ID, "/steps/registration/forms/account/fields/fullName"),
		SetValueRequest{Value: "Ramesh Kumar"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeSession(t, resp)
	assert.Equal(t, "Ramesh Kumar", got.Data[intake.StepRegistration].Forms[intake.FormAccount]["fullName"])

	t.Run("unknown step", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/nowhere/forms/account/fields/fullName"), SetValueRequest{Value: "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeUnknownStep, resp.Error.Code)
	})

	t.Run("object value", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/general-information/forms/profile/fields/crops"),
			json.RawMessage(`{"value": {"rice": true}}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalid, resp.Error.Code)
	})

	t.Run("list value", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/general-information/forms/profile/fields/crops"),
			json.RawMessage(`{"value": ["rice", "dairy"]}`))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeSession(t, resp)
		assert.Equal(t, []any{"rice", "dairy"}, got.Data[intake.StepGeneralInformation].Forms[intake.FormProfile]["crops"])
	})

	t.Run("numeric mobile number keeps its digits", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/contact/forms/contact/fields/mobileNumber"),
			json.RawMessage(`{"value": 9876543210}`))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, resp := f.do(t, http.MethodGet, sessionPath(s.ID, "/steps/contact/validation"), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotContains(t, string(resp.Data), "mobileNumber")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1"+sessionPath(s.ID, "/steps/registration/forms/account/fields/fullName"), bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntakeHandler_SetDerived(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/final-step/forms/loan/derived/amount"), SetValueRequest{Value: "₹20,000"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "₹20,000", decodeSession(t, resp).Data[intake.StepFinal].Forms[intake.FormLoan]["amount"])
}

func TestIntakeHandler_Rows(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)
	rows := sessionPath(s.ID, "/steps/property/collections/landHoldings/rows")
	records := func(body sessionBody) []intake.Record {
		return body.Data[intake.StepProperty].Collections[intake.CollectionLand].Records
	}
	initial := records(s)
	require.Len(t, initial, 1)

	w, resp := f.do(t, http.MethodPost, rows, AddRowRequest{Defaults: map[string]any{"village": "Rampur"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := records(decodeSession(t, resp))
	require.Len(t, added, 2)
	assert.Equal(t, "Rampur", added[1].Fields["village"])
	newRow := string(added[1].ID)

	w, resp = f.do(t, http.MethodPut, rows+"/"+newRow+"/fields/area", SetValueRequest{Value: "2.5"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2.5", records(decodeSession(t, resp))[1].Fields["area"])

	w, resp = f.do(t, http.MethodGet, rows+"/"+newRow+"/validation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var check appintake.RecordValidationResponse
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.Equal(t, intake.RecordID(newRow), check.Record)

	w, resp = f.do(t, http.MethodDelete, rows+"/"+newRow, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, initial[0].ID, records(decodeSession(t, resp))[0].ID)
	assert.Len(t, records(decodeSession(t, resp)), 1)

	t.Run("add without a body", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, rows, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/steps/property/collections/cattle/rows"), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeUnknownSection, resp.Error.Code)
	})
}

func TestIntakeHandler_UpdateAsset(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/property/assets/tractor/fields/value"), SetValueRequest{Value: "450000"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "₹4,50,000.00", decodeSession(t, resp).TotalAssetValueDisplay)

	w, resp = f.do(t, http.MethodPut, sessionPath(s.ID, "/steps/property/assets/spaceship/fields/value"), SetValueRequest{Value: "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeUnknownSection, resp.Error.Code)
}

// ============================================================================
// Navigation and validation
// ============================================================================

func TestIntakeHandler_Navigate(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/navigate"), map[string]int{"index": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decodeSession(t, resp).CurrentStep)

	w, resp = f.do(t, http.MethodPost, sessionPath(s.ID, "/navigate"), map[string]int{"index": 42})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decodeSession(t, resp).CurrentStep)

	w, resp = f.do(t, http.MethodPost, sessionPath(s.ID, "/navigate"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalid, resp.Error.Code)
}

func TestIntakeHandler_Continue(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/continue"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Advanced bool                    `json:"advanced"`
		Report   intake.ValidationReport `json:"report"`
		Session  sessionBody             `json:"session"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.False(t, body.Advanced)
	assert.False(t, body.Report.Valid())
	assert.Equal(t, 0, body.Session.CurrentStep)
}

func TestIntakeHandler_ValidateStep(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.do(t, http.MethodGet, sessionPath(s.ID, "/steps/registration/validation"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report intake.ValidationReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Equal(t, intake.StepRegistration, report.Step)
	assert.False(t, report.Valid())

	w, resp = f.do(t, http.MethodGet, sessionPath(s.ID, "/steps/nowhere/validation"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeUnknownStep, resp.Error.Code)
}

// ============================================================================
// Documents
// ============================================================================

func (f *apiFixture) upload(t *testing.T, id uuid.UUID, docType, fileName string, content []byte) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if docType != "" {
		require.NoError(t, mw.WriteField("document_type", docType))
	}
	if content != nil {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+sessionPath(id, "/documents"), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestIntakeHandler_UploadDocument(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	w, resp := f.upload(t, s.ID, string(intake.DocumentAadhaarCard), "aadhaar.png", pngBytes)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		Key         string      `json:"key"`
		ContentType string      `json:"content_type"`
		Session     sessionBody `json:"session"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	assert.Equal(t, "image/png", doc.ContentType)
	assert.Equal(t, "aadhaar.png", doc.Session.Data[intake.StepProof].Forms[intake.FormDocument]["fileName"])
	_, _, ok := f.documents.Get(doc.Key)
	assert.True(t, ok)
}

func TestIntakeHandler_UploadDocument_Rejected(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)

	tests := []struct {
		name    string
		docType string
		content []byte
		status  int
		code    string
	}{
		{"missing type", "", pngBytes, http.StatusBadRequest, dto.ErrCodeInvalid},
		{"unknown type", "passport", pngBytes, http.StatusBadRequest, dto.ErrCodeInvalidDocumentType},
		{"missing file", string(intake.DocumentPANCard), nil, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"not a proof format", string(intake.DocumentPANCard), []byte("just some text"), http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedFile},
		{"too large", string(intake.DocumentPANCard), append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2<<10)...), http.StatusRequestEntityTooLarge, dto.ErrCodeDocumentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := f.upload(t, s.ID, tt.docType, "proof.bin", tt.content)

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
	assert.Equal(t, 0, f.documents.Len())
}

// ============================================================================
// Submission
// ============================================================================

func (f *apiFixture) readyToSubmit(t *testing.T, id uuid.UUID) {
	t.Helper()
	w, _ := f.do(t, http.MethodPut, sessionPath(id, "/steps/property/assets/tractor/fields/value"), SetValueRequest{Value: "300000"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPost, sessionPath(id, "/navigate"), map[string]int{"index": 7})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPut, sessionPath(id, "/steps/final-step/forms/repayment/fields/gracePeriod"), SetValueRequest{Value: "6"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestIntakeHandler_Submit(t *testing.T) {
	f := newAPIFixture(t)
	s := f.start(t)
	f.readyToSubmit(t, s.ID)

	w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/submit"), nil, middleware.UserIDHeader, "Rv-Thakur9")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub struct {
		SubmissionID           uuid.UUID `json:"submission_id"`
		SubmittedBy            string    `json:"submitted_by"`
		Archived               bool      `json:"archived"`
		TotalAssetValueDisplay string    `json:"total_asset_value_display"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &sub))
	assert.Equal(t, "Rv-Thakur9", sub.SubmittedBy)
	assert.True(t, sub.Archived)
	assert.Equal(t, "₹3,00,000.00", sub.TotalAssetValueDisplay)

	t.Run("second submit conflicts", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/submit"), nil, middleware.UserIDHeader, "Rv-Thakur9")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadySubmitted, resp.Error.Code)
	})

	t.Run("events are rejected after submit", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/navigate"), map[string]int{"index": 0})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadySubmitted, resp.Error.Code)
	})

	t.Run("listed and fetched from the archive", func(t *testing.T) {
		w, resp := f.do(t, http.MethodGet, "/intake/submissions?submitted_by=Rv-Thakur9", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)

		w, resp = f.do(t, http.MethodGet, "/intake/submissions/"+sub.SubmissionID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got appintake.SubmissionResponse
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, s.ID, got.SessionID)
		require.NotNil(t, got.Snapshot)
		assert.Equal(t, "6", got.Snapshot.Steps[intake.StepFinal].Forms[intake.FormRepayment]["gracePeriod"])
	})
}

func TestIntakeHandler_Submit_Rejected(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing submitter", func(t *testing.T) {
		s := f.start(t)
		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/submit"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeMissingSubmitter, resp.Error.Code)
	})

	t.Run("not at the final step", func(t *testing.T) {
		s := f.start(t)
		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/submit"), nil, middleware.UserIDHeader, "officer")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeNotAtFinalStep, resp.Error.Code)
	})

	t.Run("final step invalid", func(t *testing.T) {
		s := f.start(t)
		w, _ := f.do(t, http.MethodPost, sessionPath(s.ID, "/navigate"), map[string]int{"index": 7})
		require.Equal(t, http.StatusOK, w.Code)

		w, resp := f.do(t, http.MethodPost, sessionPath(s.ID, "/submit"), nil, middleware.UserIDHeader, "officer")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeValidationFailed, resp.Error.Code)
		var report intake.ValidationReport
		require.NoError(t, json.Unmarshal(resp.Error.Details, &report))
		assert.Equal(t, intake.StepFinal, report.Step)
		assert.False(t, report.Valid())
	})
}

func TestIntakeHandler_Submissions_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	for _, id := range []string{uuid.NewString(), "bogus"} {
		w, resp := f.do(t, http.MethodGet, "/intake/submissions/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeSubmissionNotFound, resp.Error.Code)
	}

	w, resp := f.do(t, http.MethodGet, "/intake/submissions?page_size=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalid, resp.Error.Code)
}

func TestIntakeHandler_ActiveSessions(t *testing.T) {
	f := newAPIFixture(t)
	f.start(t)
	f.start(t)

	assert.Equal(t, 2, f.sessions.Count(context.Background()))
}
