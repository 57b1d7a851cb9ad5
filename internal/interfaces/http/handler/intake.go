package handler

import (
	"errors"
	"net/http"

	appintake "github.com/agricred/intake/internal/application/intake"
	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/config"
	"github.com/agricred/intake/internal/interfaces/http/dto"
	"github.com/agricred/intake/internal/interfaces/http/middleware"
	"github.com/agricred/intake/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IntakeHandler serves the wizard endpoints
type IntakeHandler struct {
	BaseHandler
	service *appintake.IntakeService
	theme   config.ThemeConfig
	money   *dto.MoneyFormatter
}

// NewIntakeHandler creates an IntakeHandler. locale controls how money
// amounts are formatted for display.
func NewIntakeHandler(service *appintake.IntakeService, theme config.ThemeConfig, locale string) *IntakeHandler {
	return &IntakeHandler{
		service: service,
		theme:   theme,
		money:   dto.NewMoneyFormatter(locale),
	}
}

// Routes returns the intake route group
func (h *IntakeHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("intake", "/intake")
	g.GET("/steps", h.ListSteps)
	g.GET("/theme", h.GetTheme)

	sessions := g.Group("sessions", "/sessions")
	sessions.POST("", h.StartSession)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.AbandonSession)
	sessions.POST("/:id/navigate", h.Navigate)
	sessions.POST("/:id/continue", h.Continue)
	sessions.POST("/:id/documents", h.UploadDocument)
	sessions.POST("/:id/submit", h.Submit)

	steps := sessions.Group("steps", "/:id/steps/:step")
	steps.GET("/validation", h.ValidateStep)
	steps.PUT("/forms/:form/fields/:field", h.SetField)
	steps.PUT("/forms/:form/derived/:field", h.SetDerived)
	steps.POST("/collections/:collection/rows", h.AddRow)
	steps.PUT("/collections/:collection/rows/:row/fields/:field", h.UpdateRow)
	steps.DELETE("/collections/:collection/rows/:row", h.DeleteRow)
	steps.GET("/collections/:collection/rows/:row/validation", h.ValidateRow)
	steps.PUT("/assets/:category/fields/:field", h.UpdateAsset)

	submissions := g.Group("submissions", "/submissions")
	submissions.GET("", h.ListSubmissions)
	submissions.GET("/:id", h.GetSubmission)
	return g
}

// ListSteps returns the step table with every schema
// @ID           listIntakeSteps
// @Summary      List wizard steps
// @Description  Returns every step with its form and collection schemas.
// @Tags         intake
// @Produce      json
// @Success      200 {object} APIResponse[[]intake.StepDefinition]
// @Router       /intake/steps [get]
func (h *IntakeHandler) ListSteps(c *gin.Context) {
	h.Success(c, h.service.Steps())
}

// GetTheme returns the presentation theme
// @ID           getIntakeTheme
// @Summary      Get presentation theme
// @Tags         intake
// @Produce      json
// @Success      200 {object} APIResponse[config.ThemeConfig]
// @Router       /intake/theme [get]
func (h *IntakeHandler) GetTheme(c *gin.Context) {
	h.Success(c, h.theme)
}

// StartSession opens a new session
// @ID           createIntakeSession
// @Summary      Start a session
// @Description  Opens a session on the first step with every schema at its defaults.
// @Tags         sessions
// @Produce      json
// @Success      201 {object} APIResponse[SessionView]
// @Failure      503 {object} ErrorResponse
// @Router       /intake/sessions [post]
func (h *IntakeHandler) StartSession(c *gin.Context) {
	resp, err := h.service.Start(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+resp.ID.String())
	h.Created(c, h.sessionView(resp))
}

// GetSession returns the full session
// @ID           getIntakeSession
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/sessions/{id} [get]
func (h *IntakeHandler) GetSession(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.sessionView(resp))
}

// AbandonSession drops a session
// @ID           deleteIntakeSession
// @Summary      Abandon a session
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /intake/sessions/{id} [delete]
func (h *IntakeHandler) AbandonSession(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	if err := h.service.Abandon(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetField sets one field of a single-record form
// @ID           setIntakeFormField
// @Summary      Set a form field
// @Description  Stores the value as given; validation runs on continue.
// @Tags         steps
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        form path string true "Form name"
// @Param        field path string true "Field name"
// @Param        request body SetValueRequest true "New value"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/forms/{form}/fields/{field} [put]
func (h *IntakeHandler) SetField(c *gin.Context) {
	h.applyValue(c, func(req SetValueRequest) intake.Event {
		return intake.FieldChanged(c.Param("step"), c.Param("form"), c.Param("field"), req.Value)
	})
}

// UpdateRow sets one field of a collection row
// @ID           setIntakeRowField
// @Summary      Set a collection row field
// @Tags         steps
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        collection path string true "Collection name"
// @Param        row path string true "Row ID"
// @Param        field path string true "Field name"
// @Param        request body SetValueRequest true "New value"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/collections/{collection}/rows/{row}/fields/{field} [put]
func (h *IntakeHandler) UpdateRow(c *gin.Context) {
	h.applyValue(c, func(req SetValueRequest) intake.Event {
		return intake.RowUpdated(c.Param("step"), c.Param("collection"), intake.RecordID(c.Param("row")), c.Param("field"), req.Value)
	})
}

func (h *IntakeHandler) applyValue(c *gin.Context, event func(SetValueRequest) intake.Event) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	req, ok := h.bindValue(c)
	if !ok {
		return
	}
	h.respondSession(c)(h.service.Apply(c.Request.Context(), id, event(req)))
}

// bindValue reads a SetValueRequest and rejects values that are neither a
// scalar nor a list of scalars
func (h *IntakeHandler) bindValue(c *gin.Context) (SetValueRequest, bool) {
	var req SetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return req, false
	}
	if !req.valid() {
		h.Error(c, dto.ErrCodeInvalid, "value must be a scalar or a list of scalars")
		return req, false
	}
	return req, true
}

// SetDerived writes a read-only field
// @ID           setIntakeDerivedField
// @Summary      Set a read-only field
// @Description  Writes a computed field that the applicant cannot edit.
// @Tags         steps
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        form path string true "Form name"
// @Param        field path string true "Field name"
// @Param        request body SetValueRequest true "New value"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/forms/{form}/derived/{field} [put]
func (h *IntakeHandler) SetDerived(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	req, ok := h.bindValue(c)
	if !ok {
		return
	}
	h.respondSession(c)(h.service.SetDerived(c.Request.Context(), id, c.Param("step"), c.Param("form"), c.Param("field"), req.Value))
}

// AddRow appends a row to a collection. The body is optional.
// @ID           addIntakeRow
// @Summary      Add a collection row
// @Tags         steps
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        collection path string true "Collection name"
// @Param        request body AddRowRequest false "Field overrides"
// @Success      201 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/collections/{collection}/rows [post]
func (h *IntakeHandler) AddRow(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	var req AddRowRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}
	resp, err := h.service.Apply(c.Request.Context(), id, intake.RowAdded(c.Param("step"), c.Param("collection"), req.Defaults))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, h.sessionView(resp))
}

// DeleteRow removes a row subject to the collection's deletion policy
// @ID           deleteIntakeRow
// @Summary      Delete a collection row
// @Description  Subject to the collection deletion policy.
// @Tags         steps
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        collection path string true "Collection name"
// @Param        row path string true "Row ID"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/collections/{collection}/rows/{row} [delete]
func (h *IntakeHandler) DeleteRow(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	event := intake.RowDeleted(c.Param("step"), c.Param("collection"), intake.RecordID(c.Param("row")))
	h.respondSession(c)(h.service.Apply(c.Request.Context(), id, event))
}

// UpdateAsset sets one field of an asset category
// @ID           setIntakeAssetField
// @Summary      Set an asset category field
// @Tags         steps
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        category path string true "Asset category"
// @Param        field path string true "Field name"
// @Param        request body SetValueRequest true "New value"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/assets/{category}/fields/{field} [put]
func (h *IntakeHandler) UpdateAsset(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	req, ok := h.bindValue(c)
	if !ok {
		return
	}
	h.respondSession(c)(h.service.UpdateAsset(c.Request.Context(), id, c.Param("step"), c.Param("category"), c.Param("field"), req.Value))
}

// Navigate jumps to a step without validation
// @ID           navigateIntakeSession
// @Summary      Jump to a step
// @Description  Moves to any step without validating the current one.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body NavigateRequest true "Target step index"
// @Success      200 {object} APIResponse[SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/navigate [post]
func (h *IntakeHandler) Navigate(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respondSession(c)(h.service.Navigate(c.Request.Context(), id, *req.Index))
}

// Continue validates the current step and advances when it is clean. A
// blocked Continue is not an error; the report says why.
// @ID           continueIntakeSession
// @Summary      Validate and advance
// @Description  Advances only when the current step is clean; otherwise the report lists the failures.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[ContinueView]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/sessions/{id}/continue [post]
func (h *IntakeHandler) Continue(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	resp, err := h.service.Continue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ContinueView{
		Advanced: resp.Advanced,
		Report:   resp.Report,
		Session:  h.sessionView(resp.Session),
	})
}

// ValidateStep reports the validation state of one step
// @ID           validateIntakeStep
// @Summary      Validate a step
// @Tags         steps
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Success      200 {object} APIResponse[intake.ValidationReport]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/validation [get]
func (h *IntakeHandler) ValidateStep(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	report, err := h.service.Validate(c.Request.Context(), id, c.Param("step"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ValidateRow reports the failing fields of one collection row
// @ID           validateIntakeRow
// @Summary      Validate a collection row
// @Tags         steps
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        step path string true "Step name"
// @Param        collection path string true "Collection name"
// @Param        row path string true "Row ID"
// @Success      200 {object} APIResponse[appintake.RecordValidationResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/sessions/{id}/steps/{step}/collections/{collection}/rows/{row}/validation [get]
func (h *IntakeHandler) ValidateRow(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	resp, err := h.service.ValidateRecord(c.Request.Context(), id, c.Param("step"), c.Param("collection"), intake.RecordID(c.Param("row")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadDocument accepts a multipart proof upload with the fields
// document_type and file
// @ID           uploadIntakeDocument
// @Summary      Upload a proof document
// @Tags         sessions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        document_type formData string true "Document type"
// @Param        file formData file true "Document file"
// @Success      201 {object} APIResponse[DocumentView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /intake/sessions/{id}/documents [post]
func (h *IntakeHandler) UploadDocument(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	var form UploadDocumentForm
	if err := c.ShouldBind(&form); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.HandleError(c, err)
			return
		}
		middleware.HandleValidationError(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field \"file\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	resp, err := h.service.UploadDocument(c.Request.Context(), appintake.UploadDocumentRequest{
		SessionID:    id,
		DocumentType: form.DocumentType,
		FileName:     header.Filename,
		Body:         file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, DocumentView{
		StoredDocument: resp.StoredDocument,
		Session:        h.sessionView(resp.Session),
	})
}

// Submit validates the final step and archives the session. The submitter
// comes from the X-User-ID header.
// @ID           submitIntakeSession
// @Summary      Submit a session
// @Description  Validates the final step and archives the session. The submitter comes from X-User-ID.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        X-User-ID header string true "Submitting user"
// @Success      201 {object} APIResponse[SubmitView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intake/sessions/{id}/submit [post]
func (h *IntakeHandler) Submit(c *gin.Context) {
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	submitter, ok := getSubmitter(c)
	if !ok {
		h.Error(c, dto.ErrCodeMissingSubmitter, "X-User-ID header is required to submit")
		return
	}
	resp, err := h.service.Submit(c.Request.Context(), id, submitter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, SubmitView{
		SubmitResponse:         resp,
		TotalAssetValueDisplay: h.money.Format(resp.TotalAssetValue),
	})
}

// ListSubmissions pages through archived submissions
// @ID           listIntakeSubmissions
// @Summary      List submissions
// @Tags         submissions
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        submitted_by query string false "Submitter filter"
// @Success      200 {object} APIResponse[[]appintake.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /intake/submissions [get]
func (h *IntakeHandler) ListSubmissions(c *gin.Context) {
	req, err := bindList(c)
	if err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	page, err := h.service.ListSubmissions(c.Request.Context(), req.SubmittedBy, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetSubmission returns one archived submission with its snapshot
// @ID           getIntakeSubmission
// @Summary      Get a submission
// @Tags         submissions
// @Produce      json
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[appintake.SubmissionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intake/submissions/{id} [get]
func (h *IntakeHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeSubmissionNotFound, "Submission not found")
		return
	}
	resp, err := h.service.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// respondSession answers with the session or the error of a service call
func (h *IntakeHandler) respondSession(c *gin.Context) func(*appintake.SessionResponse, error) {
	return func(resp *appintake.SessionResponse, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, h.sessionView(resp))
	}
}
