package intake

import (
	"time"

	"github.com/agricred/intake/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// stepState is the mutable slot of one step inside a Session
type stepState struct {
	forms       map[string]Form
	collections map[string]Collection
	ledger      *Ledger
}

// Session is the aggregate root of one applicant's pass through the wizard.
// It owns the step sequencer and the data of every step. A session is not
// safe for concurrent use; callers serialise events per session.
type Session struct {
	shared.BaseAggregateRoot
	definitions []StepDefinition
	sequencer   StepSequencer
	steps       []stepState
	submittedAt *time.Time
	submittedBy string
}

var _ shared.AggregateRoot = (*Session)(nil)

// NewSession builds a session from step definitions. Every collection of the
// session draws its record ids from ids.
func NewSession(definitions []StepDefinition, ids IDGenerator) *Session {
	if ids == nil {
		ids = NewSequenceGenerator("row")
	}

	steps := make([]Step, len(definitions))
	states := make([]stepState, len(definitions))
	for i, def := range definitions {
		steps[i] = Step{Index: i, Name: def.Name, Title: def.Title}
		st := stepState{
			forms:       make(map[string]Form, len(def.Forms)),
			collections: make(map[string]Collection, len(def.Collections)),
		}
		for _, schema := range def.Forms {
			st.forms[schema.Name] = NewForm(schema)
		}
		for _, cd := range def.Collections {
			st.collections[cd.Schema.Name] = NewCollection(cd.Schema.Name, cd.Schema, cd.Policy, ids, cd.InitialRows)
		}
		if def.Assets != nil {
			l := NewLedger(def.Assets)
			st.ledger = &l
		}
		states[i] = st
	}

	return &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		definitions:       definitions,
		sequencer:         NewStepSequencer(steps),
		steps:             states,
	}
}

// NewAgriCredSession creates a session over the AgriCred step table, using
// now's year as the default for year fields
func NewAgriCredSession(now time.Time) *Session {
	return NewSession(AgriCredSteps(now.Year()), NewSequenceGenerator("row"))
}

// Definitions returns the step table the session was built from
func (s *Session) Definitions() []StepDefinition {
	return s.definitions
}

// Sequencer returns the current navigation state
func (s *Session) Sequencer() StepSequencer {
	return s.sequencer
}

// IsSubmitted reports whether Submit has succeeded
func (s *Session) IsSubmitted() bool {
	return s.submittedAt != nil
}

// Apply performs the single transition described by e. Addressing errors
// (unknown step, section or event kind) are reported; everything else,
// such as unknown record ids or fields, is a silent no-op.
func (s *Session) Apply(e Event) error {
	if s.IsSubmitted() {
		return ErrAlreadySubmitted
	}

	if e.Kind == EventNavigated {
		next := s.sequencer.GoTo(e.Index)
		if next.Current() != s.sequencer.Current() {
			s.sequencer = next
			s.touch()
		}
		return nil
	}

	i, err := s.stepIndex(e.Step)
	if err != nil {
		return err
	}
	st := &s.steps[i]

	switch e.Kind {
	case EventFieldChanged:
		form, ok := st.forms[e.Section]
		if !ok {
			return ErrUnknownSection
		}
		st.forms[e.Section] = form.Set(e.Field, e.Value)
	case EventRowAdded, EventRowDeleted, EventRowUpdated:
		c, ok := st.collections[e.Section]
		if !ok {
			return ErrUnknownSection
		}
		switch e.Kind {
		case EventRowAdded:
			c = c.Create(e.Defaults)
		case EventRowDeleted:
			c = c.Delete(e.Record)
		default:
			c = c.Update(e.Record, e.Field, e.Value)
		}
		st.collections[e.Section] = c
	case EventAssetUpdated:
		if st.ledger == nil {
			return ErrUnknownSection
		}
		l := st.ledger.UpdateCategory(e.Category, e.Field, e.Value)
		st.ledger = &l
	default:
		return ErrUnknownEvent
	}

	s.touch()
	return nil
}

// SetDerivedField writes a form field that users cannot edit, such as the
// offered loan amount or the computed total income
func (s *Session) SetDerivedField(step, form, field string, value any) error {
	if s.IsSubmitted() {
		return ErrAlreadySubmitted
	}
	i, err := s.stepIndex(step)
	if err != nil {
		return err
	}
	f, ok := s.steps[i].forms[form]
	if !ok {
		return ErrUnknownSection
	}
	s.steps[i].forms[form] = f.SetDerived(field, value)
	s.touch()
	return nil
}

// ValidateStep checks every form, record and asset category of a step
func (s *Session) ValidateStep(step string) (ValidationReport, error) {
	i, err := s.stepIndex(step)
	if err != nil {
		return ValidationReport{}, err
	}
	return s.validateIndex(i), nil
}

// ValidateRecord checks a single collection record. A failing record only
// blocks its own submission.
func (s *Session) ValidateRecord(step, collection string, id RecordID) ([]FieldError, error) {
	i, err := s.stepIndex(step)
	if err != nil {
		return nil, err
	}
	c, ok := s.steps[i].collections[collection]
	if !ok {
		return nil, ErrUnknownSection
	}
	r, ok := c.Record(id)
	if !ok {
		return nil, nil
	}
	return c.Schema().Validate(r.Fields), nil
}

// Continue validates the current step and moves to the next one when the
// step is clean. On the last step it only validates.
func (s *Session) Continue() (ValidationReport, bool) {
	report := s.validateIndex(s.sequencer.Current())
	if !report.Valid() {
		return report, false
	}
	if !s.sequencer.IsLast() && !s.IsSubmitted() {
		s.sequencer = s.sequencer.Next()
		s.touch()
	}
	return report, true
}

// StepSnapshot returns the data fragment of one step
func (s *Session) StepSnapshot(step string) (StepSnapshot, error) {
	i, err := s.stepIndex(step)
	if err != nil {
		return StepSnapshot{}, err
	}
	return s.snapshotIndex(i), nil
}

// Snapshot returns the current state of every step
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		SessionID:   s.ID,
		CurrentStep: s.sequencer.Current(),
		Steps:       make(map[string]StepSnapshot, len(s.steps)),
		SubmittedBy: s.submittedBy,
	}
	if s.submittedAt != nil {
		at := *s.submittedAt
		snap.SubmittedAt = &at
	}
	for i := range s.steps {
		snap.Steps[s.definitions[i].Name] = s.snapshotIndex(i)
	}
	return snap
}

// Export returns the snapshot stamped with submission metadata. It does not
// change the session.
func (s *Session) Export(submitter string, at time.Time) SessionSnapshot {
	snap := s.Snapshot()
	snap.SubmittedAt = &at
	snap.SubmittedBy = submitter
	return snap
}

// CheckSubmit reports whether Submit would succeed, without changing the
// session. A failing report comes with ErrValidationFailed.
func (s *Session) CheckSubmit() (ValidationReport, error) {
	if s.IsSubmitted() {
		return ValidationReport{}, ErrAlreadySubmitted
	}
	if !s.sequencer.IsLast() {
		return ValidationReport{}, ErrNotAtFinalStep
	}
	report := s.validateIndex(s.sequencer.Current())
	if !report.Valid() {
		return report, ErrValidationFailed
	}
	return report, nil
}

// Submit validates the final step and, when clean, marks the session
// submitted and raises SessionSubmittedEvent. Submission is only possible
// while the last step is current.
func (s *Session) Submit(submitter string, at time.Time) (SessionSnapshot, ValidationReport, error) {
	report, err := s.CheckSubmit()
	if err != nil {
		return SessionSnapshot{}, report, err
	}

	snap := s.Export(submitter, at)
	s.submittedAt = &at
	s.submittedBy = submitter
	s.touch()
	s.AddDomainEvent(NewSessionSubmittedEvent(s.ID, submitter, at, s.totalAssetValue()))
	return snap, report, nil
}

func (s *Session) stepIndex(name string) (int, error) {
	i := s.sequencer.IndexOf(name)
	if i < 0 {
		return -1, ErrUnknownStep
	}
	return i, nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

func (s *Session) validateIndex(i int) ValidationReport {
	def := s.definitions[i]
	st := s.steps[i]
	report := ValidationReport{Step: def.Name}

	for _, schema := range def.Forms {
		if errs := st.forms[schema.Name].Validate(); len(errs) > 0 {
			report.Sections = append(report.Sections, SectionReport{Section: schema.Name, Errors: errs})
		}
	}
	for _, cd := range def.Collections {
		for _, r := range st.collections[cd.Schema.Name].Records() {
			if errs := cd.Schema.Validate(r.Fields); len(errs) > 0 {
				report.Sections = append(report.Sections, SectionReport{Section: cd.Schema.Name, Record: r.ID, Errors: errs})
			}
		}
	}
	if st.ledger != nil {
		for _, e := range st.ledger.Entries() {
			schema, _ := st.ledger.Schema(e.Category)
			if errs := schema.Validate(e.Fields); len(errs) > 0 {
				report.Sections = append(report.Sections, SectionReport{Section: string(e.Category), Errors: errs})
			}
		}
	}
	return report
}

func (s *Session) snapshotIndex(i int) StepSnapshot {
	def := s.definitions[i]
	st := s.steps[i]
	snap := StepSnapshot{
		Index:  i,
		Name:   def.Name,
		Title:  def.Title,
		Status: s.sequencer.StatusOf(i),
	}
	if len(st.forms) > 0 {
		snap.Forms = make(map[string]map[string]any, len(st.forms))
		for name, f := range st.forms {
			snap.Forms[name] = f.Values()
		}
	}
	if len(st.collections) > 0 {
		snap.Collections = make(map[string]CollectionSnapshot, len(st.collections))
		for name, c := range st.collections {
			snap.Collections[name] = CollectionSnapshot{Policy: c.Policy(), Records: c.Records()}
		}
	}
	if st.ledger != nil {
		snap.Assets = snapshotLedger(*st.ledger)
	}
	return snap
}

func (s *Session) totalAssetValue() decimal.Decimal {
	total := decimal.Zero
	for _, st := range s.steps {
		if st.ledger != nil {
			total = total.Add(st.ledger.TotalValue())
		}
	}
	return total
}
