package intake

// SectionReport lists the failing fields of one form, record or asset category
type SectionReport struct {
	Section string       `json:"section" yaml:"section"`
	Record  RecordID     `json:"record,omitempty" yaml:"record,omitempty"`
	Errors  []FieldError `json:"errors" yaml:"errors"`
}

// ValidationReport is the outcome of validating one step. Only failing
// sections are listed.
type ValidationReport struct {
	Step     string          `json:"step" yaml:"step"`
	Sections []SectionReport `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Valid reports whether no section failed
func (r ValidationReport) Valid() bool {
	return len(r.Sections) == 0
}

// ErrorCount returns the number of failing fields across all sections
func (r ValidationReport) ErrorCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Errors)
	}
	return n
}
