package intake

// StepStatus is the navigation status of a wizard step. It is always
// derived from the current index and never stored.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusCurrent   StepStatus = "current"
	StepStatusPending   StepStatus = "pending"
)

// Step is one page of the wizard
type Step struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
}

// StepSequencer tracks the current step of a fixed, ordered step list.
// Navigation is unrestricted: any valid index can be reached at any time.
type StepSequencer struct {
	steps   []Step
	current int
}

// NewStepSequencer creates a sequencer positioned on the first step.
// Step indexes are reassigned to match their position.
func NewStepSequencer(steps []Step) StepSequencer {
	ordered := make([]Step, len(steps))
	for i, s := range steps {
		s.Index = i
		ordered[i] = s
	}
	return StepSequencer{steps: ordered}
}

// Steps returns the step list in order
func (s StepSequencer) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Len returns the number of steps
func (s StepSequencer) Len() int { return len(s.steps) }

// Current returns the current step index
func (s StepSequencer) Current() int { return s.current }

// CurrentStep returns the current step
func (s StepSequencer) CurrentStep() Step {
	if len(s.steps) == 0 {
		return Step{}
	}
	return s.steps[s.current]
}

// Step returns the step at index i
func (s StepSequencer) Step(i int) (Step, bool) {
	if i < 0 || i >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[i], true
}

// IndexOf returns the index of the step with the given name, or -1
func (s StepSequencer) IndexOf(name string) int {
	for _, st := range s.steps {
		if st.Name == name {
			return st.Index
		}
	}
	return -1
}

// StatusOf derives the status of step i from the current index alone.
// No completeness check is involved: a step before the current one is
// completed even if its data is empty.
func (s StepSequencer) StatusOf(i int) StepStatus {
	switch {
	case i < s.current:
		return StepStatusCompleted
	case i == s.current:
		return StepStatusCurrent
	default:
		return StepStatusPending
	}
}

// Statuses returns the status of every step in order
func (s StepSequencer) Statuses() []StepStatus {
	out := make([]StepStatus, len(s.steps))
	for i := range s.steps {
		out[i] = s.StatusOf(i)
	}
	return out
}

// GoTo moves to step i. Out-of-range indexes leave the sequencer unchanged.
func (s StepSequencer) GoTo(i int) StepSequencer {
	if i < 0 || i >= len(s.steps) {
		return s
	}
	s.current = i
	return s
}

// Next moves one step forward, staying put on the last step
func (s StepSequencer) Next() StepSequencer {
	return s.GoTo(s.current + 1)
}

// Back moves one step backward, staying put on the first step
func (s StepSequencer) Back() StepSequencer {
	return s.GoTo(s.current - 1)
}

// IsFirst reports whether the first step is current
func (s StepSequencer) IsFirst() bool { return s.current == 0 }

// IsLast reports whether the last step is current
func (s StepSequencer) IsLast() bool { return s.current == len(s.steps)-1 }
