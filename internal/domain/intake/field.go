// Package intake contains the state engine of the multi-step intake wizard:
// repeatable record collections, the asset ledger, the step sequencer,
// declarative field schemas and the session aggregate tying them together.
package intake

// FieldKind is the value kind of a schema field
type FieldKind string

const (
	FieldKindText    FieldKind = "text"
	FieldKindNumber  FieldKind = "number"
	FieldKindEnum    FieldKind = "enum"
	FieldKindPattern FieldKind = "pattern"
	FieldKindEmail   FieldKind = "email"
	FieldKindBool    FieldKind = "bool"
	FieldKindMulti   FieldKind = "multi"
)

// IsValid checks if the field kind is known
func (k FieldKind) IsValid() bool {
	switch k {
	case FieldKindText, FieldKindNumber, FieldKindEnum, FieldKindPattern, FieldKindEmail, FieldKindBool, FieldKindMulti:
		return true
	}
	return false
}

// Option is one selectable value of an enum field
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Constraints restrict the accepted values of a field.
// Min and Max apply to number fields, Pattern to text and pattern fields
// (matched against the whole value), Options to enum and multi fields.
type Constraints struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// HasOption reports whether value is one of the enum options
func (c Constraints) HasOption(value string) bool {
	for _, o := range c.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Field describes one input of a form, record or asset category
type Field struct {
	Name        string      `json:"name" yaml:"name"`
	Label       string      `json:"label" yaml:"label"`
	Kind        FieldKind   `json:"kind" yaml:"kind"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly    bool        `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Unit        string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Default     any         `json:"default,omitempty" yaml:"default,omitempty"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
}

// Bound returns a pointer to v, for use in Constraints literals
func Bound(v float64) *float64 {
	return &v
}

// options builds enum options whose value and label are the same
func options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

// labelled builds enum options from value/label pairs
func labelled(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func text(name, label string) Field {
	return Field{Name: name, Label: label, Kind: FieldKindText, Default: ""}
}

func number(name, label string) Field {
	return Field{Name: name, Label: label, Kind: FieldKindNumber, Default: ""}
}

func enum(name, label string, def string, opts []Option) Field {
	return Field{Name: name, Label: label, Kind: FieldKindEnum, Default: def, Constraints: Constraints{Options: opts}}
}

// multi is a checkbox set; its value is a list of option values
func multi(name, label string, opts []Option) Field {
	return Field{Name: name, Label: label, Kind: FieldKindMulti, Default: []any{}, Constraints: Constraints{Options: opts}}
}

func pattern(name, label, expr string) Field {
	return Field{Name: name, Label: label, Kind: FieldKindPattern, Default: "", Constraints: Constraints{Pattern: expr}}
}

func email(name, label string) Field {
	return Field{Name: name, Label: label, Kind: FieldKindEmail, Default: ""}
}

func (f Field) required() Field {
	f.Required = true
	return f
}

func (f Field) readOnly() Field {
	f.ReadOnly = true
	return f
}

func (f Field) withDefault(v any) Field {
	f.Default = v
	return f
}

func (f Field) unit(u string) Field {
	f.Unit = u
	return f
}

func (f Field) between(lo, hi float64) Field {
	f.Constraints.Min = Bound(lo)
	f.Constraints.Max = Bound(hi)
	return f
}

func (f Field) atLeast(lo float64) Field {
	f.Constraints.Min = Bound(lo)
	return f
}

func (f Field) matching(expr string) Field {
	f.Constraints.Pattern = expr
	return f
}
