package intake

// Schema is an ordered list of fields describing one form, one record type
// or one asset category
type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Label  string  `json:"label" yaml:"label"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// NewSchema creates a schema from its fields
func NewSchema(name, label string, fields ...Field) Schema {
	return Schema{Name: name, Label: label, Fields: fields}
}

// Field returns the field with the given name
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Has reports whether the schema declares the field
func (s Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Defaults returns a fresh value map holding every field's default.
// Fields without a default start as the empty string.
func (s Schema) Defaults() map[string]any {
	values := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if f.Default == nil {
			values[f.Name] = ""
			continue
		}
		values[f.Name] = cloneValue(f.Default)
	}
	return values
}

// FieldNames returns the field names in declaration order
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
