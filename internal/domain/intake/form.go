package intake

// Form holds the values of a single-record section such as bank details
// or the registration account. Like Collection it is a value.
type Form struct {
	schema Schema
	values map[string]any
}

// NewForm creates a form holding the schema defaults
func NewForm(schema Schema) Form {
	return Form{schema: schema, values: schema.Defaults()}
}

// Schema returns the form schema
func (f Form) Schema() Schema { return f.schema }

// Values returns a copy of the current values
func (f Form) Values() map[string]any { return cloneValues(f.values) }

// Get returns the value of one field
func (f Form) Get(field string) any { return f.values[field] }

// Set replaces a user-editable field. Read-only fields and fields outside
// the schema leave the form unchanged.
func (f Form) Set(field string, value any) Form {
	def, ok := f.schema.Field(field)
	if !ok || def.ReadOnly {
		return f
	}
	return f.set(field, value)
}

// SetDerived replaces any schema field, read-only ones included. It is the
// entry point for values computed outside the wizard.
func (f Form) SetDerived(field string, value any) Form {
	if !f.schema.Has(field) {
		return f
	}
	return f.set(field, value)
}

// Validate checks the current values against the schema
func (f Form) Validate() []FieldError {
	return f.schema.Validate(f.values)
}

func (f Form) set(field string, value any) Form {
	values := cloneValues(f.values)
	values[field] = cloneValue(value)
	return Form{schema: f.schema, values: values}
}
