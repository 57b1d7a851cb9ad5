package intake

import "slices"

// RecordID identifies a record within a session. IDs are assigned once at
// creation and never reused.
type RecordID string

// Record is one row of a repeatable section
type Record struct {
	ID     RecordID       `json:"id" yaml:"id"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// Get returns the value of a field, or nil when the field is absent
func (r Record) Get(field string) any {
	return r.Fields[field]
}

// clone copies the field map so the copy can be changed without touching r
func (r Record) clone() Record {
	return Record{ID: r.ID, Fields: cloneValues(r.Fields)}
}

func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies list and object values, such as multi-select
// choices, so a stored value is never shared with its writer or a reader
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]any:
		return cloneValues(t)
	}
	return v
}
