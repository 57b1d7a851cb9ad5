package intake

import "fmt"

// DeletionPolicy decides what Delete does to a collection
type DeletionPolicy string

const (
	// DeletionStrictMinimumOne never leaves the collection empty: deleting
	// the last record replaces it with a fresh default record.
	DeletionStrictMinimumOne DeletionPolicy = "strict-minimum-one"
	// DeletionGuarded refuses to delete the only remaining record.
	DeletionGuarded DeletionPolicy = "guarded"
	// DeletionUnguarded always removes the record; the collection may become empty.
	DeletionUnguarded DeletionPolicy = "unguarded"
)

// IsValid checks if the policy is known
func (p DeletionPolicy) IsValid() bool {
	switch p {
	case DeletionStrictMinimumOne, DeletionGuarded, DeletionUnguarded:
		return true
	}
	return false
}

// ParseDeletionPolicy converts a policy name into a DeletionPolicy
func ParseDeletionPolicy(s string) (DeletionPolicy, error) {
	p := DeletionPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown deletion policy %q", s)
	}
	return p, nil
}

// Collection is an ordered list of records sharing one schema.
//
// A Collection is a value: Create, Delete and Update return a new Collection
// and leave the receiver untouched. Operations that change nothing return a
// value equal to the receiver.
type Collection struct {
	name    string
	schema  Schema
	policy  DeletionPolicy
	ids     IDGenerator
	records []Record
}

// NewCollection creates a collection seeded with initial default records.
// A strict-minimum-one collection always starts with at least one record.
func NewCollection(name string, schema Schema, policy DeletionPolicy, ids IDGenerator, initial int) Collection {
	if !policy.IsValid() {
		policy = DeletionUnguarded
	}
	if ids == nil {
		ids = NewSequenceGenerator(name)
	}
	if policy == DeletionStrictMinimumOne && initial < 1 {
		initial = 1
	}
	c := Collection{name: name, schema: schema, policy: policy, ids: ids}
	for i := 0; i < initial; i++ {
		c.records = append(c.records, c.newRecord(nil))
	}
	return c
}

// Name returns the collection name
func (c Collection) Name() string { return c.name }

// Schema returns the record schema
func (c Collection) Schema() Schema { return c.schema }

// Policy returns the deletion policy fixed at construction
func (c Collection) Policy() DeletionPolicy { return c.policy }

// Len returns the number of records
func (c Collection) Len() int { return len(c.records) }

// Records returns a copy of the records in order
func (c Collection) Records() []Record {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}
	return out
}

// Record returns the record with the given id
func (c Collection) Record(id RecordID) (Record, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return Record{}, false
	}
	return c.records[i].clone(), true
}

// Create appends one record with a fresh id. The record starts with the
// schema defaults, overlaid by any overrides naming schema fields.
func (c Collection) Create(overrides map[string]any) Collection {
	next := c.withRecords(len(c.records) + 1)
	next.records = append(next.records, c.newRecord(overrides))
	return next
}

// Delete removes the record with the given id according to the deletion
// policy. Unknown ids leave the collection unchanged.
func (c Collection) Delete(id RecordID) Collection {
	i := c.indexOf(id)
	if i < 0 {
		return c
	}

	if len(c.records) == 1 {
		switch c.policy {
		case DeletionGuarded:
			return c
		case DeletionStrictMinimumOne:
			next := c.withRecords(1)
			next.records = append(next.records, c.newRecord(nil))
			return next
		}
	}

	next := c.withRecords(len(c.records) - 1)
	next.records = append(next.records, c.records[:i]...)
	next.records = append(next.records, c.records[i+1:]...)
	return next
}

// Update replaces one field of one record. The value is stored as given,
// without coercion.
// Unknown ids and fields outside the schema leave the collection unchanged.
func (c Collection) Update(id RecordID, field string, value any) Collection {
	i := c.indexOf(id)
	if i < 0 || !c.schema.Has(field) {
		return c
	}

	next := c.withRecords(len(c.records))
	next.records = append(next.records, c.records...)
	updated := c.records[i].clone()
	updated.Fields[field] = cloneValue(value)
	next.records[i] = updated
	return next
}

func (c Collection) indexOf(id RecordID) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// withRecords returns a copy of c with an empty record slice of the given
// capacity, so the new value never shares a backing array with c.
func (c Collection) withRecords(capacity int) Collection {
	next := c
	next.records = make([]Record, 0, capacity)
	return next
}

func (c Collection) newRecord(overrides map[string]any) Record {
	fields := c.schema.Defaults()
	for k, v := range overrides {
		if c.schema.Has(k) {
			fields[k] = cloneValue(v)
		}
	}
	return Record{ID: c.ids.NextID(), Fields: fields}
}
