package intake

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AssetCategory is one of the fixed agricultural asset categories
type AssetCategory string

const (
	AssetPloughingAnimals AssetCategory = "ploughing-animals"
	AssetMilchAnimals     AssetCategory = "milch-animals"
	AssetFarmBirds        AssetCategory = "farm-birds"
	AssetPumpSets         AssetCategory = "pump-sets"
	AssetTractor          AssetCategory = "tractor"
	AssetTransport        AssetCategory = "transport"
)

// ValueField is the field every asset category sums into the ledger total
const ValueField = "value"

// AssetCategories returns the closed set of categories in display order
func AssetCategories() []AssetCategory {
	return []AssetCategory{
		AssetPloughingAnimals,
		AssetMilchAnimals,
		AssetFarmBirds,
		AssetPumpSets,
		AssetTractor,
		AssetTransport,
	}
}

// IsValid checks if the category belongs to the closed set
func (c AssetCategory) IsValid() bool {
	for _, known := range AssetCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseAssetCategory converts a category name into an AssetCategory
func ParseAssetCategory(s string) (AssetCategory, error) {
	c := AssetCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown asset category %q", s)
	}
	return c, nil
}

// AssetEntry is the record held for one category
type AssetEntry struct {
	Category AssetCategory  `json:"category" yaml:"category"`
	Fields   map[string]any `json:"fields" yaml:"fields"`
}

// Ledger holds exactly one record per asset category. Categories are never
// added or removed. Like Collection, a Ledger is a value and UpdateCategory
// returns a new one.
type Ledger struct {
	schemas map[AssetCategory]Schema
	entries map[AssetCategory]map[string]any
}

// NewLedger creates a ledger with every category at its schema defaults.
// Categories missing from schemas get a schema holding only a numeric value.
func NewLedger(schemas map[AssetCategory]Schema) Ledger {
	l := Ledger{
		schemas: make(map[AssetCategory]Schema, len(AssetCategories())),
		entries: make(map[AssetCategory]map[string]any, len(AssetCategories())),
	}
	for _, c := range AssetCategories() {
		s, ok := schemas[c]
		if !ok {
			s = NewSchema(string(c), string(c), number(ValueField, "Value"))
		}
		l.schemas[c] = s
		l.entries[c] = s.Defaults()
	}
	return l
}

// Schema returns the schema of a category
func (l Ledger) Schema(c AssetCategory) (Schema, bool) {
	s, ok := l.schemas[c]
	return s, ok
}

// Category returns a copy of the record held for a category
func (l Ledger) Category(c AssetCategory) (map[string]any, bool) {
	fields, ok := l.entries[c]
	if !ok {
		return nil, false
	}
	return cloneValues(fields), true
}

// Entries returns every category record in display order
func (l Ledger) Entries() []AssetEntry {
	out := make([]AssetEntry, 0, len(l.entries))
	for _, c := range AssetCategories() {
		out = append(out, AssetEntry{Category: c, Fields: cloneValues(l.entries[c])})
	}
	return out
}

// UpdateCategory replaces one field of one category record. Unknown
// categories and fields outside the category schema leave the ledger unchanged.
func (l Ledger) UpdateCategory(c AssetCategory, field string, value any) Ledger {
	s, ok := l.schemas[c]
	if !ok || !s.Has(field) {
		return l
	}

	entries := make(map[AssetCategory]map[string]any, len(l.entries))
	for k, v := range l.entries {
		entries[k] = v
	}
	updated := cloneValues(l.entries[c])
	updated[field] = cloneValue(value)
	entries[c] = updated
	return Ledger{schemas: l.schemas, entries: entries}
}

// TotalValue sums the value field of every category. Values that are absent
// or not numeric contribute zero. The sum is exact and not rounded.
func (l Ledger) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, c := range AssetCategories() {
		total = total.Add(NumberOf(l.entries[c][ValueField]))
	}
	return total
}
