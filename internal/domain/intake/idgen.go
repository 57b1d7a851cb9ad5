package intake

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out record ids. Every call returns an id never
// returned before by the same generator.
type IDGenerator interface {
	NextID() RecordID
}

// SequenceGenerator issues ids from a monotonic counter, e.g. "row-1", "row-2".
// Values of Collection derived from each other share one generator, so an id
// is never issued twice even when an older collection value is reused.
type SequenceGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSequenceGenerator creates a counter-based generator
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "row"
	}
	return &SequenceGenerator{prefix: prefix}
}

// NextID returns the next id in sequence
func (g *SequenceGenerator) NextID() RecordID {
	n := g.next.Add(1)
	return RecordID(g.prefix + "-" + strconv.FormatUint(n, 10))
}

// UUIDGenerator issues random UUIDv4 ids
type UUIDGenerator struct{}

// NextID returns a new random id
func (UUIDGenerator) NextID() RecordID {
	return RecordID(uuid.NewString())
}
