package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields predictable "prefix-N" identifiers so tests can assert
// on record IDs instead of matching UUIDs.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator constructs a generator for the given prefix, defaulting to
// "id" when none is supplied.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence, starting at prefix-1.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc adapts the generator to the func() string shape the services take
// as a dependency.
func (g *IDGenerator) NextFunc() func() string {
	return g.Next
}
