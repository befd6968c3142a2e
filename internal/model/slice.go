package model

import "github.com/vk/fanengine/internal/value"

// Invocation is a single configured call against one method of a Slice's
// targeted layer. Override is nil when the invocation carries the
// "use default only" sentinel (spec.md §3).
type Invocation struct {
	Method   string
	Override *value.Value
}

// Slice is a unique-named unit of work: a mapping from layer name to an
// ordered sequence of Invocations against that layer (spec.md §3). The
// order of Invocations within a layer is preserved and significant — they
// run sequentially within that layer for this slice.
type Slice struct {
	Name        string
	Invocations map[string][]Invocation // layer name -> ordered invocations
}

// NewSlice creates an empty Slice ready to receive invocations via Invoke.
func NewSlice(name string) *Slice {
	return &Slice{
		Name:        name,
		Invocations: make(map[string][]Invocation),
	}
}

// Invoke appends a method invocation against the given layer, preserving
// declaration order.
func (s *Slice) Invoke(layer, method string, override *value.Value) {
	s.Invocations[layer] = append(s.Invocations[layer], Invocation{
		Method:   method,
		Override: override,
	})
}

// Layers returns the set of layer names this slice targets. Order is
// unspecified; the dependency planner's layer_order is what determines
// execution order, not this method.
func (s *Slice) Layers() []string {
	names := make([]string, 0, len(s.Invocations))
	for name := range s.Invocations {
		names = append(names, name)
	}
	return names
}

// InvocationCount returns the total number of invocations declared across
// all layers of this slice — used by the result-completeness property
// (spec.md §8).
func (s *Slice) InvocationCount() int {
	n := 0
	for _, invs := range s.Invocations {
		n += len(invs)
	}
	return n
}
