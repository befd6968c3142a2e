// Package engineerr defines the error taxonomy the engine's build and run
// paths use (spec.md §7): build-time failures that abort EngineBuilder.Build,
// and run-time failures that are captured per-method and never propagated
// out of Run.
//
// Why a dedicated taxonomy instead of sentinel errors?
//
// Callers diagnosing a failed build or a noisy run need structured
// coordinates — which layer, which method, which slice — not just a
// message string. Each kind below is a distinct exported type carrying
// exactly the coordinates spec.md §7 lists for it, with an Unwrap so
// errors.As/errors.Is still work against the wrapped cause.
package engineerr

import (
	"fmt"

	"github.com/agext/levenshtein"
)

// DuplicateLayer is returned when two layers are registered under the same
// name.
type DuplicateLayer struct {
	Name string
}

func (e *DuplicateLayer) Error() string {
	return fmt.Sprintf("engine build: duplicate layer %q", e.Name)
}

// DuplicateMethod is returned when two methods on the same layer share a
// name.
type DuplicateMethod struct {
	Layer  string
	Method string
}

func (e *DuplicateMethod) Error() string {
	return fmt.Sprintf("engine build: duplicate method %q on layer %q", e.Method, e.Layer)
}

// DuplicateSlice is returned when two slices are registered under the same
// name.
type DuplicateSlice struct {
	Name string
}

func (e *DuplicateSlice) Error() string {
	return fmt.Sprintf("engine build: duplicate slice %q", e.Name)
}

// UnknownLayer is returned when a slice invocation, or a dependency edge,
// references a layer that was never registered. Suggestion holds the
// closest registered layer name by Levenshtein distance, or "" if nothing
// is close enough to be worth suggesting.
type UnknownLayer struct {
	Slice      string // empty when referenced from a dependency edge
	Name       string
	Suggestion string
}

func (e *UnknownLayer) Error() string {
	msg := fmt.Sprintf("unknown layer %q", e.Name)
	if e.Slice != "" {
		msg = fmt.Sprintf("slice %q references %s", e.Slice, msg)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// UnknownMethod is returned when a slice invocation references a method
// that was never defined on its layer.
type UnknownMethod struct {
	Slice      string
	Layer      string
	Name       string
	Suggestion string
}

func (e *UnknownMethod) Error() string {
	msg := fmt.Sprintf("slice %q references unknown method %q on layer %q", e.Slice, e.Name, e.Layer)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// DependencyCycle is returned when the layer dependency graph contains a
// cycle. Layers lists the participating set; order is unspecified per
// spec.md §8.
type DependencyCycle struct {
	Layers []string
}

func (e *DependencyCycle) Error() string {
	return fmt.Sprintf("dependency cycle detected among layers: %v", e.Layers)
}

// DefaultArgsInvalid is returned when a method's declared default Value
// fails to decode via its own argument schema.
type DefaultArgsInvalid struct {
	Layer  string
	Method string
	Cause  error
}

func (e *DefaultArgsInvalid) Error() string {
	return fmt.Sprintf("layer %q method %q: default arguments invalid: %v", e.Layer, e.Method, e.Cause)
}

func (e *DefaultArgsInvalid) Unwrap() error { return e.Cause }

// InvalidConfig is returned when an EngineConfig value is structurally
// invalid, e.g. a negative batch_size.
type InvalidConfig struct {
	Field  string
	Reason string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("invalid engine config field %q: %s", e.Field, e.Reason)
}

// ArgDeserialization is returned when a method's effective argument Value
// fails to decode into its declared argument type.
type ArgDeserialization struct {
	Slice  string
	Layer  string
	Method string
	Cause  error
}

func (e *ArgDeserialization) Error() string {
	return fmt.Sprintf("slice %q layer %q method %q: argument deserialization failed: %v",
		e.Slice, e.Layer, e.Method, e.Cause)
}

func (e *ArgDeserialization) Unwrap() error { return e.Cause }

// PanicCause wraps a recovered panic value so it can travel inside a
// MethodExecutionFailed like any other cause.
type PanicCause struct {
	Payload string
}

func (p *PanicCause) Error() string { return fmt.Sprintf("panic: %s", p.Payload) }

// MethodExecutionFailed is returned when a method's bound implementation
// itself returns an error, or panics (in which case Cause is a *PanicCause).
type MethodExecutionFailed struct {
	Slice  string
	Layer  string
	Method string
	Args   string // human-readable rendering of the effective arguments
	Cause  error
}

func (e *MethodExecutionFailed) Error() string {
	return fmt.Sprintf("slice %q layer %q method %q failed: %v", e.Slice, e.Layer, e.Method, e.Cause)
}

func (e *MethodExecutionFailed) Unwrap() error { return e.Cause }

// ContextMissingKey is returned by a slice Context's typed-get when the key
// was never set.
type ContextMissingKey struct {
	Key string
}

func (e *ContextMissingKey) Error() string {
	return fmt.Sprintf("context: missing key %q", e.Key)
}

// ContextTypeMismatch is returned by a slice Context's typed-get when the
// stored Value doesn't decode into the requested type.
type ContextTypeMismatch struct {
	Key      string
	Expected string
	Cause    error
}

func (e *ContextTypeMismatch) Error() string {
	return fmt.Sprintf("context: key %q: expected %s: %v", e.Key, e.Expected, e.Cause)
}

func (e *ContextTypeMismatch) Unwrap() error { return e.Cause }

// Suggest returns the candidate closest to name by Levenshtein distance, or
// "" if candidates is empty or nothing is close enough to be useful (edit
// distance more than half the length of name, plus one).
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.Distance(name, c, nil)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best == "" {
		return ""
	}
	threshold := len(name)/2 + 1
	if bestDist > threshold {
		return ""
	}
	return best
}
