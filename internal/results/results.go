// Package results is the engine's run-results aggregator (spec.md §4.7):
// per-slice method outcomes and timings, rolled up into engine-level totals,
// a textual summary, and an analysis surface for diagnosing per-method
// failures at scale.
package results

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/go-wordwrap"

	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/value"
)

// MethodKey identifies one method invocation's result within a slice.
// Index disambiguates repeated invocations of the same (Layer, Method) pair
// within one slice (spec.md §9, duplicate-invocation open question — this
// engine keys by index rather than forbidding duplicates).
type MethodKey struct {
	Layer  string
	Method string
	Index  int
}

// MethodResult is either a decoded Value or the error that prevented one.
type MethodResult struct {
	Value value.Value
	Err   error
}

// SliceResults holds one slice's outcomes (spec.md §4.7).
type SliceResults struct {
	Slice         string
	MethodResults map[MethodKey]MethodResult
	Duration      time.Duration
}

// Successful reports whether every method invocation in this slice
// succeeded.
func (s *SliceResults) Successful() bool {
	for _, r := range s.MethodResults {
		if r.Err != nil {
			return false
		}
	}
	return true
}

// NewSliceResults creates an empty, ready-to-fill SliceResults for slice.
func NewSliceResults(slice string) *SliceResults {
	return &SliceResults{
		Slice:         slice,
		MethodResults: make(map[MethodKey]MethodResult),
	}
}

// MethodError pairs a failure with the slice/layer/method coordinates of the
// invocation it came from, used by RunResults.MethodErrors.
type MethodError struct {
	Slice  string
	Layer  string
	Method string
	Err    error
}

// RunResults is the engine-level aggregate, built once per Engine.Run call.
// Per-slice results are handed off from workers under a single mutex
// (spec.md §5: "lock-protected append"); the volume of slice-level
// hand-offs is far smaller than the volume of in-slice work, so a coarse
// lock does not bottleneck the worker pool.
type RunResults struct {
	mu     sync.Mutex
	slices map[string]*SliceResults
	order  []string
}

// New creates an empty RunResults.
func New() *RunResults {
	return &RunResults{slices: make(map[string]*SliceResults)}
}

// Add records one slice's finished results. Safe for concurrent use by the
// scheduler's worker pool.
func (r *RunResults) Add(sr *SliceResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slices[sr.Slice] = sr
	r.order = append(r.order, sr.Slice)
}

// Slice returns the results for a named slice, or nil if it never ran.
func (r *RunResults) Slice(name string) *SliceResults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slices[name]
}

// SliceCount returns the total number of slices that ran.
func (r *RunResults) SliceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slices)
}

// SuccessfulSlices returns the count of slices where every method succeeded.
func (r *RunResults) SuccessfulSlices() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sr := range r.slices {
		if sr.Successful() {
			n++
		}
	}
	return n
}

// FailedSlices returns the count of slices with at least one method error.
func (r *RunResults) FailedSlices() int {
	return r.SliceCount() - r.SuccessfulSlices()
}

// methodCounts walks every slice once and returns (total, failed).
func (r *RunResults) methodCounts() (total, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sr := range r.slices {
		for _, mr := range sr.MethodResults {
			total++
			if mr.Err != nil {
				failed++
			}
		}
	}
	return total, failed
}

// TotalMethods returns the total number of method invocations recorded
// across every slice.
func (r *RunResults) TotalMethods() int {
	total, _ := r.methodCounts()
	return total
}

// SuccessfulMethods returns the count of method invocations that recorded a
// Value rather than an error.
func (r *RunResults) SuccessfulMethods() int {
	total, failed := r.methodCounts()
	return total - failed
}

// FailedMethods returns the count of method invocations that recorded an
// error.
func (r *RunResults) FailedMethods() int {
	_, failed := r.methodCounts()
	return failed
}

// HasFailures reports whether any method invocation, in any slice, failed.
func (r *RunResults) HasFailures() bool {
	return r.FailedMethods() > 0
}

// MethodErrors returns every failed method invocation across all slices,
// grouped by slice in the order slice results were added (completion order
// under a parallel run), method order within a slice unspecified.
func (r *RunResults) MethodErrors() []MethodError {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []MethodError
	for _, name := range r.order {
		sr := r.slices[name]
		for k, mr := range sr.MethodResults {
			if mr.Err != nil {
				out = append(out, MethodError{Slice: name, Layer: k.Layer, Method: k.Method, Err: mr.Err})
			}
		}
	}
	return out
}

// ExecutionErrors is the subset of MethodErrors whose cause is a failed
// method body (MethodExecutionFailed) rather than argument decoding
// (ArgDeserialization).
func (r *RunResults) ExecutionErrors() []MethodError {
	var out []MethodError
	for _, me := range r.MethodErrors() {
		var execErr *engineerr.MethodExecutionFailed
		if asMethodExecutionFailed(me.Err, &execErr) {
			out = append(out, me)
		}
	}
	return out
}

func asMethodExecutionFailed(err error, target **engineerr.MethodExecutionFailed) bool {
	for err != nil {
		if e, ok := err.(*engineerr.MethodExecutionFailed); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Durations returns (min, avg, max) slice duration across every slice that
// ran. Returns zero values if no slices ran.
func (r *RunResults) Durations() (min, avg, max time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slices) == 0 {
		return 0, 0, 0
	}
	var total time.Duration
	first := true
	for _, sr := range r.slices {
		if first {
			min, max = sr.Duration, sr.Duration
			first = false
		}
		if sr.Duration < min {
			min = sr.Duration
		}
		if sr.Duration > max {
			max = sr.Duration
		}
		total += sr.Duration
	}
	avg = total / time.Duration(len(r.slices))
	return min, avg, max
}

// Summary renders a human-readable, word-wrapped multi-line report of the
// run, suitable for printing to a terminal.
func (r *RunResults) Summary() string {
	total := r.SliceCount()
	successfulSlices := r.SuccessfulSlices()
	totalMethods, failedMethods := r.methodCounts()
	min, avg, max := r.Durations()

	body := fmt.Sprintf(
		"run finished: %d/%d slices successful, %d/%d methods successful, "+
			"slice duration min=%s avg=%s max=%s",
		successfulSlices, total, totalMethods-failedMethods, totalMethods, min, avg, max,
	)

	if r.HasFailures() {
		errs := r.MethodErrors()
		lines := make([]string, 0, len(errs))
		for _, e := range errs {
			lines = append(lines, fmt.Sprintf("  - slice %q layer %q method %q: %v", e.Slice, e.Layer, e.Method, e.Err))
		}
		sort.Strings(lines)
		body += "\nfailures:\n"
		for _, l := range lines {
			body += l + "\n"
		}
	}

	return wordwrap.WrapString(body, 100)
}
