// Package scheduler drives a run (spec.md §4.5): it batches slices into
// windows, distributes each window across a bounded worker pool, and walks
// the frozen layer order sequentially within each slice, computing effective
// arguments, invoking bound methods, and recording outcomes into the run
// results aggregator while the observer bus fans out lifecycle events.
//
// Built on golang.org/x/sync's errgroup+semaphore rather than a hand-rolled
// channel/WaitGroup pair, which fits the "one window, bounded concurrency,
// drain before next window" shape spec.md §4.5 asks for more directly.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/observer"
	"github.com/vk/fanengine/internal/results"
	"github.com/vk/fanengine/internal/slicectx"
	"github.com/vk/fanengine/internal/value"
)

// Config is the subset of engine configuration the scheduler needs
// (spec.md §6): worker pool sizing and windowing. StackSize is accepted for
// parity with spec.md's enumerated options but is not actionable on a
// goroutine-based worker pool (Go goroutines do not take a fixed stack
// size); it is recorded so callers can still validate and log it.
type Config struct {
	NumThreads int // 0 means runtime.GOMAXPROCS(0)
	StackSize  int
	ChunkSize  int // not read: each slice is dispatched to the pool on its own, whatever the value
	BatchSize  int // <= 0 (engine.Unbatched) means "single window"; engine.NewConfig rejects 0 before it gets here
}

// Run executes every slice in sliceOrder against layerOrder, dispatching
// through a worker pool sized per cfg, and returns the accumulated
// RunResults. It never returns an error: per-method failures are captured,
// never propagated (spec.md §7).
func Run(
	ctx context.Context,
	cfg Config,
	layerOrder []string,
	layers map[string]*model.Layer,
	slices map[string]*model.Slice,
	sliceOrder []string,
	bus *observer.Bus,
	flag observer.RunFlag,
) *results.RunResults {
	rr := results.New()

	numThreads := cfg.NumThreads
	if numThreads <= 0 {
		numThreads = runtime.GOMAXPROCS(0)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > len(sliceOrder) {
		batchSize = len(sliceOrder)
	}
	if batchSize == 0 {
		return rr // no slices at all
	}

	for start := 0; start < len(sliceOrder); start += batchSize {
		end := start + batchSize
		if end > len(sliceOrder) {
			end = len(sliceOrder)
		}
		window := sliceOrder[start:end]
		runWindow(ctx, numThreads, layerOrder, layers, slices, window, bus, flag, rr)
	}

	return rr
}

// runWindow drains one batch fully before returning, bounding concurrency to
// numThreads via a weighted semaphore (spec.md §4.5's worker pool).
func runWindow(
	ctx context.Context,
	numThreads int,
	layerOrder []string,
	layers map[string]*model.Layer,
	slices map[string]*model.Slice,
	window []string,
	bus *observer.Bus,
	flag observer.RunFlag,
	rr *results.RunResults,
) {
	sem := semaphore.NewWeighted(int64(numThreads))
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range window {
		name := name
		slice := slices[name]
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil // context cancelled; slice simply doesn't run
			}
			defer sem.Release(1)

			rr.Add(runSlice(layerOrder, layers, name, slice, bus, flag))
			return nil
		})
	}

	// Errors from individual goroutines are never surfaced: a cancelled
	// context here only ever comes from the caller, and run-time method
	// failures are captured inside runSlice, not returned as Go errors.
	_ = g.Wait()
}

// runSlice is the per-slice execution algorithm, spec.md §4.5 steps 1-4.
func runSlice(layerOrder []string, layers map[string]*model.Layer, name string, slice *model.Slice, bus *observer.Bus, flag observer.RunFlag) *results.SliceResults {
	sctx := slicectx.New()
	sr := results.NewSliceResults(name)

	if flag != observer.SilentNoObserver {
		bus.EmitSliceStart(name)
	}
	sliceStart := time.Now()

	for _, layerName := range layerOrder {
		invocations, ok := slice.Invocations[layerName]
		if !ok {
			continue
		}
		layer := layers[layerName]
		// MethodKey.Index counts repeated invocations of the same method.
		seen := make(map[string]int, len(invocations))
		for _, inv := range invocations {
			runInvocation(sctx, name, layerName, layer, seen[inv.Method], inv, bus, flag, sr)
			seen[inv.Method]++
		}
	}

	sr.Duration = time.Since(sliceStart)
	if flag != observer.SilentNoObserver {
		bus.EmitSliceComplete(name, sr.Duration)
	}
	return sr
}

// runInvocation executes one method invocation and records its outcome,
// never returning an error: all failure modes are captured into sr.
func runInvocation(
	sctx *slicectx.Context,
	sliceName, layerName string,
	layer *model.Layer,
	idx int,
	inv model.Invocation,
	bus *observer.Bus,
	flag observer.RunFlag,
	sr *results.SliceResults,
) {
	key := results.MethodKey{Layer: layerName, Method: inv.Method, Index: idx}

	// Build-time validation (registry.Validate) guarantees every invocation
	// resolves to a registered method; a miss here would be an engine bug.
	method := layer.Methods[inv.Method]
	if method == nil {
		return
	}

	effective := effectiveArgs(method.Default, inv.Override)
	args, err := method.Decode(effective)
	if err != nil {
		wrapped := &engineerr.ArgDeserialization{Slice: sliceName, Layer: layerName, Method: inv.Method, Cause: err}
		sr.MethodResults[key] = results.MethodResult{Err: wrapped}
		if flag != observer.SilentNoObserver {
			bus.EmitMethodFailed(observer.MethodOutcome{Slice: sliceName, Layer: layerName, Method: inv.Method, Err: wrapped})
		}
		return
	}

	if flag != observer.SilentNoObserver {
		bus.EmitMethodStart(sliceName, layerName, inv.Method)
	}
	start := time.Now()

	out, invokeErr := invokeSafely(method, sctx, args)
	duration := time.Since(start)

	if invokeErr != nil {
		wrapped := &engineerr.MethodExecutionFailed{
			Slice: sliceName, Layer: layerName, Method: inv.Method,
			Args: fmt.Sprintf("%v", effective.ToNative()), Cause: invokeErr,
		}
		sr.MethodResults[key] = results.MethodResult{Err: wrapped}
		if flag != observer.SilentNoObserver {
			bus.EmitMethodFailed(observer.MethodOutcome{Slice: sliceName, Layer: layerName, Method: inv.Method, Duration: duration, Err: wrapped})
		}
		return
	}

	sr.MethodResults[key] = results.MethodResult{Value: out}
	if flag != observer.SilentNoObserver {
		bus.EmitMethodComplete(observer.MethodOutcome{Slice: sliceName, Layer: layerName, Method: inv.Method, Duration: duration})
	}
}

// invokeSafely calls the bound implementation, converting a recovered panic
// into a PanicCause-wrapped error per spec.md §7.
func invokeSafely(method *model.Method, sctx *slicectx.Context, args any) (out value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = &engineerr.PanicCause{Payload: e.Error()}
			} else {
				err = &engineerr.PanicCause{Payload: fmt.Sprint(r)}
			}
		}
	}()
	var sctxArg *slicectx.Context
	if !method.Pure {
		sctxArg = sctx
	}
	return method.Invoke(sctxArg, args)
}

// effectiveArgs implements the deep-merge effective-argument rule
// (spec.md §4.1).
func effectiveArgs(def *value.Value, override *value.Value) value.Value {
	switch {
	case def == nil && override == nil:
		return value.EmptyMap()
	case override == nil:
		return *def
	case def == nil:
		return *override
	default:
		return value.Merge(*def, *override)
	}
}
