// Package engine assembles the layer registry, slice plan, dependency
// planner, scheduler, observer bus, and run-results aggregator into the
// single entry point spec.md §2 describes: a Builder phase that produces a
// frozen, runnable Engine, and a Run phase that always returns a complete
// RunResults (spec.md §7: "run always returns a RunResults, never fails").
package engine

import (
	"context"
	"log/slog"

	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/observer"
	"github.com/vk/fanengine/internal/results"
	"github.com/vk/fanengine/internal/scheduler"
)

// Engine is immutable after Build (spec.md §3 "Lifecycles"): its layer
// order, layers, and slice plan never change across repeated Run calls.
type Engine struct {
	layerOrder []string
	layers     map[string]*model.Layer
	slices     map[string]*model.Slice
	sliceOrder []string

	config Config
	bus    *observer.Bus
	logger *slog.Logger
}

// Run dispatches every registered slice through the scheduler and returns
// the accumulated results. Safe to call more than once on the same Engine;
// each call gets an independent RunResults.
func (e *Engine) Run(ctx context.Context) *results.RunResults {
	e.logger.Info("engine run starting", "slices", len(e.sliceOrder), "layers", len(e.layerOrder))

	schedCfg := scheduler.Config{
		NumThreads: e.config.NumThreads,
		StackSize:  e.config.StackSize,
		ChunkSize:  e.config.ChunkSize,
		BatchSize:  e.config.BatchSize,
	}

	rr := scheduler.Run(ctx, schedCfg, e.layerOrder, e.layers, e.slices, e.sliceOrder, e.bus, e.config.RunFlag)

	e.logger.Info("engine run finished", "has_failures", rr.HasFailures())
	return rr
}

// LayerOrder returns the frozen layer execution order (spec.md §4.3).
func (e *Engine) LayerOrder() []string {
	out := make([]string, len(e.layerOrder))
	copy(out, e.layerOrder)
	return out
}
