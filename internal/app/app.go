package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/fanengine/internal/ctxlog"
	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/internal/hclconfig"
	"github.com/vk/fanengine/internal/observer"
	"github.com/vk/fanengine/internal/observer/stdoutobserver"
	"github.com/vk/fanengine/internal/results"
)

// RegisterLayersFn populates an engine.Builder with Go-bound layers before
// any HCL slice file is loaded (layers are always Go code — spec.md §9:
// "heterogeneity lives inside the closure").
type RegisterLayersFn func(*engine.Builder) error

// App encapsulates the dependencies and lifecycle of one CLI invocation.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	builder *engine.Builder
}

// NewApp constructs an App: configures an isolated logger, creates an
// engine.Builder, registers the caller's Go layers, and applies the run-flag
// and resource configuration from cfg.
func NewApp(outW io.Writer, cfg *Config, registerLayers RegisterLayersFn) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	builder := engine.NewBuilder(logger)

	if registerLayers != nil {
		if err := registerLayers(builder); err != nil {
			return nil, fmt.Errorf("failed to register layers: %w", err)
		}
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = engine.Unbatched
	}
	runFlag := cfg.RunFlag
	if err := builder.Config(engine.Config{
		NumThreads: cfg.NumThreads,
		StackSize:  cfg.StackSize,
		ChunkSize:  cfg.ChunkSize,
		BatchSize:  batchSize,
		RunFlag:    runFlag,
	}); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	// Only TRACKED gets the engine's own stdout progress printer (spec.md
	// §4.6): SILENT still fires observer callbacks (a caller-supplied
	// socketioobserver.Sink, say) but must not write to stdout itself.
	if runFlag == observer.Tracked {
		stdoutobserver.Attach(builder.ObserverBus())
	}

	return &App{outW: outW, logger: logger, builder: builder}, nil
}

// LoadSlices parses cfg.SlicePaths as HCL and applies the resulting slices
// and dependency edges to the App's builder.
func (a *App) LoadSlices(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	loader := hclconfig.NewLoader()
	if err := loader.Load(ctx, a.builder, cfg.SlicePaths...); err != nil {
		return fmt.Errorf("failed to load slice files: %w", err)
	}
	return nil
}

// Builder exposes the underlying engine.Builder, primarily for tests and
// for callers that need to register slices or dependencies in Go rather
// than HCL.
func (a *App) Builder() *engine.Builder {
	return a.builder
}

// Run builds the engine and executes it, printing a final summary to outW.
func (a *App) Run(ctx context.Context) (*results.RunResults, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Building engine.")

	eng, err := a.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	a.logger.Info("Starting run.", "layer_order", eng.LayerOrder())
	rr := eng.Run(ctx)

	fmt.Fprintln(a.outW, rr.Summary())
	return rr, nil
}
