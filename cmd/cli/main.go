package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/fanengine/internal/app"
	"github.com/vk/fanengine/internal/cli"
	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/layers/httpfan"
)

// main is the entrypoint for the fanengine CLI.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// registerLayers wires the engine's built-in example layers (spec.md §9's
// "heterogeneity lives inside the closure": layers are always Go, never
// declared in HCL).
func registerLayers(b *engine.Builder) error {
	return httpfan.Register(b)
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a, err := app.NewApp(outW, cfg, registerLayers)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.LoadSlices(ctx, cfg); err != nil {
		return err
	}

	_, err = a.Run(ctx)
	return err
}
