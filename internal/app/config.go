package app

import (
	"errors"

	"github.com/vk/fanengine/internal/observer"
)

// Config holds everything a CLI invocation needs to build and run an
// engine (spec.md §6's configuration options, plus ambient CLI concerns:
// slice-file paths, log format/level, worker count).
type Config struct {
	SlicePaths []string // .hcl files or directories of them, describing slices + dependencies

	LogFormat string
	LogLevel  string

	NumThreads int
	StackSize  int
	ChunkSize  int
	BatchSize  int // engine.Unbatched (-1) or a positive window size

	RunFlag observer.RunFlag
}

// NewConfig validates cfg: a required-field check plus room for future
// validations.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SlicePaths) == 0 {
		return nil, errors.New("SlicePaths is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
