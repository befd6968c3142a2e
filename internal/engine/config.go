package engine

import "github.com/vk/fanengine/internal/engineerr"

// Unbatched is the BatchSize sentinel meaning "all slices form one window"
// (spec.md §4.5). Go's int zero value cannot double as this sentinel: §9's
// Open Question is pinned to "batch_size = 0 is rejected" (by NewConfig,
// when Builder.Config is called), which only has teeth if 0 and
// "unbatched" are distinct values.
const Unbatched = -1

// Config holds the engine's resource and tracking configuration (spec.md
// §6): worker pool sizing, windowing, and the run-flag bit selecting
// observer/stdout behavior.
type Config struct {
	NumThreads int
	StackSize  int
	ChunkSize  int
	BatchSize  int // Unbatched (-1), or a positive window size; 0 is invalid
	RunFlag    RunFlag
}

// NewConfig validates cfg and returns it, or an *engineerr.InvalidConfig if
// a field is structurally invalid. batch_size = 0 is rejected rather than
// silently treated as "unbatched" (spec.md §9's pinned Open Question; see
// DESIGN.md): callers who want a single window say so explicitly with
// engine.Unbatched, so a bare zero value can only mean "forgot to set this".
func NewConfig(cfg Config) (Config, error) {
	if cfg.NumThreads < 0 {
		return Config{}, &engineerr.InvalidConfig{Field: "num_threads", Reason: "must not be negative"}
	}
	if cfg.StackSize < 0 {
		return Config{}, &engineerr.InvalidConfig{Field: "stack_size", Reason: "must not be negative"}
	}
	if cfg.ChunkSize < 0 {
		return Config{}, &engineerr.InvalidConfig{Field: "chunk_size", Reason: "must not be negative"}
	}
	if cfg.BatchSize == 0 {
		return Config{}, &engineerr.InvalidConfig{Field: "batch_size", Reason: "must be engine.Unbatched or a positive window size, not 0"}
	}
	if cfg.BatchSize < 0 && cfg.BatchSize != Unbatched {
		return Config{}, &engineerr.InvalidConfig{Field: "batch_size", Reason: "negative values are invalid except engine.Unbatched"}
	}
	return cfg, nil
}

// DefaultConfig returns hardware-concurrency worker pool sizing, no
// chunking, a single window, and TRACKED.
func DefaultConfig() Config {
	return Config{BatchSize: Unbatched, RunFlag: Tracked}
}
