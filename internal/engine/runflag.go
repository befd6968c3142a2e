package engine

import "github.com/vk/fanengine/internal/observer"

// RunFlag selects how heavily a run is tracked (spec.md §4.6). It is a
// thin, engine-facing alias over observer.RunFlag so callers configuring an
// EngineBuilder never need to import the observer package directly.
type RunFlag = observer.RunFlag

const (
	Tracked          = observer.Tracked
	Silent           = observer.Silent
	SilentNoObserver = observer.SilentNoObserver
)
