// Package stdoutobserver is the default TRACKED progress printer (spec.md
// §4.6): a human-readable, colorized line per slice and method event,
// grounded on the engine's modules/print convention of prefixing status
// lines with a glyph, upgraded here to real ANSI color via gookit/color.
package stdoutobserver

import (
	"fmt"
	"time"

	"github.com/gookit/color"

	"github.com/vk/fanengine/internal/observer"
)

// Attach registers a full set of print-to-stdout callbacks on bus.
func Attach(bus *observer.Bus) {
	bus.OnSliceStart(func(slice string) {
		color.FgCyan.Printf("▶ slice %s started\n", slice)
	})
	bus.OnSliceComplete(func(slice string, d time.Duration) {
		color.FgCyan.Printf("■ slice %s completed in %s\n", slice, d)
	})
	bus.OnMethodStart(func(slice, layer, method string) {
		fmt.Printf("  … %s/%s (%s)\n", layer, method, slice)
	})
	bus.OnMethodComplete(func(o observer.MethodOutcome) {
		color.FgGreen.Printf("  ✅ %s/%s (%s) in %s\n", o.Layer, o.Method, o.Slice, o.Duration)
	})
	bus.OnMethodFailed(func(o observer.MethodOutcome) {
		color.FgRed.Printf("  ❌ %s/%s (%s): %v\n", o.Layer, o.Method, o.Slice, o.Err)
	})
}
