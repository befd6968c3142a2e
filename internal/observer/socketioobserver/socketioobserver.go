// Package socketioobserver is an optional remote Observer sink (spec.md
// §4.6, §6 "observer(...)"): it forwards every lifecycle event as a
// socket.io emission, letting a dashboard process watch a run live. Grounded
// on the engine's modules/socketio_client and modules/socketio_request
// connection/emit conventions.
package socketioobserver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/fanengine/internal/observer"
)

// Sink forwards observer events to a connected socket.io server under a
// single event name, with a small envelope identifying which hook fired.
type Sink struct {
	io     *socket.Socket
	event  string
	logger *slog.Logger
}

// Connect dials a socket.io server at url and returns a Sink ready to
// Attach to an observer.Bus. namespace may be "" for the default namespace.
func Connect(url, namespace string, logger *slog.Logger) (*Sink, error) {
	manager := socket.NewManager(url, socket.DefaultOptions())
	io := manager.Socket(namespace, socket.DefaultOptions())

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) { connected <- nil })
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		connected <- err
	})

	io.Connect()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socketioobserver: connect failed: %w", err)
		}
	case <-time.After(15 * time.Second):
		io.Disconnect()
		return nil, fmt.Errorf("socketioobserver: timed out waiting for connection")
	}

	return &Sink{io: io, event: "engine_event", logger: logger}, nil
}

// Close disconnects the underlying socket.
func (s *Sink) Close() {
	s.io.Disconnect()
}

// Attach registers a full set of emitting callbacks on bus.
func (s *Sink) Attach(bus *observer.Bus) {
	bus.OnSliceStart(func(slice string) {
		s.emit("slice_start", map[string]any{"slice": slice})
	})
	bus.OnSliceComplete(func(slice string, d time.Duration) {
		s.emit("slice_complete", map[string]any{"slice": slice, "duration_ms": d.Milliseconds()})
	})
	bus.OnMethodStart(func(slice, layer, method string) {
		s.emit("method_start", map[string]any{"slice": slice, "layer": layer, "method": method})
	})
	bus.OnMethodComplete(func(o observer.MethodOutcome) {
		s.emit("method_complete", map[string]any{
			"slice": o.Slice, "layer": o.Layer, "method": o.Method, "duration_ms": o.Duration.Milliseconds(),
		})
	})
	bus.OnMethodFailed(func(o observer.MethodOutcome) {
		s.emit("method_failed", map[string]any{
			"slice": o.Slice, "layer": o.Layer, "method": o.Method, "error": o.Err.Error(),
		})
	})
}

func (s *Sink) emit(kind string, payload map[string]any) {
	payload["kind"] = kind
	s.io.Emit(s.event, payload)
}
