package engine

import (
	"log/slog"

	"github.com/vk/fanengine/internal/model"
	"github.com/vk/fanengine/internal/observer"
	"github.com/vk/fanengine/internal/registry"
)

// Builder is the engine-builder surface (spec.md §6): add_layer, add_slice,
// dependency, init_layer, config, observer, build. All registration happens
// before Build; a Builder is not safe for concurrent use.
type Builder struct {
	reg    *registry.Registry
	config Config
	bus    *observer.Bus
	logger *slog.Logger
}

// NewBuilder creates an empty Builder with DefaultConfig and a Bus with no
// callbacks registered yet.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		reg:    registry.New(),
		config: DefaultConfig(),
		bus:    observer.New(logger),
		logger: logger,
	}
}

// AddLayer registers a new, empty Layer and returns it so the caller can
// attach methods via model.Bind / model.BindPure + Builder.AddMethod.
func (b *Builder) AddLayer(name string) (*model.Layer, error) {
	return b.reg.AddLayer(name)
}

// AddMethod registers m on the named layer.
func (b *Builder) AddMethod(layer string, m *model.Method) error {
	return b.reg.AddMethod(layer, m)
}

// AddSlice registers a single Slice.
func (b *Builder) AddSlice(s *model.Slice) error {
	return b.reg.AddSlice(s)
}

// AddSlices registers multiple Slices, stopping at the first error.
func (b *Builder) AddSlices(slices ...*model.Slice) error {
	return b.reg.AddSlices(slices...)
}

// Dependency declares that dependent depends on prerequisite.
func (b *Builder) Dependency(dependent, prerequisite string) error {
	return b.reg.Dependency(dependent, prerequisite)
}

// InitLayer declares the distinguished init layer.
func (b *Builder) InitLayer(name string) {
	b.reg.SetInitLayer(name)
}

// Config sets the engine's resource and tracking configuration. Invalid
// fields are reported immediately rather than deferred to Build, so a
// caller discovers a typo'd batch_size at the call site.
func (b *Builder) Config(cfg Config) error {
	validated, err := NewConfig(cfg)
	if err != nil {
		return err
	}
	b.config = validated
	return nil
}

// ObserverBus exposes the Builder's observer.Bus directly, for attachers
// that live outside this package (e.g. stdoutobserver.Attach) and were not
// written to take a Builder.
func (b *Builder) ObserverBus() *observer.Bus {
	return b.bus
}

// Observer registers an additional observer callback attacher — e.g.
// stdoutobserver.Attach, or a *socketioobserver.Sink's Attach method — onto
// the Builder's bus.
func (b *Builder) Observer(attach func(*observer.Bus)) {
	attach(b.bus)
}

// Build validates the registry (spec.md §4.2) and, on success, freezes it
// into a runnable Engine. On failure, no Engine is produced.
func (b *Builder) Build() (*Engine, error) {
	layerOrder, err := b.reg.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{
		layerOrder: layerOrder,
		layers:     b.reg.Layers,
		slices:     b.reg.Slices,
		sliceOrder: b.reg.SliceOrder,
		config:     b.config,
		bus:        b.bus,
		logger:     b.logger,
	}, nil
}
