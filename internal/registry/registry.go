// Package registry holds the engine's layer registry and slice plan
// (spec.md §3, §4.2): the set of declared Layers (with their Methods),
// declared Slices, and the dependency edges between layers, prior to the
// cross-entity validation and topological ordering that freezes them into
// a runnable Engine.
package registry

import (
	"github.com/vk/fanengine/internal/dag"
	"github.com/vk/fanengine/internal/engineerr"
	"github.com/vk/fanengine/internal/model"
)

// Registry is the mutable, build-phase container for layers, slices, and
// dependency edges. It is not safe for concurrent use — all registration
// happens on a single goroutine during the builder phase, before Run.
type Registry struct {
	Layers     map[string]*model.Layer
	LayerOrder []string

	Slices     map[string]*model.Slice
	SliceOrder []string

	deps      *dag.Graph
	InitLayer string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		Layers: make(map[string]*model.Layer),
		Slices: make(map[string]*model.Slice),
		deps:   dag.New(),
	}
}

// AddLayer registers a new, empty Layer. Returns *engineerr.DuplicateLayer
// if the name is already registered.
func (r *Registry) AddLayer(name string) (*model.Layer, error) {
	if _, exists := r.Layers[name]; exists {
		return nil, &engineerr.DuplicateLayer{Name: name}
	}
	layer := model.NewLayer(name)
	r.Layers[name] = layer
	r.LayerOrder = append(r.LayerOrder, name)
	r.deps.AddNode(name)
	return layer, nil
}

// AddMethod registers a Method on an already-added layer. Returns
// *engineerr.DuplicateMethod if the layer already has a method of that
// name.
func (r *Registry) AddMethod(layerName string, m *model.Method) error {
	layer, ok := r.Layers[layerName]
	if !ok {
		return &engineerr.UnknownLayer{Name: layerName}
	}
	if !layer.AddMethod(m) {
		return &engineerr.DuplicateMethod{Layer: layerName, Method: m.Name}
	}
	return nil
}

// AddSlice registers a single Slice. Returns *engineerr.DuplicateSlice if
// the name is already registered.
func (r *Registry) AddSlice(s *model.Slice) error {
	if _, exists := r.Slices[s.Name]; exists {
		return &engineerr.DuplicateSlice{Name: s.Name}
	}
	r.Slices[s.Name] = s
	r.SliceOrder = append(r.SliceOrder, s.Name)
	return nil
}

// AddSlices registers multiple Slices in one call, stopping at the first
// duplicate.
func (r *Registry) AddSlices(slices ...*model.Slice) error {
	for _, s := range slices {
		if err := r.AddSlice(s); err != nil {
			return err
		}
	}
	return nil
}

// Dependency declares that `dependent` depends on `prerequisite`:
// prerequisite must complete before dependent, for every slice that
// invokes both (spec.md §3). Both names must already be registered layers.
func (r *Registry) Dependency(dependent, prerequisite string) error {
	if _, ok := r.Layers[dependent]; !ok {
		return &engineerr.UnknownLayer{Name: dependent}
	}
	if _, ok := r.Layers[prerequisite]; !ok {
		return &engineerr.UnknownLayer{Name: prerequisite}
	}
	// dag edge semantics: AddEdge(from, to) means "to depends on from", so
	// prerequisite is "from" and dependent is "to".
	if err := r.deps.AddEdge(prerequisite, dependent); err != nil {
		return err
	}
	return nil
}

// SetInitLayer declares the distinguished init layer (spec.md §3, §4.3).
func (r *Registry) SetInitLayer(name string) {
	r.InitLayer = name
}

// LayerNames returns every registered layer name, in registration order.
func (r *Registry) LayerNames() []string {
	out := make([]string, len(r.LayerOrder))
	copy(out, r.LayerOrder)
	return out
}

// TopoOrder computes the frozen layer_order (spec.md §4.3), delegating to
// the dependency planner.
func (r *Registry) TopoOrder() ([]string, error) {
	return r.deps.TopoOrder(r.InitLayer)
}
