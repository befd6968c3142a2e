package registry

import (
	"github.com/vk/fanengine/internal/engineerr"
)

// Validate performs the cross-entity checks spec.md §4.2 requires before an
// EngineBuilder may freeze a Registry into a runnable Engine:
//
//  1. Every slice invocation resolves to a registered layer and method.
//  2. Every method's default Value, if present, decodes via its own schema.
//  3. Dependency edges reference declared layers only (enforced eagerly by
//     Registry.Dependency, so nothing further to check here).
//  4. No duplicate names at any level (enforced eagerly by AddLayer,
//     AddMethod, AddSlice).
//  5. The dependency graph is acyclic (checked by computing TopoOrder).
//
// Returns the frozen layer_order on success.
func (r *Registry) Validate() ([]string, error) {
	if err := r.validateSliceInvocations(); err != nil {
		return nil, err
	}
	if err := r.validateDefaults(); err != nil {
		return nil, err
	}
	order, err := r.TopoOrder()
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Registry) validateSliceInvocations() error {
	for _, sliceName := range r.SliceOrder {
		s := r.Slices[sliceName]
		for layerName, invocations := range s.Invocations {
			layer, ok := r.Layers[layerName]
			if !ok {
				return &engineerr.UnknownLayer{
					Slice:      sliceName,
					Name:       layerName,
					Suggestion: engineerr.Suggest(layerName, r.LayerNames()),
				}
			}
			for _, inv := range invocations {
				if _, ok := layer.Methods[inv.Method]; !ok {
					return &engineerr.UnknownMethod{
						Slice:      sliceName,
						Layer:      layerName,
						Name:       inv.Method,
						Suggestion: engineerr.Suggest(inv.Method, layer.MethodNames()),
					}
				}
			}
		}
	}
	return nil
}

func (r *Registry) validateDefaults() error {
	for _, layerName := range r.LayerOrder {
		layer := r.Layers[layerName]
		for _, method := range layer.Methods {
			if method.Default == nil {
				continue
			}
			if _, err := method.Decode(*method.Default); err != nil {
				return &engineerr.DefaultArgsInvalid{
					Layer:  layerName,
					Method: method.Name,
					Cause:  err,
				}
			}
		}
	}
	return nil
}
