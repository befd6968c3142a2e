package dag

import "github.com/vk/fanengine/internal/engineerr"

// TopoOrder produces the total layer order the scheduler walks for every
// slice (spec.md §4.3): Kahn's algorithm seeded with zero-indegree nodes,
// ties broken by AddNode registration order, guaranteeing a deterministic
// order across runs for a fixed set of registrations and edges.
//
// If initLayer is non-empty, an implicit "every other layer depends on
// initLayer" edge is added to a working copy of the graph before sorting,
// guaranteeing initLayer sorts first (spec.md §4.3, §8 init-layer
// universality).
//
// Edge semantics here match AddEdge: an edge fromID -> toID means toID
// depends on fromID, so fromID must be emitted first. Kahn's algorithm
// therefore starts from nodes with no dependencies (in-degree 0 over the
// "deps" direction) and emits a node once every one of its dependencies has
// already been emitted.
func (g *Graph) TopoOrder(initLayer string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// deps[id] = set of IDs that must be emitted before id.
	deps := make(map[string]map[string]bool, len(g.nodes))
	for id, n := range g.nodes {
		set := make(map[string]bool, len(n.deps))
		for depID := range n.deps {
			set[depID] = true
		}
		deps[id] = set
	}

	if initLayer != "" {
		if _, ok := deps[initLayer]; ok {
			for id := range deps {
				if id != initLayer {
					deps[id][initLayer] = true
				}
			}
		}
	}

	remaining := make(map[string]bool, len(g.nodes))
	for id := range g.nodes {
		remaining[id] = true
	}

	var order []string
	for len(remaining) > 0 {
		// Scan in registration order and emit the single earliest-registered
		// ready node, matching a priority queue keyed by registration index.
		// This is what gives identical inputs an identical layer_order run
		// after run (spec.md §8, determinism under single thread).
		emitted := ""
		for _, id := range g.order {
			if !remaining[id] {
				continue
			}
			ready := true
			for depID := range deps[id] {
				if remaining[depID] {
					ready = false
					break
				}
			}
			if ready {
				emitted = id
				break
			}
		}
		if emitted == "" {
			cycle := make([]string, 0, len(remaining))
			for id := range remaining {
				cycle = append(cycle, id)
			}
			return nil, &engineerr.DependencyCycle{Layers: cycle}
		}
		order = append(order, emitted)
		delete(remaining, emitted)
	}

	return order, nil
}
