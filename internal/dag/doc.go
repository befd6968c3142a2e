// Package dag is the engine's dependency planner (spec.md §4.3). It holds a
// directed graph over layer names, detects cycles, and produces the total
// layer_order the scheduler walks for every slice: Kahn's topological sort
// seeded with zero-indegree nodes, ties broken by registration order, with
// an optional init layer made a universal predecessor before sorting.
package dag
