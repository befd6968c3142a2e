// SPDX-License-Identifier: MIT
//
// Package model defines the engine's static, post-build data model: Layer,
// Method, Slice, and Invocation (spec.md §3). Instances of these types are
// immutable once an EngineBuilder finalizes Build(): the registry and slice
// plan are frozen and safe for read-only sharing across every worker for
// the lifetime of a Run.
//
// # Core Concepts
//
//   - Layer: a named bundle of Methods sharing a logical stage, keyed by
//     method name (addition order is not kept). Unit of dependency ordering.
//
//   - Method: a named, typed unit of work within a Layer. Carries its
//     argument decoder, optional default Value, purity flag, and bound
//     implementation behind a single uniform Invoke signature (spec.md §9,
//     "trait-object methods").
//
//   - Slice: a unit of work. Selects which (layer, method) pairs to invoke,
//     with what per-invocation argument override, in what order.
//
//   - Invocation: one entry in a Slice's per-layer call list.
//
// Why model these separately from the registry and the scheduler?
//
// Keeping the data model free of execution logic lets the dependency
// planner, the scheduler, and the run-results aggregator all operate over
// the same frozen structures without needing to agree on anything beyond
// these types. It also means builder-phase validation (name resolution,
// default decodability, cycle detection) can run once, against a stable
// shape, instead of re-deriving it from whatever half-built state an
// in-progress builder happens to be in.
package model
