// Package hclconfig is a declarative HCL front-end for an engine.Builder
// (spec.md §6's "out of scope... builder ergonomics and helper shorthand"):
// slices, their method invocations, and layer dependency edges can be
// written as HCL blocks instead of Go calls, declared against
// Go-registered layers and methods rather than constructed in Go.
//
// Layers and methods themselves are not declarable in HCL: a method's bound
// implementation is a Go closure, so layers are always registered in Go
// (via engine.Builder.AddLayer/AddMethod) before an hclconfig file is
// loaded. hclconfig only reaches the parts of a build that are pure data:
// which methods a slice invokes, with what argument overrides, and how
// layers depend on one another.
package hclconfig

import "github.com/hashicorp/hcl/v2"

// file is the top-level shape of one .hcl document. Multiple files merge
// by simple concatenation of their blocks (Loader.Load).
type file struct {
	Slices       []*sliceBlock      `hcl:"slice,block"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
	InitLayer    *string            `hcl:"init_layer,optional"`
	Remain       hcl.Body           `hcl:",remain"`
}

// sliceBlock is `slice "name" { layer "L" { invoke "M" { args = {...} } } }`.
type sliceBlock struct {
	Name   string        `hcl:"name,label"`
	Layers []*layerBlock `hcl:"layer,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type layerBlock struct {
	Name       string            `hcl:"name,label"`
	Invocations []*invokeBlock   `hcl:"invoke,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// invokeBlock is `invoke "method" { args = {...} }`. Args is optional: an
// invocation with no args block uses the method's default only (spec.md §3
// "sentinel meaning use default only").
type invokeBlock struct {
	Method string         `hcl:"method,label"`
	Args   hcl.Expression `hcl:"args,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

// dependencyBlock is `dependency { dependent = "A" prerequisite = "B" }`.
type dependencyBlock struct {
	Dependent    string `hcl:"dependent"`
	Prerequisite string `hcl:"prerequisite"`
}
