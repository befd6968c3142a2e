// Package app wires together a CLI invocation of the engine: logger
// construction, configuration validation, layer registration for the
// engine's built-in example layers, HCL slice-file loading, and the final
// Build/Run/Summary sequence (spec.md §2's data flow, driven end-to-end).
package app
