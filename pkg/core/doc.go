// Package core provides a small, stable facade over nightjar's internal
// engine for external integrations. It deliberately re-exports a narrow API
// surface so other tools can depend on a stable import path without touching
// internal implementation packages.
//
// Example:
//
//	res, err := core.Audit(context.Background(), core.Options{Root: "./pkg-tree"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalVerdicts(os.Stdout, res)
package core
