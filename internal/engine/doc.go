// Package engine drives analysis: it parses source units, walks their trees
// evaluating the detector registry, and aggregates findings into verdicts.
// Single-unit analysis is pure and side-effect-free; batches fan units out
// across workers that share only the immutable registry.
package engine
