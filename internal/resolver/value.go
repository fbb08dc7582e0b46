// Package resolver approximates runtime values of expressions without
// executing them. It performs bounded, flow-insensitive constant folding so
// detectors can see through obfuscated references to sensitive APIs:
// concatenated attribute names, sys.modules indexing, __import__ plus
// attribute lookup, and single-assignment variable substitution.
package resolver

import "strings"

// Origin is a bitset describing where the data making up a value came from.
// A value built from a runtime-only input (network response, file contents)
// can never fold to a constant; its origins survive so detectors can still
// reason about provenance.
type Origin uint16

const (
	OriginLiteral Origin = 1 << iota
	OriginEncoded
	OriginNetwork
	OriginFile
	OriginFingerprint
	OriginEnv
	OriginDynamic
)

// Has reports whether o contains all bits of mask.
func (o Origin) Has(mask Origin) bool { return o&mask == mask }

// Any reports whether o contains at least one bit of mask.
func (o Origin) Any(mask Origin) bool { return o&mask != 0 }

// ValueKind discriminates the symbolic value variants.
type ValueKind uint8

const (
	Unknown ValueKind = iota
	Constant
	Concatenated
	ModuleRef
	AttributeRef
	DynamicCallable
)

// Value is the symbolic approximation of one expression.
type Value struct {
	Kind    ValueKind
	Str     string   // folded text for Constant/Concatenated
	Module  string   // ModuleRef, AttributeRef, DynamicCallable
	Attr    string   // AttributeRef, DynamicCallable
	Path    []string // full dotted path for callable refs
	Origins Origin
	// Dynamic marks values reached through an indirection idiom rather than
	// a plain dotted reference. The obfuscation itself is evidence.
	Dynamic bool
}

// Target returns the dotted path of a callable value ("os.system").
func (v Value) Target() string {
	if len(v.Path) > 0 {
		return strings.Join(v.Path, ".")
	}
	if v.Module != "" && v.Attr != "" {
		return v.Module + "." + v.Attr
	}
	return v.Module
}
