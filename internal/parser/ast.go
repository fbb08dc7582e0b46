// Package parser turns raw Python source into a syntax tree suitable for
// rule evaluation. It is a frontend only: it never executes analyzed code and
// degrades to a ParseError on malformed or unsupported input.
package parser

import (
	"fmt"

	"github.com/nightjar-sec/nightjar/internal/types"
)

// Kind identifies the syntactic role of a Node.
type Kind uint8

const (
	KindModule Kind = iota
	KindImport
	KindImportFrom
	KindImportName
	KindAssign
	KindAugAssign
	KindExprStmt
	KindFunctionDef
	KindParam
	KindClassDef
	KindReturn
	KindBlock
	KindCall
	KindKeyword
	KindAttribute
	KindSubscript
	KindSlice
	KindName
	KindStr
	KindFStrExpr
	KindNum
	KindList
	KindTuple
	KindDict
	KindSet
	KindPair
	KindBinOp
	KindUnaryOp
	KindBoolOp
	KindCompare
	KindCond
	KindLambda
	KindStar
	KindComp
)

var kindNames = map[Kind]string{
	KindModule: "module", KindImport: "import", KindImportFrom: "import_from",
	KindImportName: "import_name", KindAssign: "assign", KindAugAssign: "aug_assign",
	KindExprStmt: "expr_stmt", KindFunctionDef: "function_def", KindParam: "param",
	KindClassDef: "class_def", KindReturn: "return", KindBlock: "block",
	KindCall: "call", KindKeyword: "keyword", KindAttribute: "attribute",
	KindSubscript: "subscript", KindSlice: "slice", KindName: "name",
	KindStr: "str", KindFStrExpr: "fstr_expr", KindNum: "num", KindList: "list",
	KindTuple: "tuple", KindDict: "dict", KindSet: "set", KindPair: "pair",
	KindBinOp: "binop", KindUnaryOp: "unaryop", KindBoolOp: "boolop",
	KindCompare: "compare", KindCond: "cond", KindLambda: "lambda",
	KindStar: "star", KindComp: "comp",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Node flags.
const (
	FlagFString byte = 1 << iota
	FlagBytes
	FlagRaw
)

// Node is one AST node: a kind, ordered owned children and a source span.
// Text carries the identifier, attribute name, operator or decoded literal
// value depending on Kind.
type Node struct {
	Kind     Kind
	Text     string
	Flags    byte
	Span     types.Span
	Children []*Node
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// IsString reports whether n is a plain (non-bytes) string literal.
func (n *Node) IsString() bool {
	return n != nil && n.Kind == KindStr && n.Flags&FlagBytes == 0
}

// Callee returns the function expression of a call node.
func (n *Node) Callee() *Node {
	if n == nil || n.Kind != KindCall {
		return nil
	}
	return n.Child(0)
}

// Args returns the positional arguments of a call node, excluding keywords.
func (n *Node) Args() []*Node {
	if n == nil || n.Kind != KindCall {
		return nil
	}
	var out []*Node
	for _, c := range n.Children[1:] {
		if c.Kind != KindKeyword {
			out = append(out, c)
		}
	}
	return out
}

// Keywords returns the keyword arguments of a call node.
func (n *Node) Keywords() []*Node {
	if n == nil || n.Kind != KindCall {
		return nil
	}
	var out []*Node
	for _, c := range n.Children[1:] {
		if c.Kind == KindKeyword {
			out = append(out, c)
		}
	}
	return out
}

// Keyword returns the value of the named keyword argument, or nil.
func (n *Node) Keyword(name string) *Node {
	for _, kw := range n.Keywords() {
		if kw.Text == name {
			return kw.Child(0)
		}
	}
	return nil
}

// Tree is the parsed form of one source unit.
type Tree struct {
	Path   string
	Source []byte
	Root   *Node
}

// ParseError reports malformed or unsupported syntax. Units that fail to
// parse are marked unanalyzable; the batch continues.
type ParseError struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}
