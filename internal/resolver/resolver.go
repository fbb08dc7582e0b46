package resolver

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
)

// stepBudget caps substitution hops per top-level resolution. Cyclic or
// pathologically deep obfuscation chains exhaust the budget and resolve to
// Unknown instead of looping; the resolver records that truncation happened.
const stepBudget = 8

// Resolver holds the per-unit scope index. It is built once per tree and is
// read-only afterwards; resolution is deterministic for a given tree.
type Resolver struct {
	tree      *parser.Tree
	module    *scope
	scopes    map[*parser.Node]*scope
	nodeScope map[*parser.Node]*scope
	truncated bool
}

// Index builds the scope structure for a parsed tree.
func Index(tree *parser.Tree) *Resolver {
	r := &Resolver{
		tree:      tree,
		module:    newScope(nil),
		scopes:    map[*parser.Node]*scope{},
		nodeScope: map[*parser.Node]*scope{},
	}
	r.index(tree.Root, r.module)
	return r
}

// Truncated reports whether any resolution hit the step budget.
func (r *Resolver) Truncated() bool { return r.truncated }

func (r *Resolver) scopeOf(n *parser.Node) *scope {
	if sc, ok := r.nodeScope[n]; ok {
		return sc
	}
	return r.module
}

type state struct {
	steps  int
	active map[*parser.Node]struct{}
}

func (r *Resolver) newState() *state {
	return &state{steps: stepBudget, active: map[*parser.Node]struct{}{}}
}

func (r *Resolver) spend(st *state) bool {
	if st.steps <= 0 {
		r.truncated = true
		return false
	}
	st.steps--
	return true
}

var pyBuiltins = map[string]bool{
	"exec": true, "eval": true, "compile": true, "open": true, "getattr": true,
	"setattr": true, "__import__": true, "globals": true, "locals": true,
	"vars": true, "chr": true, "ord": true, "str": true, "bytes": true,
	"bytearray": true, "dict": true, "list": true, "print": true, "input": true,
}

// Resolve computes the symbolic value of an expression.
func (r *Resolver) Resolve(n *parser.Node) Value {
	st := r.newState()
	if path, dyn, ok := r.path(n, st); ok {
		return refValue(path, dyn)
	}
	st = r.newState()
	if s, orig, ok := r.fold(n, st); ok {
		kind := Constant
		if orig.Any(OriginEncoded | OriginDynamic) {
			kind = Concatenated
		}
		return Value{Kind: kind, Str: s, Origins: orig}
	}
	return Value{Kind: Unknown, Origins: r.Origins(n)}
}

// Callable resolves the target of a call node to a dotted API path,
// following indirection idioms. ok is false when the target cannot be
// approximated.
func (r *Resolver) Callable(call *parser.Node) (Value, bool) {
	if call == nil || call.Kind != parser.KindCall {
		return Value{}, false
	}
	st := r.newState()
	path, dyn, ok := r.path(call.Callee(), st)
	if !ok {
		return Value{}, false
	}
	return refValue(path, dyn), true
}

// BoundValue returns the expression a name was bound to, when the name has
// exactly one assignment in its scope. Detectors use it to look through
// aliases like `f = open(p, "wb")` or `with open(p, "wb") as f`.
func (r *Resolver) BoundValue(n *parser.Node) *parser.Node {
	if n == nil || n.Kind != parser.KindName {
		return nil
	}
	b := r.scopeOf(n).lookup(n.Text)
	if b == nil || b.kind != bindAssign || b.assigns != 1 {
		return nil
	}
	return b.value
}

// FoldString attempts to fold an expression into a constant string. The
// returned origins describe the provenance of the data even when folding
// fails; a value sourced from a runtime-only input never folds.
func (r *Resolver) FoldString(n *parser.Node) (string, Origin, bool) {
	return r.fold(n, r.newState())
}

func refValue(path []string, dyn bool) Value {
	v := Value{Path: path, Dynamic: dyn}
	switch {
	case dyn:
		v.Kind = DynamicCallable
	case len(path) >= 2:
		v.Kind = AttributeRef
	default:
		v.Kind = ModuleRef
	}
	if len(path) > 0 {
		v.Module = path[0]
	}
	if len(path) >= 2 {
		v.Attr = path[len(path)-1]
	}
	if dyn {
		v.Origins |= OriginDynamic
	}
	return v
}

// path resolves an expression to a dotted reference. dynamic is true when
// the reference was reached through an indirection idiom.
func (r *Resolver) path(n *parser.Node, st *state) ([]string, bool, bool) {
	if n == nil {
		return nil, false, false
	}
	if _, busy := st.active[n]; busy {
		return nil, false, false
	}
	st.active[n] = struct{}{}
	defer delete(st.active, n)

	switch n.Kind {
	case parser.KindName:
		b := r.scopeOf(n).lookup(n.Text)
		if b == nil {
			if pyBuiltins[n.Text] {
				return []string{n.Text}, false, true
			}
			return nil, false, false
		}
		switch b.kind {
		case bindImport:
			return b.path, false, true
		case bindAssign:
			if b.value == nil || b.assigns != 1 || !r.spend(st) {
				return nil, false, false
			}
			return r.path(b.value, st)
		}
		return nil, false, false
	case parser.KindAttribute:
		base, dyn, ok := r.path(n.Child(0), st)
		if !ok {
			return nil, false, false
		}
		return append(append([]string{}, base...), n.Text), dyn, true
	case parser.KindSubscript:
		return r.subscriptPath(n, st)
	case parser.KindCall:
		return r.callPath(n, st)
	case parser.KindBinOp:
		if n.Text == "+" {
			if s, _, ok := r.fold(n, st); ok {
				return strings.Split(s, "."), true, true
			}
		}
	}
	return nil, false, false
}

// subscriptPath handles module-table and namespace indexing idioms:
// sys.modules["os"], globals()["os"], vars(os)["system"], mod.__dict__["x"].
func (r *Resolver) subscriptPath(n *parser.Node, st *state) ([]string, bool, bool) {
	base, idx := n.Child(0), n.Child(1)

	if base != nil && base.Kind == parser.KindCall {
		if cp, _, ok := r.path(base.Callee(), st); ok {
			switch strings.Join(cp, ".") {
			case "globals", "locals":
				key, _, ok := r.fold(idx, st)
				if !ok {
					return nil, false, false
				}
				if b := r.module.lookup(key); b != nil && b.kind == bindImport {
					return b.path, true, true
				}
				return []string{key}, true, true
			case "vars":
				if args := base.Args(); len(args) == 1 {
					mp, _, ok2 := r.path(args[0], st)
					key, _, ok3 := r.fold(idx, st)
					if ok2 && ok3 {
						return append(append([]string{}, mp...), key), true, true
					}
				}
				return nil, false, false
			}
		}
	}

	bp, _, ok := r.path(base, st)
	if !ok {
		return nil, false, false
	}
	joined := strings.Join(bp, ".")
	if joined == "sys.modules" {
		key, _, ok := r.fold(idx, st)
		if !ok {
			return nil, false, false
		}
		return strings.Split(key, "."), true, true
	}
	if len(bp) > 0 && bp[len(bp)-1] == "__dict__" {
		key, _, ok := r.fold(idx, st)
		if !ok {
			return nil, false, false
		}
		return append(append([]string{}, bp[:len(bp)-1]...), key), true, true
	}
	return nil, false, false
}

func (r *Resolver) callPath(n *parser.Node, st *state) ([]string, bool, bool) {
	callee := n.Callee()
	args := n.Args()

	// user-defined function returning a reference
	if callee != nil && callee.Kind == parser.KindName {
		if b := r.scopeOf(callee).lookup(callee.Text); b != nil && b.kind == bindFunction {
			if ret := returnExpr(b.funcDef); ret != nil && r.spend(st) {
				return r.path(ret, st)
			}
			return nil, false, false
		}
	}

	cp, _, ok := r.path(callee, st)
	if !ok {
		return nil, false, false
	}
	name := strings.Join(cp, ".")
	switch {
	case name == "__import__" || name == "importlib.import_module":
		if len(args) > 0 {
			if mod, _, ok := r.fold(args[0], st); ok {
				return strings.Split(mod, "."), true, true
			}
		}
	case name == "getattr" && len(args) >= 2:
		base, _, ok1 := r.path(args[0], st)
		attr, _, ok2 := r.fold(args[1], st)
		if ok1 && ok2 {
			return append(append([]string{}, base...), attr), true, true
		}
	case name == "eval" && len(args) == 1:
		if target, _, ok := r.fold(args[0], st); ok {
			return strings.Split(target, "."), true, true
		}
	case len(cp) > 1 && cp[len(cp)-1] == "get":
		// sys.modules.get("os"), mod.__dict__.get("x")
		basePath := cp[:len(cp)-1]
		joined := strings.Join(basePath, ".")
		if joined == "sys.modules" && len(args) > 0 {
			if key, _, ok := r.fold(args[0], st); ok {
				return strings.Split(key, "."), true, true
			}
		}
		if len(basePath) > 0 && basePath[len(basePath)-1] == "__dict__" && len(args) > 0 {
			if key, _, ok := r.fold(args[0], st); ok {
				return append(append([]string{}, basePath[:len(basePath)-1]...), key), true, true
			}
		}
	}
	return nil, false, false
}

// returnExpr finds the expression of the last return statement in a
// function body, if any.
func returnExpr(fn *parser.Node) *parser.Node {
	if fn == nil {
		return nil
	}
	var found *parser.Node
	var walk func(n *parser.Node)
	walk = func(n *parser.Node) {
		if n == nil {
			return
		}
		if n.Kind == parser.KindReturn && len(n.Children) == 1 {
			found = n.Children[0]
		}
		if n.Kind == parser.KindFunctionDef && n != fn {
			return // nested function bodies have their own returns
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(fn)
	return found
}

func (r *Resolver) fold(n *parser.Node, st *state) (string, Origin, bool) {
	if n == nil {
		return "", 0, false
	}
	if _, busy := st.active[n]; busy {
		return "", 0, false
	}
	st.active[n] = struct{}{}
	defer delete(st.active, n)

	switch n.Kind {
	case parser.KindStr:
		if n.Flags&parser.FlagFString != 0 {
			return r.foldFString(n, st)
		}
		return n.Text, OriginLiteral, true
	case parser.KindName:
		b := r.scopeOf(n).lookup(n.Text)
		if b == nil || b.kind != bindAssign || b.value == nil || b.assigns != 1 {
			return "", 0, false
		}
		if !r.spend(st) {
			return "", 0, false
		}
		return r.fold(b.value, st)
	case parser.KindBinOp:
		switch n.Text {
		case "+":
			l, lo, lok := r.fold(n.Child(0), st)
			rr, ro, rok := r.fold(n.Child(1), st)
			if lok && rok {
				return l + rr, lo | ro, true
			}
			return "", lo | ro, false
		case "%":
			// Both sides must fold; a runtime-dependent right operand keeps
			// the whole expression non-constant while its origins survive.
			l, lo, lok := r.fold(n.Child(0), st)
			rr, ro, rok := r.fold(n.Child(1), st)
			if lok && rok && strings.Count(l, "%s") == 1 {
				return strings.Replace(l, "%s", rr, 1), lo | ro, true
			}
			return "", lo | ro, false
		case "*":
			s, orig, ok := r.fold(n.Child(0), st)
			if !ok {
				return "", orig, false
			}
			if count, cerr := strconv.Atoi(n.Child(1).Text); cerr == nil && count >= 0 && count*len(s) <= 1<<16 {
				return strings.Repeat(s, count), orig, true
			}
			return "", orig, false
		}
	case parser.KindCall:
		return r.foldCall(n, st)
	case parser.KindSubscript:
		// reversed-string obfuscation: s[::-1]
		if isReverseSlice(n.Child(1)) {
			s, orig, ok := r.fold(n.Child(0), st)
			if !ok {
				return "", orig, false
			}
			return reverseString(s), orig | OriginDynamic, true
		}
	case parser.KindAttribute:
		_, orig, _ := r.fold(n.Child(0), st)
		return "", orig, false
	}
	return "", 0, false
}

func (r *Resolver) foldFString(n *parser.Node, st *state) (string, Origin, bool) {
	var sb strings.Builder
	orig := OriginLiteral
	for _, part := range n.Children {
		switch part.Kind {
		case parser.KindStr:
			sb.WriteString(part.Text)
		case parser.KindFStrExpr:
			if part.Text == "" {
				return "", orig, false
			}
			b := r.scopeOf(n).lookup(strings.Split(part.Text, ".")[0])
			if b == nil || b.kind != bindAssign || b.value == nil || b.assigns != 1 {
				return "", orig, false
			}
			if !r.spend(st) {
				return "", orig, false
			}
			s, po, ok := r.fold(b.value, st)
			if !ok {
				return "", orig | po, false
			}
			orig |= po
			sb.WriteString(s)
		}
	}
	return sb.String(), orig, true
}

func (r *Resolver) foldCall(n *parser.Node, st *state) (string, Origin, bool) {
	callee := n.Callee()
	args := n.Args()

	if cp, _, ok := r.path(callee, st); ok {
		name := strings.Join(cp, ".")
		switch name {
		case "chr":
			if len(args) == 1 {
				if code, err := strconv.ParseInt(strings.TrimSuffix(args[0].Text, "j"), 0, 32); err == nil && args[0].Kind == parser.KindNum {
					return string(rune(code)), OriginLiteral | OriginDynamic, true
				}
			}
			return "", OriginDynamic, false
		case "str", "bytes", "bytearray":
			if len(args) >= 1 {
				return r.fold(args[0], st)
			}
			return "", 0, false
		case "base64.b64decode", "base64.urlsafe_b64decode", "binascii.a2b_base64":
			if len(args) == 1 {
				if s, orig, ok := r.fold(args[0], st); ok {
					if dec, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s)); err == nil {
						return string(dec), orig | OriginEncoded, true
					}
					if dec, err := base64.URLEncoding.DecodeString(strings.TrimSpace(s)); err == nil {
						return string(dec), orig | OriginEncoded, true
					}
				}
			}
			return "", OriginEncoded, false
		case "bytes.fromhex", "binascii.unhexlify":
			if len(args) == 1 {
				if s, orig, ok := r.fold(args[0], st); ok {
					if dec, err := hex.DecodeString(strings.TrimSpace(s)); err == nil {
						return string(dec), orig | OriginEncoded, true
					}
				}
			}
			return "", OriginEncoded, false
		case "codecs.decode":
			if len(args) >= 2 {
				codec, _, _ := r.fold(args[1], st)
				if s, orig, ok := r.fold(args[0], st); ok {
					switch strings.ReplaceAll(codec, "_", "") {
					case "rot13":
						return rot13(s), orig | OriginEncoded, true
					case "hex":
						if dec, err := hex.DecodeString(s); err == nil {
							return string(dec), orig | OriginEncoded, true
						}
					case "base64":
						if dec, err := base64.StdEncoding.DecodeString(s); err == nil {
							return string(dec), orig | OriginEncoded, true
						}
					}
				}
			}
			return "", OriginEncoded, false
		default:
			if orig := callOrigins(cp); orig != 0 {
				// runtime-sourced data never folds to a constant
				return "", orig, false
			}
		}
	}

	// string methods on a foldable receiver
	if callee != nil && callee.Kind == parser.KindAttribute {
		recv := callee.Child(0)
		switch callee.Text {
		case "decode", "encode":
			return r.fold(recv, st)
		case "strip", "lstrip", "rstrip", "format":
			return r.fold(recv, st)
		case "lower":
			s, orig, ok := r.fold(recv, st)
			return strings.ToLower(s), orig, ok
		case "upper":
			s, orig, ok := r.fold(recv, st)
			return strings.ToUpper(s), orig, ok
		case "replace":
			if len(args) == 2 {
				s, orig, ok := r.fold(recv, st)
				from, o1, ok1 := r.fold(args[0], st)
				to, o2, ok2 := r.fold(args[1], st)
				if ok && ok1 && ok2 {
					return strings.ReplaceAll(s, from, to), orig | o1 | o2 | OriginDynamic, true
				}
			}
			return "", 0, false
		case "join":
			if len(args) == 1 {
				sep, orig, ok := r.fold(recv, st)
				if !ok {
					return "", orig, false
				}
				elts := args[0]
				if elts.Kind != parser.KindList && elts.Kind != parser.KindTuple {
					return "", orig, false
				}
				parts := make([]string, 0, len(elts.Children))
				for _, e := range elts.Children {
					s, po, ok := r.fold(e, st)
					if !ok {
						return "", orig | po, false
					}
					orig |= po
					parts = append(parts, s)
				}
				return strings.Join(parts, sep), orig | OriginDynamic, true
			}
		}
	}
	return "", 0, false
}

func isReverseSlice(idx *parser.Node) bool {
	if idx == nil || idx.Kind != parser.KindSlice || len(idx.Children) != 3 {
		return false
	}
	step := idx.Children[2]
	return step.Kind == parser.KindUnaryOp && step.Text == "-" &&
		step.Child(0) != nil && step.Child(0).Text == "1"
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func rot13(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = 'a' + (c-'a'+13)%26
		case c >= 'A' && c <= 'Z':
			out[i] = 'A' + (c-'A'+13)%26
		}
	}
	return string(out)
}
