package resolver

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
)

type bindingKind uint8

const (
	bindImport bindingKind = iota
	bindAssign
	bindFunction
	bindOpaque // loop vars, params, except aliases: never substituted
)

type binding struct {
	kind    bindingKind
	path    []string     // import target, dotted
	value   *parser.Node // assigned expression; nil once ambiguous
	assigns int
	funcDef *parser.Node
}

type scope struct {
	parent   *scope
	bindings map[string]*binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: map[string]*binding{}}
}

func (s *scope) lookup(name string) *binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (s *scope) bindImportPath(name string, path []string) {
	s.bindings[name] = &binding{kind: bindImport, path: path}
}

// noteAssign records an assignment of value to name. A second assignment
// makes the binding ambiguous: flow-insensitive substitution only applies to
// single-assignment names.
func (s *scope) noteAssign(name string, value *parser.Node) {
	b, ok := s.bindings[name]
	if !ok {
		s.bindings[name] = &binding{kind: bindAssign, value: value, assigns: 1}
		return
	}
	b.assigns++
	b.value = nil
}

func (s *scope) bindOpaque(name string) {
	s.bindings[name] = &binding{kind: bindOpaque}
}

// index walks the tree once, building the scope structure and recording the
// enclosing scope of every node.
func (r *Resolver) index(n *parser.Node, sc *scope) {
	if n == nil {
		return
	}
	r.nodeScope[n] = sc
	switch n.Kind {
	case parser.KindImport:
		for _, item := range n.Children {
			path := strings.Split(item.Text, ".")
			if alias := item.Child(0); alias != nil {
				sc.bindImportPath(alias.Text, path)
			} else {
				sc.bindImportPath(path[0], path[:1])
			}
			r.nodeScope[item] = sc
		}
		return
	case parser.KindImportFrom:
		mod := strings.Split(strings.Trim(n.Text, "."), ".")
		if n.Text == "" || mod[0] == "" {
			mod = nil
		}
		for _, item := range n.Children {
			r.nodeScope[item] = sc
			if item.Text == "*" {
				continue
			}
			path := append(append([]string{}, mod...), item.Text)
			if alias := item.Child(0); alias != nil {
				sc.bindImportPath(alias.Text, path)
			} else {
				sc.bindImportPath(item.Text, path)
			}
		}
		return
	case parser.KindAssign:
		if len(n.Children) >= 2 {
			value := n.Children[len(n.Children)-1]
			for _, target := range n.Children[:len(n.Children)-1] {
				r.bindTarget(sc, target, value)
			}
			r.index(value, sc)
			for _, target := range n.Children[:len(n.Children)-1] {
				r.index(target, sc)
			}
		}
		return
	case parser.KindAugAssign:
		if target := n.Child(0); target != nil && target.Kind == parser.KindName {
			sc.noteAssign(target.Text, nil) // ambiguous by construction
		}
		for _, c := range n.Children {
			r.index(c, sc)
		}
		return
	case parser.KindFunctionDef:
		sc.bindings[n.Text] = &binding{kind: bindFunction, funcDef: n}
		inner := newScope(sc)
		r.scopes[n] = inner
		for _, c := range n.Children {
			if c.Kind == parser.KindParam {
				inner.bindOpaque(c.Text)
				r.nodeScope[c] = inner
				continue
			}
			r.index(c, inner)
		}
		return
	case parser.KindClassDef:
		sc.bindOpaque(n.Text)
		inner := newScope(sc)
		r.scopes[n] = inner
		for _, c := range n.Children {
			r.index(c, inner)
		}
		return
	case parser.KindLambda:
		for _, c := range n.Children {
			if c.Kind == parser.KindParam {
				continue
			}
			r.index(c, sc)
		}
		return
	case parser.KindBlock:
		switch n.Text {
		case "for":
			if target := n.Child(0); target != nil {
				r.bindLoopTargets(sc, target)
			}
		case "withitem":
			// `with open(p) as f` binds f to the context expression so a
			// later f.write(...) can still recover the open target.
			if alias := n.Child(1); alias != nil && alias.Kind == parser.KindName {
				sc.noteAssign(alias.Text, n.Child(0))
			}
		case "except":
			for _, c := range n.Children {
				if c.Kind == parser.KindName {
					sc.bindOpaque(c.Text)
				}
			}
		}
	}
	for _, c := range n.Children {
		r.index(c, sc)
	}
}

func (r *Resolver) bindTarget(sc *scope, target *parser.Node, value *parser.Node) {
	switch target.Kind {
	case parser.KindName:
		sc.noteAssign(target.Text, value)
	case parser.KindTuple, parser.KindList:
		for _, c := range target.Children {
			r.bindTarget(sc, c, nil)
		}
	}
}

func (r *Resolver) bindLoopTargets(sc *scope, target *parser.Node) {
	switch target.Kind {
	case parser.KindName:
		sc.bindOpaque(target.Text)
	case parser.KindTuple, parser.KindList:
		for _, c := range target.Children {
			r.bindLoopTargets(sc, c)
		}
	}
}
