package parser

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/types"
)

// maxExprDepth bounds expression nesting so that adversarial inputs degrade
// to a ParseError instead of exhausting the stack.
const maxExprDepth = 200

// Parse turns source text into a Tree. Malformed input yields a *ParseError;
// Parse never panics and has no side effects.
func Parse(path string, src []byte) (*Tree, error) {
	toks, lerr := newLexer(path, src).tokens()
	if lerr != nil {
		return nil, lerr
	}
	p := &parser{path: path, toks: toks}
	root := p.parseModule()
	if p.err != nil {
		return nil, p.err
	}
	root.Span = types.Span{Start: 0, End: len(src), Line: 1, Col: 1}
	return &Tree{Path: path, Source: src, Root: root}, nil
}

type parser struct {
	path  string
	toks  []token
	i     int
	depth int
	err   *ParseError
}

// cur and next clamp at the final (EOF) token so error-recovery paths can
// keep reading without running off the slice.
func (p *parser) cur() token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.cur()
	if p.i < len(p.toks) {
		p.i++
	}
	return t
}

func (p *parser) at(kind tokKind, text string) bool {
	t := p.cur()
	return t.kind == kind && (text == "" || t.text == text)
}

func (p *parser) accept(kind tokKind, text string) bool {
	if p.at(kind, text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) failf(t token, msg string) {
	if p.err == nil {
		p.err = &ParseError{Path: p.path, Line: t.line, Col: t.col, Msg: msg}
	}
}

func (p *parser) expect(kind tokKind, text string) token {
	t := p.cur()
	if !p.at(kind, text) {
		what := text
		if what == "" {
			what = "token"
		}
		p.failf(t, "expected "+what)
		return t
	}
	p.i++
	return t
}

func span(t token) types.Span {
	return types.Span{Start: t.pos, End: t.end, Line: t.line, Col: t.col}
}

func node(k Kind, t token, children ...*Node) *Node {
	n := &Node{Kind: k, Span: span(t), Children: children}
	n.extend()
	return n
}

// extend widens the span to cover all children.
func (n *Node) extend() {
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if c.Span.End > n.Span.End {
			n.Span.End = c.Span.End
		}
		if c.Span.Start < n.Span.Start {
			n.Span.Start = c.Span.Start
			n.Span.Line = c.Span.Line
			n.Span.Col = c.Span.Col
		}
	}
}

func (p *parser) skipNewlines() {
	for p.at(tokNewline, "") {
		p.i++
	}
}

func (p *parser) parseModule() *Node {
	root := &Node{Kind: KindModule}
	for p.err == nil {
		p.skipNewlines()
		if p.cur().kind == tokEOF {
			break
		}
		if st := p.parseStatement(); st != nil {
			root.Children = append(root.Children, st)
		}
	}
	root.extend()
	return root
}

// suite parses either an inline simple-statement suite or an indented block.
func (p *parser) suite() []*Node {
	if p.accept(tokNewline, "") {
		p.skipNewlines()
		if !p.accept(tokIndent, "") {
			p.failf(p.cur(), "expected indented block")
			return nil
		}
		var body []*Node
		for p.err == nil {
			p.skipNewlines()
			if p.accept(tokDedent, "") || p.cur().kind == tokEOF {
				break
			}
			if st := p.parseStatement(); st != nil {
				body = append(body, st)
			}
		}
		return body
	}
	// simple statements on the same line
	var body []*Node
	for p.err == nil {
		if st := p.parseSimpleStatement(); st != nil {
			body = append(body, st)
		}
		if !p.accept(tokOp, ";") {
			break
		}
	}
	p.endStatement()
	return body
}

func (p *parser) endStatement() {
	if p.cur().kind == tokEOF || p.cur().kind == tokDedent {
		return
	}
	if !p.accept(tokNewline, "") && p.err == nil {
		p.failf(p.cur(), "expected end of statement")
	}
}

func (p *parser) parseStatement() *Node {
	t := p.cur()
	if t.kind == tokOp && t.text == "@" {
		return p.parseDecorated()
	}
	if t.kind == tokName {
		switch t.text {
		case "def":
			return p.parseFunctionDef()
		case "class":
			return p.parseClassDef()
		case "async":
			p.next()
			return p.parseStatement()
		case "if", "elif", "else", "for", "while", "with", "try", "except", "finally":
			return p.parseCompound(t.text)
		}
	}
	st := p.parseSimpleStatement()
	for p.err == nil && p.accept(tokOp, ";") {
		if p.cur().kind == tokNewline || p.cur().kind == tokEOF {
			break
		}
		// additional statements on the same line become siblings via a block
		extra := p.parseSimpleStatement()
		blk := node(KindBlock, t, st, extra)
		blk.Text = "multi"
		st = blk
	}
	p.endStatement()
	return st
}

func (p *parser) parseDecorated() *Node {
	t := p.expect(tokOp, "@")
	dec := p.parseExpr()
	p.endStatement()
	p.skipNewlines()
	inner := p.parseStatement()
	n := node(KindBlock, t, dec, inner)
	n.Text = "decorated"
	return n
}

func (p *parser) parseCompound(kw string) *Node {
	t := p.next() // keyword
	n := node(KindBlock, t)
	n.Text = kw
	switch kw {
	case "if", "elif", "while":
		n.Children = append(n.Children, p.parseExpr())
	case "for":
		n.Children = append(n.Children, p.parseTargetList())
		p.expect(tokName, "in")
		n.Children = append(n.Children, p.parseExprList())
	case "with":
		for p.err == nil {
			item := p.parseExpr()
			if p.accept(tokName, "as") {
				alias := p.parseAtomName()
				item = &Node{Kind: KindBlock, Text: "withitem", Span: item.Span, Children: []*Node{item, alias}}
				item.extend()
			}
			n.Children = append(n.Children, item)
			if !p.accept(tokOp, ",") {
				break
			}
		}
	case "except":
		if !p.at(tokOp, ":") {
			p.accept(tokOp, "*")
			n.Children = append(n.Children, p.parseExpr())
			if p.accept(tokName, "as") {
				n.Children = append(n.Children, p.parseAtomName())
			}
		}
	case "try", "else", "finally":
	}
	p.expect(tokOp, ":")
	n.Children = append(n.Children, p.suite()...)
	n.extend()
	return n
}

func (p *parser) parseFunctionDef() *Node {
	t := p.expect(tokName, "def")
	name := p.expect(tokName, "")
	n := node(KindFunctionDef, t)
	n.Text = name.text
	p.expect(tokOp, "(")
	for p.err == nil && !p.at(tokOp, ")") {
		if p.accept(tokOp, "*") {
			p.accept(tokOp, "*") // **kwargs
			if p.cur().kind == tokName {
				pr := node(KindParam, p.next())
				pr.Text = p.toks[p.i-1].text
				n.Children = append(n.Children, pr)
			}
		} else if p.accept(tokOp, "/") {
			// positional-only marker
		} else {
			pt := p.expect(tokName, "")
			pr := node(KindParam, pt)
			pr.Text = pt.text
			if p.accept(tokOp, ":") {
				p.parseExpr() // annotation, discarded
			}
			if p.accept(tokOp, "=") {
				pr.Children = append(pr.Children, p.parseExpr())
				pr.extend()
			}
			n.Children = append(n.Children, pr)
		}
		if !p.accept(tokOp, ",") {
			break
		}
	}
	p.expect(tokOp, ")")
	if p.accept(tokOp, "->") {
		p.parseExpr() // return annotation, discarded
	}
	p.expect(tokOp, ":")
	n.Children = append(n.Children, p.suite()...)
	n.extend()
	return n
}

func (p *parser) parseClassDef() *Node {
	t := p.expect(tokName, "class")
	name := p.expect(tokName, "")
	n := node(KindClassDef, t)
	n.Text = name.text
	if p.accept(tokOp, "(") {
		for p.err == nil && !p.at(tokOp, ")") {
			n.Children = append(n.Children, p.parseCallArg())
			if !p.accept(tokOp, ",") {
				break
			}
		}
		p.expect(tokOp, ")")
	}
	p.expect(tokOp, ":")
	n.Children = append(n.Children, p.suite()...)
	n.extend()
	return n
}

func (p *parser) parseSimpleStatement() *Node {
	t := p.cur()
	if t.kind == tokName {
		switch t.text {
		case "import":
			return p.parseImport()
		case "from":
			return p.parseImportFrom()
		case "return":
			p.next()
			n := node(KindReturn, t)
			if !p.at(tokNewline, "") && !p.at(tokOp, ";") && p.cur().kind != tokEOF && p.cur().kind != tokDedent {
				n.Children = append(n.Children, p.parseExprList())
				n.extend()
			}
			return n
		case "pass", "break", "continue":
			p.next()
			n := node(KindBlock, t)
			n.Text = t.text
			return n
		case "raise", "del", "assert", "global", "nonlocal", "yield", "await":
			p.next()
			n := node(KindBlock, t)
			n.Text = t.text
			for p.err == nil && !p.at(tokNewline, "") && !p.at(tokOp, ";") &&
				p.cur().kind != tokEOF && p.cur().kind != tokDedent {
				n.Children = append(n.Children, p.parseExpr())
				if p.accept(tokName, "from") {
					n.Children = append(n.Children, p.parseExpr())
				}
				if !p.accept(tokOp, ",") {
					break
				}
			}
			n.extend()
			return n
		}
	}
	return p.parseExprOrAssign()
}

func (p *parser) parseImport() *Node {
	t := p.expect(tokName, "import")
	n := node(KindImport, t)
	for p.err == nil {
		name := p.parseDottedName()
		item := node(KindImportName, t)
		item.Text = name
		if p.accept(tokName, "as") {
			alias := p.expect(tokName, "")
			item.Children = append(item.Children, &Node{Kind: KindName, Text: alias.text, Span: span(alias)})
		}
		item.extend()
		n.Children = append(n.Children, item)
		if !p.accept(tokOp, ",") {
			break
		}
	}
	n.extend()
	return n
}

func (p *parser) parseImportFrom() *Node {
	t := p.expect(tokName, "from")
	var mod strings.Builder
	for p.accept(tokOp, ".") {
		mod.WriteByte('.')
	}
	if p.cur().kind == tokName && p.cur().text != "import" {
		mod.WriteString(p.parseDottedName())
	}
	n := node(KindImportFrom, t)
	n.Text = mod.String()
	p.expect(tokName, "import")
	if p.accept(tokOp, "*") {
		star := node(KindImportName, t)
		star.Text = "*"
		n.Children = append(n.Children, star)
		return n
	}
	paren := p.accept(tokOp, "(")
	for p.err == nil {
		if paren {
			p.skipNewlines()
		}
		name := p.expect(tokName, "")
		item := node(KindImportName, name)
		item.Text = name.text
		if p.accept(tokName, "as") {
			alias := p.expect(tokName, "")
			item.Children = append(item.Children, &Node{Kind: KindName, Text: alias.text, Span: span(alias)})
		}
		item.extend()
		n.Children = append(n.Children, item)
		if paren {
			p.skipNewlines()
		}
		if !p.accept(tokOp, ",") {
			break
		}
		if paren {
			p.skipNewlines()
			if p.at(tokOp, ")") {
				break
			}
		}
	}
	if paren {
		p.expect(tokOp, ")")
	}
	n.extend()
	return n
}

func (p *parser) parseDottedName() string {
	var sb strings.Builder
	sb.WriteString(p.expect(tokName, "").text)
	for p.accept(tokOp, ".") {
		sb.WriteByte('.')
		sb.WriteString(p.expect(tokName, "").text)
	}
	return sb.String()
}

var augOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "&=": true,
	"|=": true, "^=": true, ">>=": true, "<<=": true, "**=": true, "//=": true, "@=": true,
}

func (p *parser) parseExprOrAssign() *Node {
	t := p.cur()
	lhs := p.parseExprList()
	if p.cur().kind == tokOp {
		op := p.cur().text
		switch {
		case op == "=":
			// chained assignment a = b = value: all but the last expression
			// are targets, the last is the assigned value.
			exprs := []*Node{lhs}
			for p.err == nil && p.accept(tokOp, "=") {
				exprs = append(exprs, p.parseExprList())
			}
			return node(KindAssign, t, exprs...)
		case augOps[op]:
			p.next()
			rhs := p.parseExprList()
			n := node(KindAugAssign, t, lhs, rhs)
			n.Text = op
			return n
		case op == ":":
			// annotated assignment: name: type = value
			p.next()
			p.parseExpr() // annotation, discarded
			if p.accept(tokOp, "=") {
				return node(KindAssign, t, lhs, p.parseExprList())
			}
			n := node(KindExprStmt, t, lhs)
			return n
		}
	}
	return node(KindExprStmt, t, lhs)
}

// parseTargetList parses for-loop targets (names, tuples, attributes). It
// stays below the comparison level so the "in" keyword is left for the
// caller to consume.
func (p *parser) parseTargetList() *Node {
	first := p.parseTarget()
	if !p.at(tokOp, ",") {
		return first
	}
	tup := &Node{Kind: KindTuple, Span: first.Span, Children: []*Node{first}}
	for p.err == nil && p.accept(tokOp, ",") {
		if p.exprTerminator() {
			break
		}
		tup.Children = append(tup.Children, p.parseTarget())
	}
	tup.extend()
	return tup
}

func (p *parser) parseTarget() *Node {
	if p.at(tokOp, "*") {
		st := p.next()
		n := node(KindStar, st, p.parseTarget())
		n.Text = st.text
		return n
	}
	return p.parsePostfix()
}

// parseAtomName consumes a single identifier, for "as" aliases.
func (p *parser) parseAtomName() *Node {
	t := p.expect(tokName, "")
	return &Node{Kind: KindName, Text: t.text, Span: span(t)}
}

// parseExprList parses an expression optionally followed by comma-separated
// peers, producing a tuple node for the latter.
func (p *parser) parseExprList() *Node {
	first := p.parseExpr()
	if !p.at(tokOp, ",") {
		return first
	}
	tup := &Node{Kind: KindTuple, Span: first.Span, Children: []*Node{first}}
	for p.err == nil && p.accept(tokOp, ",") {
		if p.exprTerminator() {
			break
		}
		tup.Children = append(tup.Children, p.parseExpr())
	}
	tup.extend()
	return tup
}

func (p *parser) exprTerminator() bool {
	t := p.cur()
	if t.kind == tokNewline || t.kind == tokEOF || t.kind == tokDedent {
		return true
	}
	if t.kind == tokOp {
		switch t.text {
		case ")", "]", "}", ":", "=", ";":
			return true
		}
	}
	if t.kind == tokName && (t.text == "in" || t.text == "for" || t.text == "if" || t.text == "as") {
		return true
	}
	return false
}

func (p *parser) enter(t token) bool {
	p.depth++
	if p.depth > maxExprDepth {
		p.failf(t, "expression nesting too deep")
		return false
	}
	return true
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseExpr() *Node {
	t := p.cur()
	if !p.enter(t) {
		return &Node{Kind: KindName, Span: span(t)}
	}
	defer p.leave()
	if p.at(tokName, "lambda") {
		return p.parseLambda()
	}
	if p.at(tokName, "yield") || p.at(tokName, "await") {
		kw := p.next()
		n := node(KindBlock, kw)
		n.Text = kw.text
		if !p.exprTerminator() {
			p.accept(tokName, "from")
			n.Children = append(n.Children, p.parseExpr())
			n.extend()
		}
		return n
	}
	if p.at(tokOp, "*") || p.at(tokOp, "**") {
		st := p.next()
		n := node(KindStar, st, p.parseExpr())
		n.Text = st.text
		return n
	}
	cond := p.parseOr()
	if p.at(tokName, "if") {
		// conditional expression: value if test else orelse
		p.next()
		test := p.parseOr()
		n := node(KindCond, t, cond, test)
		if p.accept(tokName, "else") {
			n.Children = append(n.Children, p.parseExpr())
		}
		n.extend()
		return n
	}
	return cond
}

func (p *parser) parseLambda() *Node {
	t := p.expect(tokName, "lambda")
	n := node(KindLambda, t)
	for p.err == nil && !p.at(tokOp, ":") {
		if p.accept(tokOp, "*") {
			p.accept(tokOp, "*")
		}
		if p.cur().kind == tokName {
			pr := node(KindParam, p.cur())
			pr.Text = p.next().text
			if p.accept(tokOp, "=") {
				pr.Children = append(pr.Children, p.parseExpr())
				pr.extend()
			}
			n.Children = append(n.Children, pr)
		}
		if !p.accept(tokOp, ",") {
			break
		}
	}
	p.expect(tokOp, ":")
	n.Children = append(n.Children, p.parseExpr())
	n.extend()
	return n
}

func (p *parser) parseOr() *Node {
	left := p.parseAnd()
	for p.err == nil && p.at(tokName, "or") {
		t := p.next()
		n := node(KindBoolOp, t, left, p.parseAnd())
		n.Text = "or"
		left = n
	}
	return left
}

func (p *parser) parseAnd() *Node {
	left := p.parseNot()
	for p.err == nil && p.at(tokName, "and") {
		t := p.next()
		n := node(KindBoolOp, t, left, p.parseNot())
		n.Text = "and"
		left = n
	}
	return left
}

func (p *parser) parseNot() *Node {
	if p.at(tokName, "not") {
		t := p.next()
		n := node(KindUnaryOp, t, p.parseNot())
		n.Text = "not"
		return n
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() *Node {
	left := p.parseBitOr()
	for p.err == nil {
		t := p.cur()
		var op string
		if t.kind == tokOp {
			switch t.text {
			case "<", ">", "<=", ">=", "==", "!=":
				op = t.text
			}
		} else if t.kind == tokName {
			switch t.text {
			case "in":
				op = "in"
			case "is":
				op = "is"
			case "not":
				// "not in"
				if p.toks[p.i+1].kind == tokName && p.toks[p.i+1].text == "in" {
					op = "not in"
				}
			}
		}
		if op == "" {
			return left
		}
		p.next()
		if op == "not in" || (op == "is" && p.at(tokName, "not")) {
			p.accept(tokName, "in")
			p.accept(tokName, "not")
		}
		n := node(KindCompare, t, left, p.parseBitOr())
		n.Text = op
		left = n
	}
	return left
}

func (p *parser) binLevel(ops []string, sub func() *Node) *Node {
	left := sub()
	for p.err == nil && p.cur().kind == tokOp {
		matched := ""
		for _, op := range ops {
			if p.cur().text == op {
				matched = op
				break
			}
		}
		if matched == "" {
			break
		}
		t := p.next()
		n := node(KindBinOp, t, left, sub())
		n.Text = matched
		left = n
	}
	return left
}

func (p *parser) parseBitOr() *Node {
	return p.binLevel([]string{"|"}, p.parseBitXor)
}

func (p *parser) parseBitXor() *Node {
	return p.binLevel([]string{"^"}, p.parseBitAnd)
}

func (p *parser) parseBitAnd() *Node {
	return p.binLevel([]string{"&"}, p.parseShift)
}

func (p *parser) parseShift() *Node {
	return p.binLevel([]string{"<<", ">>"}, p.parseArith)
}

func (p *parser) parseArith() *Node {
	return p.binLevel([]string{"+", "-"}, p.parseTerm)
}

func (p *parser) parseTerm() *Node {
	return p.binLevel([]string{"*", "/", "//", "%", "@"}, p.parseUnary)
}

func (p *parser) parseUnary() *Node {
	t := p.cur()
	if t.kind == tokOp && (t.text == "-" || t.text == "+" || t.text == "~") {
		p.next()
		n := node(KindUnaryOp, t, p.parseUnary())
		n.Text = t.text
		return n
	}
	return p.parsePower()
}

func (p *parser) parsePower() *Node {
	base := p.parsePostfix()
	if p.at(tokOp, "**") {
		t := p.next()
		n := node(KindBinOp, t, base, p.parseUnary())
		n.Text = "**"
		return n
	}
	return base
}

func (p *parser) parsePostfix() *Node {
	n := p.parseAtom()
	for p.err == nil {
		switch {
		case p.at(tokOp, "."):
			t := p.next()
			attr := p.expect(tokName, "")
			nn := node(KindAttribute, t, n)
			nn.Text = attr.text
			nn.Span.End = attr.end
			n = nn
		case p.at(tokOp, "("):
			t := p.next()
			call := node(KindCall, t, n)
			for p.err == nil && !p.at(tokOp, ")") {
				p.skipNewlines()
				if p.at(tokOp, ")") {
					break
				}
				call.Children = append(call.Children, p.parseCallArg())
				p.skipNewlines()
				if !p.accept(tokOp, ",") {
					break
				}
			}
			end := p.expect(tokOp, ")")
			call.extend()
			call.Span.End = end.end
			n = call
		case p.at(tokOp, "["):
			t := p.next()
			idx := p.parseSubscriptIndex()
			end := p.expect(tokOp, "]")
			nn := node(KindSubscript, t, n, idx)
			nn.Span.End = end.end
			n = nn
		default:
			return n
		}
	}
	return n
}

func (p *parser) parseCallArg() *Node {
	if p.at(tokOp, "*") || p.at(tokOp, "**") {
		t := p.next()
		n := node(KindStar, t, p.parseExpr())
		n.Text = t.text
		return n
	}
	// keyword argument: name=value
	if p.cur().kind == tokName && p.toks[p.i+1].kind == tokOp && p.toks[p.i+1].text == "=" {
		name := p.next()
		p.next() // '='
		kw := node(KindKeyword, name, p.parseExpr())
		kw.Text = name.text
		return kw
	}
	arg := p.parseExpr()
	if p.at(tokName, "for") {
		return p.parseCompClauses(arg)
	}
	return arg
}

func (p *parser) parseSubscriptIndex() *Node {
	t := p.cur()
	if p.at(tokOp, ":") {
		return p.parseSliceTail(t, nil)
	}
	first := p.parseExpr()
	if p.at(tokOp, ":") {
		return p.parseSliceTail(t, first)
	}
	if p.at(tokOp, ",") {
		tup := &Node{Kind: KindTuple, Span: first.Span, Children: []*Node{first}}
		for p.err == nil && p.accept(tokOp, ",") {
			if p.at(tokOp, "]") {
				break
			}
			tup.Children = append(tup.Children, p.parseExpr())
		}
		tup.extend()
		return tup
	}
	return first
}

// parseSliceTail keeps positional slots (lower, upper, step) so that
// consumers can tell s[:-1] apart from s[::-1]; omitted parts become empty
// name nodes.
func (p *parser) parseSliceTail(t token, lower *Node) *Node {
	n := node(KindSlice, t)
	empty := func() *Node { return &Node{Kind: KindName, Span: span(t)} }
	if lower == nil {
		lower = empty()
	}
	n.Children = append(n.Children, lower)
	for p.err == nil && p.accept(tokOp, ":") {
		if p.at(tokOp, "]") || p.at(tokOp, ":") {
			n.Children = append(n.Children, empty())
			continue
		}
		n.Children = append(n.Children, p.parseExpr())
	}
	n.extend()
	return n
}

func (p *parser) parseCompClauses(elt *Node) *Node {
	n := &Node{Kind: KindComp, Span: elt.Span, Children: []*Node{elt}}
	for p.err == nil && p.at(tokName, "for") {
		p.next()
		n.Children = append(n.Children, p.parseTargetList())
		p.expect(tokName, "in")
		n.Children = append(n.Children, p.parseOr())
		for p.err == nil && p.at(tokName, "if") {
			p.next()
			n.Children = append(n.Children, p.parseOr())
		}
	}
	n.extend()
	return n
}

func (p *parser) parseAtom() *Node {
	t := p.cur()
	switch t.kind {
	case tokName:
		p.next()
		// walrus: name := expr
		if p.at(tokOp, ":=") {
			w := p.next()
			target := &Node{Kind: KindName, Text: t.text, Span: span(t)}
			n := node(KindBinOp, w, target, p.parseExpr())
			n.Text = ":="
			return n
		}
		return &Node{Kind: KindName, Text: t.text, Span: span(t)}
	case tokNumber:
		p.next()
		return &Node{Kind: KindNum, Text: t.text, Span: span(t)}
	case tokString:
		return p.parseStringAtom()
	case tokOp:
		switch t.text {
		case "(":
			p.next()
			p.skipNewlines()
			if p.accept(tokOp, ")") {
				return &Node{Kind: KindTuple, Span: span(t)}
			}
			inner := p.parseExpr()
			p.skipNewlines()
			if p.at(tokName, "for") {
				inner = p.parseCompClauses(inner)
			} else if p.at(tokOp, ",") {
				tup := &Node{Kind: KindTuple, Span: span(t), Children: []*Node{inner}}
				for p.err == nil && p.accept(tokOp, ",") {
					p.skipNewlines()
					if p.at(tokOp, ")") {
						break
					}
					tup.Children = append(tup.Children, p.parseExpr())
					p.skipNewlines()
				}
				tup.extend()
				inner = tup
			}
			p.skipNewlines()
			p.expect(tokOp, ")")
			return inner
		case "[":
			return p.parseListAtom()
		case "{":
			return p.parseDictOrSetAtom()
		case "...":
			p.next()
			return &Node{Kind: KindName, Text: "...", Span: span(t)}
		}
	}
	p.failf(t, "unexpected token")
	p.next()
	return &Node{Kind: KindName, Span: span(t)}
}

func (p *parser) parseListAtom() *Node {
	t := p.expect(tokOp, "[")
	n := node(KindList, t)
	p.skipNewlines()
	if p.accept(tokOp, "]") {
		return n
	}
	first := p.parseExpr()
	p.skipNewlines()
	if p.at(tokName, "for") {
		comp := p.parseCompClauses(first)
		p.skipNewlines()
		p.expect(tokOp, "]")
		n.Children = append(n.Children, comp)
		n.extend()
		return n
	}
	n.Children = append(n.Children, first)
	for p.err == nil && p.accept(tokOp, ",") {
		p.skipNewlines()
		if p.at(tokOp, "]") {
			break
		}
		n.Children = append(n.Children, p.parseExpr())
		p.skipNewlines()
	}
	p.skipNewlines()
	end := p.expect(tokOp, "]")
	n.extend()
	n.Span.End = end.end
	return n
}

func (p *parser) parseDictOrSetAtom() *Node {
	t := p.expect(tokOp, "{")
	p.skipNewlines()
	if p.accept(tokOp, "}") {
		return node(KindDict, t)
	}
	if p.at(tokOp, "**") {
		p.next()
		first := p.parseExpr()
		n := node(KindDict, t, first)
		p.finishBraced(n, true)
		return n
	}
	first := p.parseExpr()
	p.skipNewlines()
	if p.accept(tokOp, ":") {
		val := p.parseExpr()
		pair := &Node{Kind: KindPair, Span: first.Span, Children: []*Node{first, val}}
		pair.extend()
		n := node(KindDict, t, pair)
		if p.at(tokName, "for") {
			comp := p.parseCompClauses(pair)
			n.Children = []*Node{comp}
		}
		p.finishBraced(n, true)
		return n
	}
	n := node(KindSet, t, first)
	if p.at(tokName, "for") {
		n.Children = []*Node{p.parseCompClauses(first)}
	}
	p.finishBraced(n, false)
	return n
}

func (p *parser) finishBraced(n *Node, dict bool) {
	for p.err == nil && p.accept(tokOp, ",") {
		p.skipNewlines()
		if p.at(tokOp, "}") {
			break
		}
		if p.accept(tokOp, "**") {
			n.Children = append(n.Children, p.parseExpr())
			p.skipNewlines()
			continue
		}
		key := p.parseExpr()
		if dict && p.accept(tokOp, ":") {
			val := p.parseExpr()
			pair := &Node{Kind: KindPair, Span: key.Span, Children: []*Node{key, val}}
			pair.extend()
			n.Children = append(n.Children, pair)
		} else {
			n.Children = append(n.Children, key)
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	end := p.expect(tokOp, "}")
	n.extend()
	n.Span.End = end.end
}

// parseStringAtom handles implicit adjacent-literal concatenation and
// f-string decomposition into literal and interpolation parts.
func (p *parser) parseStringAtom() *Node {
	t := p.next()
	n := &Node{Kind: KindStr, Text: t.str, Flags: t.flags, Span: span(t)}
	if t.flags&FlagFString != 0 {
		n.Children = fstringParts(t)
	}
	// adjacent literals concatenate: "a" "b"
	for p.cur().kind == tokString {
		nt := p.next()
		n.Text += nt.str
		n.Flags |= nt.flags
		n.Span.End = nt.end
		if nt.flags&FlagFString != 0 {
			n.Children = append(n.Children, fstringParts(nt)...)
		}
	}
	return n
}

// fstringParts splits an f-string body into literal chunks and interpolation
// holes. Holes whose expression is a bare (possibly dotted) identifier keep
// that text so the resolver can substitute the bound value.
func fstringParts(t token) []*Node {
	var parts []*Node
	s := t.str
	lit := strings.Builder{}
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, &Node{Kind: KindStr, Text: lit.String(), Span: span(t)})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '{' {
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			j := i + 1
			depth := 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			inner := strings.TrimSpace(s[i+1 : j-1])
			if k := strings.IndexAny(inner, "!:"); k >= 0 {
				inner = inner[:k] // strip conversion/format spec
			}
			flush()
			hole := &Node{Kind: KindFStrExpr, Span: span(t)}
			if isDottedIdent(inner) {
				hole.Text = inner
			}
			parts = append(parts, hole)
			i = j - 1
			continue
		}
		if c == '}' && i+1 < len(s) && s[i+1] == '}' {
			lit.WriteByte('}')
			i++
			continue
		}
		lit.WriteByte(c)
	}
	flush()
	return parts
}

func isDottedIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if i == 0 && !isIdentStart(r) {
				return false
			}
			if i > 0 && !isIdentPart(r) {
				return false
			}
		}
	}
	return true
}
