package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind  tokKind
	text  string // raw text for names/numbers/ops
	str   string // decoded value for strings
	flags byte   // string flags
	pos   int    // byte offset of first char
	end   int    // byte offset past last char
	line  int    // 1-based
	col   int    // 1-based
}

type lexer struct {
	path    string
	src     []byte
	off     int
	line    int
	col     int
	indents []int
	depth   int // bracket nesting; newlines are insignificant inside brackets
	atLine  bool
	pending []token
	err     *ParseError
}

func newLexer(path string, src []byte) *lexer {
	return &lexer{path: path, src: src, line: 1, col: 1, indents: []int{0}, atLine: true}
}

func (l *lexer) failf(msg string) {
	if l.err == nil {
		l.err = &ParseError{Path: l.path, Line: l.line, Col: l.col, Msg: msg}
	}
}

func (l *lexer) peekByte() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) byteAt(i int) byte {
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.off < len(l.src); i++ {
		if l.src[l.off] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off++
	}
}

// tokens lexes the whole input up front. Returns the token stream and the
// first lexical error, if any.
func (l *lexer) tokens() ([]token, *ParseError) {
	var out []token
	for {
		t := l.next()
		if l.err != nil {
			return nil, l.err
		}
		out = append(out, t)
		if t.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) emit(kind tokKind, pos, end, line, col int, text string) token {
	return token{kind: kind, text: text, pos: pos, end: end, line: line, col: col}
}

func (l *lexer) next() token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}
	if l.atLine && l.depth == 0 {
		if t, ok := l.lineStart(); ok {
			return t
		}
	}
	l.skipSpaces()
	pos, line, col := l.off, l.line, l.col
	c := l.peekByte()
	switch {
	case c == 0:
		// Flush remaining dedents at EOF.
		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, l.emit(tokDedent, pos, pos, line, col, ""))
		}
		l.pending = append(l.pending, l.emit(tokEOF, pos, pos, line, col, ""))
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	case c == '#':
		for l.peekByte() != '\n' && l.peekByte() != 0 {
			l.advance(1)
		}
		return l.next()
	case c == '\n':
		l.advance(1)
		if l.depth > 0 {
			return l.next()
		}
		l.atLine = true
		return l.emit(tokNewline, pos, pos+1, line, col, "\n")
	case c == '\\' && l.byteAt(l.off+1) == '\n':
		l.advance(2)
		return l.next()
	case c == '\'' || c == '"':
		return l.lexString(pos, line, col, 0)
	case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
		return l.lexNameOrPrefixed(pos, line, col)
	case c >= '0' && c <= '9':
		return l.lexNumber(pos, line, col)
	case c == '.' && l.byteAt(l.off+1) >= '0' && l.byteAt(l.off+1) <= '9':
		return l.lexNumber(pos, line, col)
	default:
		return l.lexOp(pos, line, col)
	}
}

// lineStart measures indentation and emits INDENT/DEDENT. Returns false when
// the line is blank or comment-only and lexing should continue.
func (l *lexer) lineStart() (token, bool) {
	l.atLine = false
	width := 0
	for {
		c := l.peekByte()
		if c == ' ' {
			width++
			l.advance(1)
		} else if c == '\t' {
			width += 8 - width%8
			l.advance(1)
		} else {
			break
		}
	}
	c := l.peekByte()
	if c == '\n' || c == '#' || c == '\r' {
		if c == '\r' {
			l.advance(1)
		}
		return token{}, false // blank line; no indent bookkeeping
	}
	if c == 0 {
		return token{}, false
	}
	cur := l.indents[len(l.indents)-1]
	pos, line, col := l.off, l.line, l.col
	if width > cur {
		l.indents = append(l.indents, width)
		return l.emit(tokIndent, pos, pos, line, col, ""), true
	}
	if width < cur {
		var toks []token
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			toks = append(toks, l.emit(tokDedent, pos, pos, line, col, ""))
		}
		if l.indents[len(l.indents)-1] != width {
			l.failf("inconsistent indentation")
			return token{}, false
		}
		l.pending = append(l.pending, toks[1:]...)
		return toks[0], true
	}
	return token{}, false
}

func (l *lexer) skipSpaces() {
	for {
		c := l.peekByte()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance(1)
			continue
		}
		return
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) lexNameOrPrefixed(pos, line, col int) token {
	start := l.off
	for l.off < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.off:])
		if !isIdentPart(r) {
			break
		}
		l.advance(size)
	}
	word := string(l.src[start:l.off])
	// String prefix directly followed by a quote: r'', b"", f''', rb"" etc.
	if len(word) <= 2 && (l.peekByte() == '\'' || l.peekByte() == '"') {
		var flags byte
		valid := true
		for _, r := range strings.ToLower(word) {
			switch r {
			case 'r':
				flags |= FlagRaw
			case 'b':
				flags |= FlagBytes
			case 'f':
				flags |= FlagFString
			case 'u':
			default:
				valid = false
			}
		}
		if valid {
			return l.lexString(pos, line, col, flags)
		}
	}
	return l.emit(tokName, pos, l.off, line, col, word)
}

func (l *lexer) lexNumber(pos, line, col int) token {
	start := l.off
	prev := byte(0)
	for l.off < len(l.src) {
		c := l.src[l.off]
		ok := c >= '0' && c <= '9' || c == '.' || c == '_' ||
			c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' ||
			c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'j' || c == 'J' ||
			(c == '+' || c == '-') && (prev == 'e' || prev == 'E')
		if !ok {
			break
		}
		prev = c
		l.advance(1)
	}
	return l.emit(tokNumber, pos, l.off, line, col, string(l.src[start:l.off]))
}

func (l *lexer) lexString(pos, line, col int, flags byte) token {
	quote := l.peekByte()
	l.advance(1)
	triple := l.peekByte() == quote && l.byteAt(l.off+1) == quote
	if triple {
		l.advance(2)
	}
	var sb strings.Builder
	for {
		c := l.peekByte()
		if c == 0 {
			l.failf("unterminated string literal")
			return token{}
		}
		if c == quote {
			if !triple {
				l.advance(1)
				break
			}
			if l.byteAt(l.off+1) == quote && l.byteAt(l.off+2) == quote {
				l.advance(3)
				break
			}
			sb.WriteByte(c)
			l.advance(1)
			continue
		}
		if c == '\n' && !triple {
			l.failf("newline in string literal")
			return token{}
		}
		if c == '\\' && flags&FlagRaw == 0 {
			l.advance(1)
			sb.WriteString(decodeEscape(l))
			continue
		}
		if c == '\\' {
			// raw string: keep the backslash and the escaped char
			sb.WriteByte(c)
			l.advance(1)
			if n := l.peekByte(); n != 0 {
				sb.WriteByte(n)
				l.advance(1)
			}
			continue
		}
		sb.WriteByte(c)
		l.advance(1)
	}
	t := l.emit(tokString, pos, l.off, line, col, "")
	t.str = sb.String()
	t.flags = flags
	return t
}

func decodeEscape(l *lexer) string {
	c := l.peekByte()
	l.advance(1)
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '0':
		return "\x00"
	case 'a':
		return "\a"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '\\':
		return "\\"
	case '\'':
		return "'"
	case '"':
		return "\""
	case '\n':
		return ""
	case 'x':
		return string(rune(l.hexDigits(2)))
	case 'u':
		return string(rune(l.hexDigits(4)))
	case 'U':
		return string(rune(l.hexDigits(8)))
	default:
		return "\\" + string(c)
	}
}

func (l *lexer) hexDigits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		c := l.peekByte()
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return v
		}
		v = v<<4 | d
		l.advance(1)
	}
	if v > utf8.MaxRune {
		v = utf8.RuneError
	}
	return v
}

var multiOps = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

func (l *lexer) lexOp(pos, line, col int) token {
	rest := l.src[l.off:]
	for _, op := range multiOps {
		if len(rest) >= len(op) && string(rest[:len(op)]) == op {
			l.advance(len(op))
			return l.emit(tokOp, pos, l.off, line, col, op)
		}
	}
	c := l.peekByte()
	switch c {
	case '(', '[', '{':
		l.depth++
	case ')', ']', '}':
		if l.depth > 0 {
			l.depth--
		}
	}
	if strings.IndexByte("()[]{}+-*/%@&|^~<>=,.:;", c) < 0 {
		l.failf("unexpected character " + string(rune(c)))
		return token{}
	}
	l.advance(1)
	return l.emit(tokOp, pos, l.off, line, col, string(c))
}
