package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/nightjar-sec/nightjar/internal/types"
)

// Annotate prints the source line a finding points at, syntax-highlighted,
// with a caret under the offending column.
func Annotate(w io.Writer, f types.Finding, source []byte, noColor bool) {
	line := extractLine(source, f.Span.Line)
	if line == "" {
		return
	}
	rendered := line
	if !noColor {
		rendered = highlightPython(line)
	}
	fmt.Fprintf(w, "%s:%d:%d [%s] %s\n", f.Path, f.Span.Line, f.Span.Col, f.Detector, f.Evidence)
	fmt.Fprintf(w, "  %s\n", strings.TrimRight(rendered, "\n"))
	if f.Span.Col > 0 && f.Span.Col <= len(line)+1 {
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", f.Span.Col-1))
	}
}

// extractLine returns the 1-based line from source, without its newline.
func extractLine(source []byte, line int) string {
	if line < 1 {
		return ""
	}
	cur := 1
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			if cur == line {
				return string(source[start:i])
			}
			cur++
			start = i + 1
		}
	}
	if cur == line {
		return string(source[start:])
	}
	return ""
}

func highlightPython(code string) string {
	lexer := lexers.Get("python")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
