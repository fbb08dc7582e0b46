package detectors

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// popularPackages are high-download PyPI names worth squatting on.
var popularPackages = []string{
	"requests", "urllib3", "numpy", "pandas", "django", "flask",
	"cryptography", "pillow", "setuptools", "colorama", "boto3",
	"certifi", "charset_normalizer", "python_dateutil",
}

// TyposquatImport flags imports one edit away from a popular package name.
// Short names produce too many accidental neighbors, so only names of five
// or more characters are compared.
var TyposquatImport = Detector{
	ID:       "typosquat_import",
	Category: types.CatOther,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindImport, parser.KindImportFrom},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		var out []types.Finding
		switch n.Kind {
		case parser.KindImport:
			for _, item := range n.Children {
				root := strings.SplitN(item.Text, ".", 2)[0]
				if near := nearPopular(root); near != "" {
					out = append(out,
						ctx.Finding("typosquat_import", types.CatOther, types.SevMed, 0.6, item,
							"import "+root+" (near "+near+")"))
				}
			}
		case parser.KindImportFrom:
			root := strings.SplitN(strings.TrimLeft(n.Text, "."), ".", 2)[0]
			if near := nearPopular(root); near != "" {
				out = append(out,
					ctx.Finding("typosquat_import", types.CatOther, types.SevMed, 0.6, n,
						"from "+root+" (near "+near+")"))
			}
		}
		return out
	},
}

// nearPopular returns the popular package name the candidate is one edit
// away from, or "" when it is either exact or too far.
func nearPopular(name string) string {
	if len(name) < 5 {
		return ""
	}
	norm := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for _, pop := range popularPackages {
		if norm == pop {
			return ""
		}
	}
	for _, pop := range popularPackages {
		// DefaultOptions costs a substitution 2 (delete + insert), so one
		// edited character scores 1 or 2 depending on the edit type
		d := levenshtein.DistanceForStrings([]rune(norm), []rune(pop), levenshtein.DefaultOptions)
		if d >= 1 && d <= 2 {
			return pop
		}
	}
	return ""
}
