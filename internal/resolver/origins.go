package resolver

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
)

// callOrigins classifies what kind of data a call to the given dotted API
// produces. Runtime-only sources (network, file, environment) are what keeps
// the folder honest: their results must never become constants.
func callOrigins(path []string) Origin {
	switch strings.Join(path, ".") {
	case "requests.get", "requests.post", "requests.put", "requests.request",
		"urllib.request.urlopen", "urllib.urlopen", "urllib2.urlopen",
		"http.client.HTTPConnection", "http.client.HTTPSConnection",
		"socket.socket":
		return OriginNetwork
	case "open":
		return OriginFile
	case "os.getenv", "os.environ.get", "os.environ.copy":
		return OriginEnv
	case "os.uname", "os.getlogin", "os.getuid", "os.getgid", "os.getcwd",
		"getpass.getuser",
		"platform.system", "platform.platform", "platform.version",
		"platform.release", "platform.node", "platform.processor",
		"platform.machine", "platform.architecture", "platform.uname",
		"socket.gethostname", "socket.getfqdn", "socket.gethostbyname",
		"uuid.getnode":
		return OriginFingerprint
	case "base64.b64decode", "base64.urlsafe_b64decode", "binascii.a2b_base64",
		"binascii.unhexlify", "bytes.fromhex", "zlib.decompress",
		"codecs.decode", "marshal.loads", "pickle.loads",
		"base64.b64encode", "base64.urlsafe_b64encode", "binascii.hexlify",
		"binascii.b2a_base64", "zlib.compress":
		return OriginEncoded
	case "__import__", "getattr", "importlib.import_module":
		return OriginDynamic
	}
	// method suffixes on unresolvable receivers
	if len(path) > 0 {
		switch path[len(path)-1] {
		case "recv", "recvfrom":
			return OriginNetwork
		}
	}
	return 0
}

func attrOrigins(path []string) Origin {
	switch strings.Join(path, ".") {
	case "os.environ":
		return OriginEnv
	case "sys.argv", "sys.platform", "sys.version":
		return OriginFingerprint
	case "sys.modules":
		return OriginDynamic
	}
	return 0
}

const maxOriginDepth = 48

// Origins computes the provenance bitset of an expression subtree: which
// sources contributed to its value. Bounded by the same substitution budget
// as folding plus a structural depth cap.
func (r *Resolver) Origins(n *parser.Node) Origin {
	st := r.newState()
	return r.origins(n, st, 0)
}

func (r *Resolver) origins(n *parser.Node, st *state, depth int) Origin {
	if n == nil || depth > maxOriginDepth {
		return 0
	}
	var out Origin
	switch n.Kind {
	case parser.KindStr:
		out |= OriginLiteral
		for _, part := range n.Children {
			if part.Kind == parser.KindFStrExpr && part.Text != "" {
				out |= r.nameOrigins(n, strings.Split(part.Text, ".")[0], st, depth)
			}
		}
		return out
	case parser.KindNum:
		return OriginLiteral
	case parser.KindName:
		return r.nameOrigins(n, n.Text, st, depth)
	case parser.KindCall:
		if cp, _, ok := r.path(n.Callee(), st); ok {
			out |= callOrigins(cp)
		}
		// propagate through arguments and the receiver of common methods
		for _, c := range n.Children[1:] {
			out |= r.origins(c, st, depth+1)
		}
		if callee := n.Callee(); callee != nil && callee.Kind == parser.KindAttribute {
			switch callee.Text {
			case "get", "copy", "pop", "read", "text", "json", "items", "values",
				"encode", "decode", "strip", "replace", "lower", "upper", "split", "format":
				out |= r.origins(callee.Child(0), st, depth+1)
			}
		}
		return out
	case parser.KindAttribute:
		if ap, _, ok := r.path(n, st); ok {
			out |= attrOrigins(ap)
		}
		return out | r.origins(n.Child(0), st, depth+1)
	case parser.KindKeyword, parser.KindStar, parser.KindPair,
		parser.KindList, parser.KindTuple, parser.KindSet, parser.KindDict,
		parser.KindBinOp, parser.KindUnaryOp, parser.KindBoolOp,
		parser.KindCompare, parser.KindCond, parser.KindComp,
		parser.KindSubscript, parser.KindSlice, parser.KindFStrExpr:
		for _, c := range n.Children {
			out |= r.origins(c, st, depth+1)
		}
		return out
	}
	return out
}

func (r *Resolver) nameOrigins(at *parser.Node, name string, st *state, depth int) Origin {
	b := r.scopeOf(at).lookup(name)
	if b == nil || b.kind != bindAssign || b.value == nil {
		return 0
	}
	if _, busy := st.active[b.value]; busy {
		return 0
	}
	if !r.spend(st) {
		return 0
	}
	st.active[b.value] = struct{}{}
	defer delete(st.active, b.value)
	return r.origins(b.value, st, depth+1)
}
