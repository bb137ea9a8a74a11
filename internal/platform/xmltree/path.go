package xmltree

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type step struct {
	descendant bool
	name       xml.Name
	any        bool
}

// Path is a compiled lookup expression. Supported syntax is the subset used
// for document navigation: an optional leading ".", "/" for a child step,
// "//" for a descendant step, "prefix:local" names and "*".
type Path struct {
	expr  string
	steps []step
}

func (p Path) String() string {
	return p.expr
}

// Compile resolves prefixes against ns once so evaluation never touches the
// namespace map.
func Compile(expr string, ns map[string]string) (Path, error) {
	rest := strings.TrimSpace(expr)
	if rest == "" {
		return Path{}, fmt.Errorf("empty path")
	}
	rest = strings.TrimPrefix(rest, ".")
	if strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, "//") {
		rest = rest[1:]
	}

	out := Path{expr: expr}
	for rest != "" {
		descendant := false
		if strings.HasPrefix(rest, "//") {
			descendant = true
			rest = rest[2:]
		} else if strings.HasPrefix(rest, "/") {
			rest = rest[1:]
		}

		var token string
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			token, rest = rest[:idx], rest[idx:]
		} else {
			token, rest = rest, ""
		}
		if token == "" {
			return Path{}, fmt.Errorf("path %q has an empty step", expr)
		}

		st := step{descendant: descendant}
		switch {
		case token == "*":
			st.any = true
		case strings.Contains(token, ":"):
			prefix, local, _ := strings.Cut(token, ":")
			uri, ok := ns[prefix]
			if !ok {
				return Path{}, fmt.Errorf("path %q uses unknown prefix %q", expr, prefix)
			}
			if local == "" {
				return Path{}, fmt.Errorf("path %q has an empty local name", expr)
			}
			st.name = xml.Name{Space: uri, Local: local}
		default:
			st.name = xml.Name{Local: token}
		}
		out.steps = append(out.steps, st)
	}
	return out, nil
}

func MustCompile(expr string, ns map[string]string) Path {
	p, err := Compile(expr, ns)
	if err != nil {
		panic(err)
	}
	return p
}

func (s step) matches(n *Node) bool {
	return s.any || n.Name == s.name
}

// eval returns matches in document order without duplicates. limit < 0 means
// no limit.
func (p Path) eval(from *Node, limit int) []*Node {
	if len(p.steps) == 0 {
		return nil
	}

	current := []*Node{from}
	for i, st := range p.steps {
		last := i == len(p.steps)-1
		seen := make(map[*Node]struct{})
		next := make([]*Node, 0, len(current))
		collect := func(n *Node) bool {
			if _, dup := seen[n]; dup {
				return true
			}
			seen[n] = struct{}{}
			next = append(next, n)
			return !(last && limit > 0 && len(next) >= limit)
		}

	walk:
		for _, ctx := range current {
			if st.descendant {
				if !walkDescendants(ctx, st, collect) {
					break walk
				}
				continue
			}
			for _, c := range ctx.Children {
				if st.matches(c) && !collect(c) {
					break walk
				}
			}
		}

		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

func walkDescendants(n *Node, st step, visit func(*Node) bool) bool {
	for _, c := range n.Children {
		if st.matches(c) && !visit(c) {
			return false
		}
		if !walkDescendants(c, st, visit) {
			return false
		}
	}
	return true
}
