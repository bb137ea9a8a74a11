// Package xmltree loads an XML document into an immutable element tree and
// offers nil-safe lookups with compiled, namespace-aware paths.
//
// Every lookup on a missing node yields a missing result instead of panicking,
// so callers can chain Find calls without intermediate checks.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

var ErrNoRoot = errors.New("xml document has no root element")

// Attr is one attribute in document order. Namespaced attribute names are
// rendered as "{uri}local".
type Attr struct {
	Name  string
	Value string
}

type Node struct {
	Name     xml.Name
	Attrs    []Attr
	Children []*Node
}

type Document struct {
	Root *Node
}

// Parse reads a whole document. Text content is discarded; only elements and
// attributes are kept.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name, Attrs: convertAttrs(t.Attr)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: %s", t.Name.Local)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	if len(stack) != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return &Document{Root: root}, nil
}

func ParseBytes(raw []byte) (*Document, error) {
	return Parse(bytes.NewReader(raw))
}

func convertAttrs(in []xml.Attr) []Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		name := a.Name.Local
		if a.Name.Space != "" {
			name = "{" + a.Name.Space + "}" + a.Name.Local
		}
		out = append(out, Attr{Name: name, Value: a.Value})
	}
	return out
}

// Attr returns the named attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrPtr is Attr returning nil when the node or the attribute is missing.
func (n *Node) AttrPtr(name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// Attributes returns a copy of all attributes in document order.
func (n *Node) Attributes() []Attr {
	if n == nil || len(n.Attrs) == 0 {
		return nil
	}
	return append([]Attr(nil), n.Attrs...)
}

func (n *Node) Find(p Path) *Node {
	if n == nil {
		return nil
	}
	matches := p.eval(n, 1)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (n *Node) FindAll(p Path) []*Node {
	if n == nil {
		return nil
	}
	return p.eval(n, -1)
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name xml.Name) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (d *Document) Find(p Path) *Node {
	if d == nil {
		return nil
	}
	return d.Root.Find(p)
}

func (d *Document) FindAll(p Path) []*Node {
	if d == nil {
		return nil
	}
	return d.Root.FindAll(p)
}
