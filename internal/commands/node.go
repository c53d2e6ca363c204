package commands

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/footprint-tools/cmdtree/internal/params"
)

// Kind tells modules and actions apart.
type Kind int

const (
	KindModule Kind = iota
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Doc is descriptive metadata shown in help output.
type Doc struct {
	About     string
	LongAbout string
	Usage     string
	Version   string
	Author    string
}

// Node is one command in the tree. Modules group children and may name a
// default action; actions carry a handler. Nodes are immutable once the
// tree has been built.
type Node struct {
	Name          string
	Path          []string
	Kind          Kind
	Params        params.Schema
	Doc           Doc
	Default       string
	AllowExternal bool
	Hidden        bool
	Category      string
	Handler       Handler

	children *orderedmap.OrderedMap[string, *Node]
}

func newNode(name string, path []string, kind Kind) *Node {
	return &Node{
		Name:     name,
		Path:     path,
		Kind:     kind,
		children: orderedmap.New[string, *Node](),
	}
}

// Child returns the child with the given name. Lookup is exact and
// case-sensitive.
func (n *Node) Child(name string) (*Node, bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children.Get(name)
}

// Children returns the children in registration order.
func (n *Node) Children() []*Node {
	if n.children == nil {
		return nil
	}
	out := make([]*Node, 0, n.children.Len())
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// VisibleChildren returns the children not marked hidden.
func (n *Node) VisibleChildren() []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// ChildNames returns the children's names in registration order.
func (n *Node) ChildNames() []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name)
	}
	return out
}

// DefaultAction returns the module's default action, if any.
func (n *Node) DefaultAction() (*Node, bool) {
	if n.Kind != KindModule || n.Default == "" {
		return nil, false
	}
	return n.Child(n.Default)
}

// Depth returns the distance from the root.
func (n *Node) Depth() int {
	return len(n.Path)
}

// Display returns the space separated command path, prefixed by the
// program name.
func (n *Node) Display(program string) string {
	if len(n.Path) == 0 {
		return program
	}
	return program + " " + strings.Join(n.Path, " ")
}

// Summary returns the one-line description of the node.
func (n *Node) Summary() string {
	if i := strings.IndexByte(n.Doc.About, '\n'); i >= 0 {
		return n.Doc.About[:i]
	}
	return n.Doc.About
}

// Walk visits n and its descendants depth first in registration order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Actions returns every action below n (or n itself when it is an action).
// Hidden nodes are skipped when visibleOnly is set.
func (n *Node) Actions(visibleOnly bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if visibleOnly && cur.Hidden {
			return
		}
		switch cur.Kind {
		case KindAction:
			out = append(out, cur)
		case KindModule:
			for _, c := range cur.Children() {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
