package params

import (
	"fmt"
	"strings"
	"time"
)

// Values holds the parsed parameters of one tree level.
type Values struct {
	m     map[string]any
	set   map[string]bool
	order []string
}

func newValues() Values {
	return Values{m: make(map[string]any), set: make(map[string]bool)}
}

// ValuesOf builds Values from a plain map, every entry counting as set.
// names fixes the order reported by Names; without it the order is the
// map's.
func ValuesOf(m map[string]any, names ...string) Values {
	v := newValues()
	if len(names) == 0 {
		for k := range m {
			names = append(names, k)
		}
	}
	for _, k := range names {
		if val, ok := m[k]; ok {
			v.put(k, val, true)
		}
	}
	return v
}

func (v *Values) put(name string, val any, explicit bool) {
	if v.m == nil {
		*v = newValues()
	}
	if _, exists := v.m[name]; !exists {
		v.order = append(v.order, name)
	}
	v.m[name] = val
	if explicit {
		v.set[name] = true
	}
}

// Get returns the value bound to name.
func (v Values) Get(name string) (any, bool) {
	val, ok := v.m[name]
	return val, ok
}

// IsSet reports whether name was given on the command line rather than
// taken from its default.
func (v Values) IsSet(name string) bool {
	return v.set[name]
}

// Names returns the bound parameter names in declaration order.
func (v Values) Names() []string {
	return append([]string(nil), v.order...)
}

// Len returns the number of bound parameters.
func (v Values) Len() int {
	return len(v.m)
}

// Scope is one layer of parameter values in an invocation's scope chain.
// A scope never changes after creation; the parent link is a read-only
// back-reference and the chain always ends at a root scope without parent.
type Scope struct {
	name   string
	values Values
	parent *Scope
	depth  int
}

// NewRoot creates the scope of the tree's root node.
func NewRoot(name string, values Values) *Scope {
	return &Scope{name: name, values: values}
}

// Push layers the scope of a child node on top of s.
func (s *Scope) Push(name string, values Values) *Scope {
	return &Scope{name: name, values: values, parent: s, depth: s.depth + 1}
}

// Name returns the name of the node that owns the scope.
func (s *Scope) Name() string {
	return s.name
}

// Values returns the values bound at this level.
func (s *Scope) Values() Values {
	return s.values
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth returns the distance from the root scope, which has depth 0.
func (s *Scope) Depth() int {
	return s.depth
}

// Up returns the scope n levels above s.
func (s *Scope) Up(n int) (*Scope, bool) {
	if n < 0 || n > s.depth {
		return nil, false
	}
	cur := s
	for ; n > 0; n-- {
		cur = cur.parent
	}
	return cur, true
}

// At returns the ancestor (or s itself) at the given depth from the root.
func (s *Scope) At(depth int) (*Scope, bool) {
	return s.Up(s.depth - depth)
}

// Chain returns every scope from the root down to s.
func (s *Scope) Chain() []*Scope {
	out := make([]*Scope, s.depth+1)
	for cur := s; cur != nil; cur = cur.parent {
		out[cur.depth] = cur
	}
	return out
}

// Lookup finds the nearest binding of name, starting at s and walking
// towards the root.
func (s *Scope) Lookup(name string) (any, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values.Get(name); ok {
			return v, cur, true
		}
	}
	return nil, nil, false
}

// Get returns the value of name bound at this level.
func (s *Scope) Get(name string) (any, bool) {
	return s.values.Get(name)
}

// IsSet reports whether name was given explicitly at this level.
func (s *Scope) IsSet(name string) bool {
	return s.values.IsSet(name)
}

func (s *Scope) Bool(name string) bool {
	v, _ := get[bool](s, name)
	return v
}

func (s *Scope) String(name string) string {
	v, _ := get[string](s, name)
	return v
}

func (s *Scope) Int(name string) int {
	v, _ := get[int](s, name)
	return v
}

func (s *Scope) Float(name string) float64 {
	v, _ := get[float64](s, name)
	return v
}

func (s *Scope) Duration(name string) time.Duration {
	v, _ := get[time.Duration](s, name)
	return v
}

func (s *Scope) Strings(name string) []string {
	v, _ := get[[]string](s, name)
	return v
}

func get[T any](s *Scope, name string) (T, bool) {
	var zero T
	raw, ok := s.values.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Value returns parameter name of the ancestor at the given depth from the
// root, typed as T.
func Value[T any](s *Scope, depth int, name string) (T, error) {
	var zero T
	anc, ok := s.At(depth)
	if !ok {
		return zero, fmt.Errorf("no scope at depth %d (chain depth %d)", depth, s.Depth())
	}
	raw, ok := anc.values.Get(name)
	if !ok {
		return zero, fmt.Errorf("parameter %q not declared by %q", name, anc.name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("parameter %q of %q is %T, not %T", name, anc.name, raw, zero)
	}
	return v, nil
}

// Format renders a bound value the way it would be written on the command
// line.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, " ")
	default:
		return fmt.Sprint(x)
	}
}
