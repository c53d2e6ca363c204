package commands

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// ReservedHelp is the child name taken by the help command.
const ReservedHelp = "help"

// ReservedTaskHelp is the leading token that requests help in task mode.
const ReservedTaskHelp = "h"

type buildOptions struct {
	tasks *TaskConfig
	units map[string][]Declaration
}

// Option configures Build.
type Option func(*buildOptions)

// WithTasks enables flat task addressing.
func WithTasks(cfg TaskConfig) Option {
	return func(o *buildOptions) {
		c := cfg
		o.tasks = &c
	}
}

// WithUnit registers a reusable subtree that Include declarations can
// splice into the tree. Paths inside a unit are relative to the include
// point; a declaration with an empty path describes the included node
// itself.
func WithUnit(name string, decls ...Declaration) Option {
	return func(o *buildOptions) {
		o.units[name] = decls
	}
}

// Build assembles and validates a tree from declarations. Declarations may
// come in any order as long as every parent is declared; siblings keep
// their relative declaration order.
func Build(decls []Declaration, opts ...Option) (*Tree, error) {
	o := buildOptions{units: make(map[string][]Declaration)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tasks != nil {
		if err := o.tasks.validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	flat, err := expand(decls, nil, o.units, nil)
	if err != nil {
		return nil, err
	}

	var root *Node
	var rest []Declaration
	for _, d := range flat {
		if len(d.Path) > 0 {
			rest = append(rest, d)
			continue
		}
		if root != nil {
			return nil, configErr(nil, "root declared twice")
		}
		if d.Kind != KindModule {
			return nil, configErr(nil, "root must be a module")
		}
		if strings.TrimSpace(d.Name) == "" {
			return nil, configErr(nil, "root has no name")
		}
		root = fromDeclaration(d.Name, nil, d)
	}
	if root == nil {
		return nil, configErr(nil, "no root declared")
	}

	sort.SliceStable(rest, func(i, j int) bool {
		return len(rest[i].Path) < len(rest[j].Path)
	})

	for _, d := range rest {
		parentPath, name := d.Path[:len(d.Path)-1], d.Path[len(d.Path)-1]
		parent, ok := (&Tree{Root: root}).Find(parentPath)
		if !ok {
			return nil, configErr(d.Path, "parent %q is not declared", strings.Join(parentPath, " "))
		}
		if parent.Kind == KindAction {
			return nil, configErr(d.Path, "action %q cannot have subcommands", parent.Name)
		}
		if err := checkChildName(name, parent, o.tasks); err != nil {
			return nil, &ConfigError{Path: d.Path, Err: err}
		}
		if _, dup := parent.Child(name); dup {
			return nil, configErr(d.Path, "duplicate command %q", name)
		}
		parent.children.Set(name, fromDeclaration(name, slices.Clone(d.Path), d))
	}

	var verr error
	root.Walk(func(n *Node) {
		if verr == nil {
			verr = validateNode(n)
		}
	})
	if verr != nil {
		return nil, verr
	}

	return &Tree{Root: root, tasks: o.tasks}, nil
}

func fromDeclaration(name string, path []string, d Declaration) *Node {
	n := newNode(name, path, d.Kind)
	n.Params = d.Params
	n.Doc = d.Doc
	n.Default = d.Default
	n.AllowExternal = d.AllowExternal
	n.Hidden = d.Hidden
	n.Category = d.Category
	n.Handler = d.Handler
	return n
}

// expand replaces Include declarations by the unit they name, rebasing the
// unit's paths onto the include point.
func expand(decls []Declaration, prefix []string, units map[string][]Declaration, stack []string) ([]Declaration, error) {
	var out []Declaration
	for _, d := range decls {
		path := slices.Concat(prefix, d.Path)
		if d.Include == "" {
			d.Path = path
			out = append(out, d)
			continue
		}

		if len(path) == 0 {
			return nil, configErr(nil, "unit %q cannot be included at the root", d.Include)
		}
		if slices.Contains(stack, d.Include) {
			cycle := append(slices.Clone(stack), d.Include)
			return nil, configErr(path, "include cycle: %s", strings.Join(cycle, " -> "))
		}
		unit, ok := units[d.Include]
		if !ok {
			return nil, configErr(path, "unknown unit %q", d.Include)
		}

		body, err := expand(unit, path, units, append(slices.Clone(stack), d.Include))
		if err != nil {
			return nil, err
		}

		head := slices.IndexFunc(body, func(b Declaration) bool {
			return slices.Equal(b.Path, path)
		})
		if head < 0 {
			out = append(out, Declaration{Path: path, Kind: KindModule, Doc: d.Doc, Hidden: d.Hidden})
		} else {
			if d.Doc.About != "" {
				body[head].Doc = d.Doc
			}
			body[head].Hidden = body[head].Hidden || d.Hidden
		}
		out = append(out, body...)
	}
	return out, nil
}

func checkChildName(name string, parent *Node, tasks *TaskConfig) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty command name")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("command name %q contains whitespace", name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("command name %q looks like a flag", name)
	}
	if len(parent.Path) == 0 && name == ReservedHelp {
		return fmt.Errorf("command name %q is reserved", name)
	}
	if tasks == nil {
		return nil
	}
	if strings.Contains(name, tasks.Separator) {
		return fmt.Errorf("command name %q contains the task separator %q", name, tasks.Separator)
	}
	if len(parent.Path) == 0 && name == ReservedTaskHelp {
		return fmt.Errorf("command name %q is reserved in task mode", name)
	}
	return nil
}

func validateNode(n *Node) error {
	if err := n.Params.Validate(); err != nil {
		return &ConfigError{Path: n.Path, Err: err}
	}

	switch n.Kind {
	case KindModule:
		if n.children.Len() == 0 {
			return configErr(n.Path, "module %q has no subcommands", n.Name)
		}
		if n.Handler != nil {
			return configErr(n.Path, "module %q cannot have a handler", n.Name)
		}
		if ps := n.Params.Positionals(); len(ps) > 0 {
			return configErr(n.Path, "module %q cannot declare positional parameter %q", n.Name, ps[0].Name)
		}
		if n.AllowExternal && n.Default == "" {
			return configErr(n.Path, "module %q allows external subcommands but has no default", n.Name)
		}
		if n.Default == "" {
			return nil
		}
		def, ok := n.Child(n.Default)
		if !ok {
			return configErr(n.Path, "default %q is not a subcommand of %q", n.Default, n.Name)
		}
		if def.Kind != KindAction {
			return configErr(n.Path, "default %q of %q is not an action", n.Default, n.Name)
		}
		if len(def.Params) > 0 {
			return configErr(n.Path, "default action %q of %q cannot declare parameters", n.Default, n.Name)
		}
		return nil
	case KindAction:
		if n.Handler == nil {
			return configErr(n.Path, "action %q has no handler", n.Name)
		}
		if n.Default != "" || n.AllowExternal {
			return configErr(n.Path, "action %q cannot have a default or external subcommands", n.Name)
		}
		return nil
	default:
		return configErr(n.Path, "node %q has unknown kind %d", n.Name, int(n.Kind))
	}
}
