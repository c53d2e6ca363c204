package commands

import "github.com/footprint-tools/cmdtree/internal/params"

// Declaration is one entry of tree registration data. Path is relative to
// the root (or to the include point, inside a unit); the root itself is
// declared with an empty path.
type Declaration struct {
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
	Include       string
}

type RootSpec struct {
	Name          string
	Doc           Doc
	Params        params.Schema
	Default       string
	AllowExternal bool
}

type GroupSpec struct {
	Path          []string
	Doc           Doc
	Params        params.Schema
	Default       string
	AllowExternal bool
	Hidden        bool
}

type CommandSpec struct {
	Path     []string
	Doc      Doc
	Params   params.Schema
	Hidden   bool
	Category string
	Handler  Handler
}

func Root(spec RootSpec) Declaration {
	return Declaration{
		Name:          spec.Name,
		Kind:          KindModule,
		Params:        spec.Params,
		Doc:           spec.Doc,
		Default:       spec.Default,
		AllowExternal: spec.AllowExternal,
	}
}

func Group(spec GroupSpec) Declaration {
	return Declaration{
		Path:          spec.Path,
		Kind:          KindModule,
		Params:        spec.Params,
		Doc:           spec.Doc,
		Default:       spec.Default,
		AllowExternal: spec.AllowExternal,
		Hidden:        spec.Hidden,
	}
}

func Command(spec CommandSpec) Declaration {
	return Declaration{
		Path:     spec.Path,
		Kind:     KindAction,
		Params:   spec.Params,
		Doc:      spec.Doc,
		Hidden:   spec.Hidden,
		Category: spec.Category,
		Handler:  spec.Handler,
	}
}

// Include splices the named unit into the tree at path. The last segment
// of path is the name the unit is known by.
func Include(path []string, unit string) Declaration {
	return Declaration{Path: path, Kind: KindModule, Include: unit}
}
