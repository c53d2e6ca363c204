// Package manifest loads command trees from YAML or TOML files.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
)

// Format is the syntax a manifest is written in.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultNames are the file names searched for when no manifest is given.
var DefaultNames = []string{"cmdtree.yaml", "cmdtree.yml", "cmdtree.toml"}

// ErrNotFound is returned by Find when no manifest exists in the searched
// directories.
var ErrNotFound = errors.New("no manifest found")

// Manifest describes a whole command tree.
type Manifest struct {
	Name          string              `yaml:"name"`
	About         string              `yaml:"about"`
	LongAbout     string              `yaml:"long_about"`
	Version       string              `yaml:"version"`
	Author        string              `yaml:"author"`
	Tasks         *Tasks              `yaml:"tasks"`
	Params        []Param             `yaml:"params"`
	Default       string              `yaml:"default"`
	AllowExternal bool                `yaml:"allow_external"`
	Commands      Commands            `yaml:"commands"`
	Units         map[string]*Command `yaml:"units"`

	// Path is the file the manifest was read from. Run scripts start in
	// its directory.
	Path string `yaml:"-"`
}

// Tasks enables task mode. Unset fields keep the base configuration.
type Tasks struct {
	Separator    string `yaml:"separator" toml:"separator"`
	MaxGroupSize *int   `yaml:"max_groupsize" toml:"max_groupsize"`
	MaxDepth     *int   `yaml:"max_depth" toml:"max_depth"`
}

// Param declares one parameter.
type Param struct {
	Name       string `yaml:"name" toml:"name"`
	Short      string `yaml:"short" toml:"short"`
	Type       string `yaml:"type" toml:"type"`
	Positional bool   `yaml:"positional" toml:"positional"`
	Required   bool   `yaml:"required" toml:"required"`
	Default    any    `yaml:"default" toml:"default"`
	Value      string `yaml:"value" toml:"value"`
	Help       string `yaml:"help" toml:"help"`
}

// Command is a module when it has subcommands, an include point when it
// names a unit and an action otherwise.
type Command struct {
	About         string   `yaml:"about"`
	LongAbout     string   `yaml:"long_about"`
	Usage         string   `yaml:"usage"`
	Params        []Param  `yaml:"params"`
	Default       string   `yaml:"default"`
	AllowExternal bool     `yaml:"allow_external"`
	Hidden        bool     `yaml:"hidden"`
	Category      string   `yaml:"category"`
	Run           string   `yaml:"run"`
	Include       string   `yaml:"include"`
	Commands      Commands `yaml:"commands"`
}

// Commands is a name-ordered set of subcommands. Names keep the order they
// are written in.
type Commands struct {
	m *orderedmap.OrderedMap[string, *Command]
}

// NewCommands returns an empty command set.
func NewCommands() Commands {
	return Commands{m: orderedmap.New[string, *Command]()}
}

// Set adds or replaces a subcommand.
func (c *Commands) Set(name string, cmd *Command) {
	if c.m == nil {
		c.m = orderedmap.New[string, *Command]()
	}
	c.m.Set(name, cmd)
}

// Get returns the subcommand called name.
func (c Commands) Get(name string) (*Command, bool) {
	if c.m == nil {
		return nil, false
	}
	return c.m.Get(name)
}

// Len returns the number of subcommands.
func (c Commands) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Names returns the subcommand names in order.
func (c Commands) Names() []string {
	if c.m == nil {
		return nil
	}
	out := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	m.Path = path
	return m, nil
}

// Parse decodes a manifest written in format.
func Parse(data []byte, format Format) (*Manifest, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
}

// Find looks for one of DefaultNames in dir and its parents.
func Find(dir string) (string, error) {
	dir = filepath.Clean(dir)
	for {
		for _, name := range DefaultNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// TaskConfig merges the manifest's task settings over base. ok is false
// when the manifest does not enable task mode.
func (m *Manifest) TaskConfig(base commands.TaskConfig) (commands.TaskConfig, bool) {
	if m.Tasks == nil {
		return commands.TaskConfig{}, false
	}
	cfg := base
	if m.Tasks.Separator != "" {
		cfg.Separator = m.Tasks.Separator
	}
	if m.Tasks.MaxGroupSize != nil {
		cfg.MaxGroupSize = *m.Tasks.MaxGroupSize
	}
	if m.Tasks.MaxDepth != nil {
		cfg.MaxDepth = *m.Tasks.MaxDepth
	}
	return cfg, true
}

// Build turns the manifest into a command tree. Actions run their scripts
// through sh; base supplies the task settings the manifest leaves unset.
func (m *Manifest) Build(sh *Shell, base commands.TaskConfig) (*commands.Tree, error) {
	decls, opts, err := m.Declarations(sh)
	if err != nil {
		return nil, err
	}
	if cfg, ok := m.TaskConfig(base); ok {
		opts = append(opts, commands.WithTasks(cfg))
	}
	return commands.Build(decls, opts...)
}

// Declarations converts the manifest into tree declarations and the unit
// options its include points need.
func (m *Manifest) Declarations(sh *Shell) ([]commands.Declaration, []commands.Option, error) {
	if sh == nil {
		sh = &Shell{}
	}
	if sh.Dir == "" && m.Path != "" {
		sh.Dir = filepath.Dir(m.Path)
	}

	rootParams, err := schema(nil, m.Params)
	if err != nil {
		return nil, nil, err
	}
	decls := []commands.Declaration{commands.Root(commands.RootSpec{
		Name: m.Name,
		Doc: commands.Doc{
			About:     m.About,
			LongAbout: m.LongAbout,
			Version:   m.Version,
			Author:    m.Author,
		},
		Params:        rootParams,
		Default:       m.Default,
		AllowExternal: m.AllowExternal,
	})}

	children, err := declareAll(sh, nil, m.Commands)
	if err != nil {
		return nil, nil, err
	}
	decls = append(decls, children...)

	var opts []commands.Option
	for name, unit := range m.Units {
		body, err := declare(sh, nil, unit)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, commands.WithUnit(name, body...))
	}
	return decls, opts, nil
}

func declareAll(sh *Shell, prefix []string, cmds Commands) ([]commands.Declaration, error) {
	var out []commands.Declaration
	for _, name := range cmds.Names() {
		cmd, _ := cmds.Get(name)
		path := append(append([]string(nil), prefix...), name)
		decls, err := declare(sh, path, cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
	return out, nil
}

// declare converts one command and its subtree. A nil path declares the
// head of a unit.
func declare(sh *Shell, path []string, cmd *Command) ([]commands.Declaration, error) {
	if cmd == nil {
		cmd = &Command{}
	}
	doc := commands.Doc{About: cmd.About, LongAbout: cmd.LongAbout, Usage: cmd.Usage}
	ps, err := schema(path, cmd.Params)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Include != "":
		if cmd.Run != "" || cmd.Commands.Len() > 0 {
			return nil, configErr(path, "include %q cannot be combined with run or commands", cmd.Include)
		}
		if path == nil {
			return []commands.Declaration{commands.Include(nil, cmd.Include)}, nil
		}
		d := commands.Include(path, cmd.Include)
		d.Doc = doc
		d.Hidden = cmd.Hidden
		return []commands.Declaration{d}, nil

	case cmd.Commands.Len() > 0:
		if cmd.Run != "" {
			return nil, configErr(path, "command with subcommands cannot have run")
		}
		out := []commands.Declaration{commands.Group(commands.GroupSpec{
			Path:          path,
			Doc:           doc,
			Params:        ps,
			Default:       cmd.Default,
			AllowExternal: cmd.AllowExternal,
			Hidden:        cmd.Hidden,
		})}
		children, err := declareAll(sh, path, cmd.Commands)
		if err != nil {
			return nil, err
		}
		return append(out, children...), nil

	default:
		if cmd.Default != "" || cmd.AllowExternal {
			return nil, configErr(path, "command without subcommands cannot have default or allow_external")
		}
		var handler commands.Handler
		if cmd.Run != "" {
			handler = sh.Handler(cmd.Run)
		}
		return []commands.Declaration{commands.Command(commands.CommandSpec{
			Path:     path,
			Doc:      doc,
			Params:   ps,
			Hidden:   cmd.Hidden,
			Category: cmd.Category,
			Handler:  handler,
		})}, nil
	}
}

func schema(path []string, ps []Param) (params.Schema, error) {
	out := make(params.Schema, 0, len(ps))
	for _, p := range ps {
		typ, err := params.ParseType(p.Type)
		if err != nil {
			return nil, configErr(path, "parameter %q: %v", p.Name, err)
		}
		out = append(out, params.Spec{
			Name:       p.Name,
			Short:      p.Short,
			Type:       typ,
			Positional: p.Positional,
			Required:   p.Required,
			Default:    defaultString(p.Default),
			ValueHint:  p.Value,
			Help:       p.Help,
		})
	}
	return out, nil
}

func defaultString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}

func configErr(path []string, format string, args ...any) *commands.ConfigError {
	return &commands.ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}
