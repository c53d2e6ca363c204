package manifest

import (
	"slices"
	"sort"

	"github.com/BurntSushi/toml"
)

type tomlManifest struct {
	Name          string                  `toml:"name"`
	About         string                  `toml:"about"`
	LongAbout     string                  `toml:"long_about"`
	Version       string                  `toml:"version"`
	Author        string                  `toml:"author"`
	Tasks         *Tasks                  `toml:"tasks"`
	Params        []Param                 `toml:"params"`
	Default       string                  `toml:"default"`
	AllowExternal bool                    `toml:"allow_external"`
	Commands      map[string]*tomlCommand `toml:"commands"`
	Units         map[string]*tomlCommand `toml:"units"`
}

type tomlCommand struct {
	About         string                  `toml:"about"`
	LongAbout     string                  `toml:"long_about"`
	Usage         string                  `toml:"usage"`
	Params        []Param                 `toml:"params"`
	Default       string                  `toml:"default"`
	AllowExternal bool                    `toml:"allow_external"`
	Hidden        bool                    `toml:"hidden"`
	Category      string                  `toml:"category"`
	Run           string                  `toml:"run"`
	Include       string                  `toml:"include"`
	Commands      map[string]*tomlCommand `toml:"commands"`
}

// keyOrder maps the key of a commands table to its subcommand names in
// document order. TOML tables decode into Go maps, so the order has to be
// recovered from the decoder's metadata.
type keyOrder map[string][]string

func newKeyOrder(md toml.MetaData) keyOrder {
	order := make(keyOrder)
	for _, k := range md.Keys() {
		if len(k) < 2 || k[len(k)-2] != "commands" {
			continue
		}
		table := k[:len(k)-1].String()
		if !slices.Contains(order[table], k[len(k)-1]) {
			order[table] = append(order[table], k[len(k)-1])
		}
	}
	return order
}

// names lists the keys of m in document order. Keys the metadata did not
// report are appended sorted.
func (o keyOrder) names(table toml.Key, m map[string]*tomlCommand) []string {
	var out []string
	for _, name := range o[table.String()] {
		if _, ok := m[name]; ok {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range m {
		if !slices.Contains(out, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (o keyOrder) commands(table toml.Key, m map[string]*tomlCommand) Commands {
	cmds := NewCommands()
	for _, name := range o.names(table, m) {
		cmds.Set(name, o.command(append(slices.Clone(table), name), m[name]))
	}
	return cmds
}

func (o keyOrder) command(key toml.Key, t *tomlCommand) *Command {
	if t == nil {
		return &Command{}
	}
	return &Command{
		About:         t.About,
		LongAbout:     t.LongAbout,
		Usage:         t.Usage,
		Params:        t.Params,
		Default:       t.Default,
		AllowExternal: t.AllowExternal,
		Hidden:        t.Hidden,
		Category:      t.Category,
		Run:           t.Run,
		Include:       t.Include,
		Commands:      o.commands(append(slices.Clone(key), "commands"), t.Commands),
	}
}

func parseTOML(data []byte) (*Manifest, error) {
	var t tomlManifest
	md, err := toml.Decode(string(data), &t)
	if err != nil {
		return nil, err
	}
	order := newKeyOrder(md)

	m := &Manifest{
		Name:          t.Name,
		About:         t.About,
		LongAbout:     t.LongAbout,
		Version:       t.Version,
		Author:        t.Author,
		Tasks:         t.Tasks,
		Params:        t.Params,
		Default:       t.Default,
		AllowExternal: t.AllowExternal,
		Commands:      order.commands(toml.Key{"commands"}, t.Commands),
	}
	if len(t.Units) > 0 {
		m.Units = make(map[string]*Command, len(t.Units))
		for name, u := range t.Units {
			m.Units[name] = order.command(toml.Key{"units", name}, u)
		}
	}
	return m, nil
}
