// Package completions generates shell completion scripts from a command
// tree.
package completions

import (
	"slices"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/tasks"
)

// CommandInfo represents a command extracted from the tree
type CommandInfo struct {
	Name        string
	Path        []string // Full path from the program (e.g., ["tool", "config", "set"])
	Summary     string
	Subcommands []SubcommandInfo
	Flags       []FlagInfo
}

// SubcommandInfo is one completion candidate in subcommand position.
type SubcommandInfo struct {
	Name    string
	Summary string
}

// FlagInfo represents a flag for a command
type FlagInfo struct {
	Names       []string
	Description string
	HasValue    bool
}

// Options tweak the extraction.
type Options struct {
	// Flat adds the flat path of every visible action to the root's
	// candidates, so that "tool git.cl<TAB>" completes in task mode.
	Flat      bool
	Separator string
}

// ExtractCommands walks the tree and extracts every visible command.
func ExtractCommands(tree *commands.Tree, opts Options) []CommandInfo {
	var out []CommandInfo
	extractNode(tree.Root, []string{tree.Name()}, &out)

	if opts.Flat && len(out) > 0 {
		sep := opts.Separator
		if sep == "" {
			sep = commands.DefaultSeparator
		}
		for _, a := range tree.Root.Actions(true) {
			if len(a.Path) < 2 {
				continue
			}
			out[0].Subcommands = append(out[0].Subcommands, SubcommandInfo{
				Name:    tasks.FlatPath(a, sep),
				Summary: a.Summary(),
			})
		}
	}
	return out
}

func extractNode(node *commands.Node, path []string, out *[]CommandInfo) {
	cmd := CommandInfo{
		Name:    path[len(path)-1],
		Path:    path,
		Summary: node.Summary(),
		Flags:   extractFlags(node.Params),
	}
	if len(node.Path) == 0 {
		cmd.Subcommands = append(cmd.Subcommands, SubcommandInfo{Name: commands.ReservedHelp, Summary: "Show help for a command"})
	}
	for _, child := range node.VisibleChildren() {
		cmd.Subcommands = append(cmd.Subcommands, SubcommandInfo{Name: child.Name, Summary: child.Summary()})
	}
	*out = append(*out, cmd)

	for _, child := range node.VisibleChildren() {
		extractNode(child, append(slices.Clone(path), child.Name), out)
	}
}

func extractFlags(schema params.Schema) []FlagInfo {
	flags := []FlagInfo{{Names: []string{"--help", "-h"}, Description: "Show help"}}
	for _, p := range schema.Flags() {
		names := []string{"--" + p.Name}
		if p.Short != "" {
			names = append(names, "-"+p.Short)
		}
		flags = append(flags, FlagInfo{
			Names:       names,
			Description: p.Help,
			HasValue:    p.Type != params.TypeBool,
		})
	}
	return flags
}
