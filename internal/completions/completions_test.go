package completions

import (
	"context"
	"slices"
	"testing"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
)

var noop = commands.Func(func(context.Context, *commands.Invocation) error { return nil })

func buildTestTree(t *testing.T, opts ...commands.Option) *commands.Tree {
	t.Helper()
	tree, err := commands.Build([]commands.Declaration{
		commands.Root(commands.RootSpec{
			Name:   "tool",
			Doc:    commands.Doc{About: "Test CLI"},
			Params: params.Schema{{Name: "verbose", Short: "v", Type: params.TypeBool, Help: "Verbose output"}},
		}),
		commands.Group(commands.GroupSpec{Path: []string{"config"}, Doc: commands.Doc{About: "Manage settings"}}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"config", "get"},
			Doc:     commands.Doc{About: "Get a setting"},
			Params:  params.Schema{{Name: "format", Type: params.TypeString, Help: "Output format"}},
			Handler: noop,
		}),
		commands.Command(commands.CommandSpec{Path: []string{"config", "set"}, Doc: commands.Doc{About: "Set a setting"}, Handler: noop}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"setup"},
			Doc:     commands.Doc{About: "Prepare the workspace"},
			Params:  params.Schema{{Name: "force", Short: "f", Type: params.TypeBool, Help: "Force installation"}},
			Handler: noop,
		}),
		commands.Command(commands.CommandSpec{Path: []string{"debug"}, Hidden: true, Handler: noop}),
	}, opts...)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func findCommand(commands []CommandInfo, path []string) *CommandInfo {
	for i := range commands {
		if slices.Equal(commands[i].Path, path) {
			return &commands[i]
		}
	}
	return nil
}

func names(subs []SubcommandInfo) []string {
	var out []string
	for _, s := range subs {
		out = append(out, s.Name)
	}
	return out
}

func TestExtractCommands(t *testing.T) {
	commands := ExtractCommands(buildTestTree(t), Options{})

	if len(commands) != 5 {
		t.Fatalf("expected 5 commands, got %d", len(commands))
	}

	rootCmd := findCommand(commands, []string{"tool"})
	if rootCmd == nil {
		t.Fatal("root command not found")
	}
	got := names(rootCmd.Subcommands)
	want := []string{"help", "config", "setup"}
	if len(got) != len(want) {
		t.Fatalf("expected root subcommands %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("subcommand %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if findCommand(commands, []string{"tool", "debug"}) != nil {
		t.Error("hidden command should not be extracted")
	}

	getCmd := findCommand(commands, []string{"tool", "config", "get"})
	if getCmd == nil {
		t.Fatal("get command not found")
	}
	if getCmd.Summary != "Get a setting" {
		t.Errorf("expected summary 'Get a setting', got '%s'", getCmd.Summary)
	}
	if len(getCmd.Flags) != 2 {
		t.Fatalf("expected help and --format flags, got %d", len(getCmd.Flags))
	}
	if !getCmd.Flags[1].HasValue || getCmd.Flags[1].Names[0] != "--format" {
		t.Errorf("unexpected flag %+v", getCmd.Flags[1])
	}

	setupCmd := findCommand(commands, []string{"tool", "setup"})
	if setupCmd == nil {
		t.Fatal("setup command not found")
	}
	force := setupCmd.Flags[1]
	if force.HasValue || len(force.Names) != 2 || force.Names[1] != "-f" {
		t.Errorf("unexpected flag %+v", force)
	}
}

func TestExtractCommands_Flat(t *testing.T) {
	commands := ExtractCommands(buildTestTree(t), Options{Flat: true, Separator: ":"})

	got := names(commands[0].Subcommands)
	for _, want := range []string{"config:get", "config:set"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected flat path %q in %v", want, got)
		}
	}
	for _, name := range got {
		if name == "setup:" || name == "debug" {
			t.Errorf("unexpected candidate %q", name)
		}
	}
}

func TestFindCommand_NotFound(t *testing.T) {
	commands := []CommandInfo{
		{Name: "tool", Path: []string{"tool"}},
	}

	cmd := findCommand(commands, []string{"tool", "nonexistent"})
	if cmd != nil {
		t.Error("expected nil for non-existent command")
	}
}
