package help

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/tasks"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

var noop = commands.Func(func(context.Context, *commands.Invocation) error { return nil })

func testTree(t *testing.T, decls ...commands.Declaration) *commands.Tree {
	t.Helper()
	style.Init(false, nil)

	base := []commands.Declaration{
		commands.Root(commands.RootSpec{
			Name:   "tool",
			Doc:    commands.Doc{About: "Example tool", Version: "1.2.0", Author: "The tool authors"},
			Params: params.Schema{{Name: "verbose", Short: "v", Type: params.TypeBool, Help: "Verbose output"}},
		}),
		commands.Group(commands.GroupSpec{
			Path:    []string{"database"},
			Doc:     commands.Doc{About: "Manage the database", LongAbout: "Database maintenance commands."},
			Params:  params.Schema{{Name: "connection", Type: params.TypeString, Default: "main", Help: "Connection name"}},
			Default: "status",
		}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"database", "status"},
			Doc:     commands.Doc{About: "Show status"},
			Handler: noop,
		}),
		commands.Command(commands.CommandSpec{
			Path: []string{"database", "migrate"},
			Doc:  commands.Doc{About: "Run migrations"},
			Params: params.Schema{
				{Name: "version", Positional: true, Required: true, Help: "Target version"},
				{Name: "dry-run", Short: "n", Type: params.TypeBool, Help: "Only print"},
			},
			Handler: noop,
		}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"secret"},
			Hidden:  true,
			Handler: noop,
		}),
	}

	tree, err := commands.Build(append(base, decls...), commands.WithTasks(commands.DefaultTaskConfig()))
	require.NoError(t, err)
	return tree
}

func TestUsage(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		path []string
		want string
	}{
		{nil, "tool [flags] <command>"},
		{[]string{"database"}, "tool [flags] database [flags] [<command>]"},
		{[]string{"database", "migrate"}, "tool [flags] database [flags] migrate [flags] <version>"},
		{[]string{"database", "status"}, "tool [flags] database [flags] status"},
	}

	for _, tt := range tests {
		n, ok := tree.Find(tt.path)
		require.True(t, ok)
		require.Equal(t, tt.want, Usage(tree, n))
	}
}

func TestArgumentLabel(t *testing.T) {
	require.Equal(t, "<a>", argumentLabel(params.Spec{Name: "a", Positional: true, Required: true}))
	require.Equal(t, "[<a>]", argumentLabel(params.Spec{Name: "a", Positional: true}))
	require.Equal(t, "[<files>...]", argumentLabel(params.Spec{Name: "files", Positional: true, Type: params.TypeStrings}))
}

func TestNode_Root(t *testing.T) {
	tree := testTree(t)

	out := Node(tree, tree.Root)
	require.Contains(t, out, "tool 1.2.0 - Example tool")
	require.Contains(t, out, "The tool authors")
	require.Contains(t, out, "COMMANDS")
	require.Contains(t, out, "database      Manage the database")
	require.NotContains(t, out, "secret")
	require.Contains(t, out, "-v, --verbose")
	require.Contains(t, out, "See 'tool help <command>'")
	require.Contains(t, out, "without arguments to list all tasks")
}

func TestNode_Module(t *testing.T) {
	tree := testTree(t)
	db, _ := tree.Find([]string{"database"})

	out := Node(tree, db)
	require.Contains(t, out, "tool database - Manage the database")
	require.Contains(t, out, "Database maintenance commands.")
	require.Contains(t, out, "Show status (default)")
	require.Contains(t, out, "--connection string")
	require.Contains(t, out, "(default main)")
	require.Contains(t, out, "FLAGS OF TOOL")
}

func TestNode_Action(t *testing.T) {
	tree := testTree(t)
	migrate, _ := tree.Find([]string{"database", "migrate"})

	out := Node(tree, migrate)
	require.Contains(t, out, "ARGUMENTS")
	require.Contains(t, out, "<version>")
	require.Contains(t, out, "Target version (required)")
	require.Contains(t, out, "-n, --dry-run")
	require.Contains(t, out, "FLAGS OF TOOL DATABASE")
	require.NotContains(t, out, "COMMANDS")
}

func TestNode_RootCategories(t *testing.T) {
	tree := testTree(t,
		commands.Command(commands.CommandSpec{
			Path:     []string{"deploy"},
			Doc:      commands.Doc{About: "Deploy the app"},
			Category: "release",
			Handler:  noop,
		}),
	)

	out := Node(tree, tree.Root)
	require.Contains(t, out, "release\n   deploy")
	require.Contains(t, out, "other commands")
	require.Contains(t, out, "database status")
}

func TestOverview(t *testing.T) {
	tree := testTree(t)
	cfg, ok := tree.Tasks()
	require.True(t, ok)

	out := Overview(tree, tasks.Overview(tree.Root, cfg))
	require.Contains(t, out, "tasks\n")
	require.Contains(t, out, "database.status")
	require.Contains(t, out, "database.migrate")
	require.NotContains(t, out, "secret")
	require.Contains(t, out, "Run 'tool h <task>'")
}
