package browser

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

var noop = commands.Func(func(context.Context, *commands.Invocation) error { return nil })

func cmd(about string, path ...string) commands.Declaration {
	return commands.Command(commands.CommandSpec{Path: path, Doc: commands.Doc{About: about}, Handler: noop})
}

func testTree(t *testing.T, opts ...commands.Option) *commands.Tree {
	t.Helper()
	style.Init(false, nil)

	tree, err := commands.Build([]commands.Declaration{
		commands.Root(commands.RootSpec{Name: "tool"}),
		cmd("Show status", "status"),
		commands.Group(commands.GroupSpec{Path: []string{"git"}}),
		cmd("Clone a repository", "git", "clone"),
		cmd("Record changes", "git", "commit"),
		cmd("Push commits", "git", "push"),
		commands.Group(commands.GroupSpec{Path: []string{"db"}}),
		cmd("Migrate", "db", "migrate"),
		cmd("Seed", "db", "seed"),
		commands.Command(commands.CommandSpec{Path: []string{"secret"}, Hidden: true, Handler: noop}),
	}, opts...)
	require.NoError(t, err)
	return tree
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func labels(items []item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.label)
	}
	return out
}

func TestBuildItems_TaskMode(t *testing.T) {
	cfg := commands.DefaultTaskConfig()
	cfg.MaxGroupSize = 2
	tree := testTree(t, commands.WithTasks(cfg))

	items := buildItems(tree)
	require.Equal(t, []string{"tasks", "status", "git", "git.clone", "git.commit", "git.push", "db", "db.migrate", "db.seed"}, labels(items))
	require.True(t, items[0].isHeader)
	require.False(t, items[1].isHeader)
	require.NotContains(t, labels(items), "secret")
}

func TestBuildItems_WordPathsOutsideTaskMode(t *testing.T) {
	tree := testTree(t)

	items := buildItems(tree)
	require.Contains(t, labels(items), "git clone")
}

func TestModel_Navigation(t *testing.T) {
	tree := testTree(t)
	m := newModel(tree)

	sel, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, []string{"status"}, sel.node.Path)

	m = update(t, m, keyRunes("j"))
	sel, _ = m.selected()
	require.Equal(t, []string{"git", "clone"}, sel.node.Path)

	m = update(t, m, keyRunes("G"))
	sel, _ = m.selected()
	require.Equal(t, []string{"db", "seed"}, sel.node.Path)

	m = update(t, m, keyRunes("j"))
	sel, _ = m.selected()
	require.Equal(t, []string{"db", "seed"}, sel.node.Path, "cursor stops at the last entry")

	m = update(t, m, keyRunes("g"))
	sel, _ = m.selected()
	require.Equal(t, []string{"status"}, sel.node.Path)
}

func TestModel_ContentFocusScrolls(t *testing.T) {
	m := newModel(testTree(t))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab}, keyRunes("j"), keyRunes("j"))
	require.False(t, m.focusSidebar)
	require.Equal(t, 2, m.contentScroll)

	sel, _ := m.selected()
	require.Equal(t, []string{"status"}, sel.node.Path)
}

func TestModel_Search(t *testing.T) {
	m := newModel(testTree(t))

	m = update(t, m, keyRunes("/"), keyRunes("c"), keyRunes("l"), keyRunes("n"))
	require.True(t, m.searchMode)
	require.Equal(t, "cln", m.searchQuery)

	var entries []string
	for _, it := range m.items {
		if !it.isHeader {
			entries = append(entries, it.label)
		}
	}
	require.Equal(t, []string{"git clone"}, entries)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.searchMode)
	sel, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, []string{"git", "clone"}, sel.node.Path)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, m.searchQuery)
	require.Equal(t, len(m.allItems), len(m.items))
}

func TestModel_SearchSummary(t *testing.T) {
	m := newModel(testTree(t))
	m = update(t, m, keyRunes("/"), keyRunes("record"))

	sel, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, []string{"git", "commit"}, sel.node.Path)
}

func TestModel_EnterChooses(t *testing.T) {
	m := newModel(testTree(t))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(model)
	require.NotNil(t, m.chosen)
	require.Equal(t, []string{"status"}, m.chosen.Path)
}

func TestModel_QuitWithoutChoice(t *testing.T) {
	m := newModel(testTree(t))

	next, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	require.Nil(t, next.(model).chosen)
}

func TestModel_View(t *testing.T) {
	m := newModel(testTree(t))
	require.Equal(t, "Loading...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	require.Contains(t, out, "tool")
	require.Contains(t, out, "Show status")
	require.Contains(t, out, "quit")
}
