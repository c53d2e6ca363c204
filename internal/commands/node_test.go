package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	require.Equal(t, "module", KindModule.String())
	require.Equal(t, "action", KindAction.String())
	require.Equal(t, "unknown", Kind(9).String())
}

func TestNode_Summary(t *testing.T) {
	n := &Node{Doc: Doc{About: "First line\nSecond line"}}
	require.Equal(t, "First line", n.Summary())

	n.Doc.About = "Only"
	require.Equal(t, "Only", n.Summary())
}

func TestNode_ActionsAndVisibility(t *testing.T) {
	tree, err := Build([]Declaration{
		Root(RootSpec{Name: "tool"}),
		group("db"),
		cmd("db", "status"),
		Command(CommandSpec{Path: []string{"db", "debug"}, Hidden: true, Handler: noop}),
		Group(GroupSpec{Path: []string{"internal"}, Hidden: true}),
		cmd("internal", "gc"),
		cmd("version"),
	})
	require.NoError(t, err)

	var all []string
	for _, a := range tree.Root.Actions(false) {
		all = append(all, a.Display("tool"))
	}
	require.Equal(t, []string{"tool db status", "tool db debug", "tool internal gc", "tool version"}, all)

	var visible []string
	for _, a := range tree.Root.Actions(true) {
		visible = append(visible, a.Name)
	}
	require.Equal(t, []string{"status", "version"}, visible)

	var names []string
	for _, c := range tree.Root.VisibleChildren() {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"db", "version"}, names)

	var walked int
	tree.Root.Walk(func(*Node) { walked++ })
	require.Equal(t, 7, walked)
}

func TestNode_DefaultActionOnAction(t *testing.T) {
	n := newNode("a", []string{"a"}, KindAction)
	_, ok := n.DefaultAction()
	require.False(t, ok)
	require.Empty(t, n.Children())
}

func TestResult_ExitStatus(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   uint8
	}{
		{name: "unit", result: Success(), want: 0},
		{name: "explicit", result: Status(3), want: 3},
		{name: "explicit zero", result: Status(0), want: 0},
		{name: "optional present", result: Optional(7, true), want: 7},
		{name: "optional absent", result: Optional(7, false), want: 1},
		{name: "no status", result: NoStatus(), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.result.ExitStatus(1))
		})
	}

	require.Equal(t, uint8(42), NoStatus().ExitStatus(42))
}

func TestHandlerAdapters(t *testing.T) {
	ctx := context.Background()
	inv := &Invocation{}

	res, err := Func(func(context.Context, *Invocation) error { return nil }).Handle(ctx, inv)
	require.NoError(t, err)
	require.Equal(t, uint8(0), res.ExitStatus(1))

	res, err = StatusFunc(func(context.Context, *Invocation) (uint8, error) { return 5, nil }).Handle(ctx, inv)
	require.NoError(t, err)
	require.Equal(t, uint8(5), res.ExitStatus(1))

	res, err = OptionalFunc(func(context.Context, *Invocation) (uint8, bool, error) { return 0, false, nil }).Handle(ctx, inv)
	require.NoError(t, err)
	require.Equal(t, uint8(9), res.ExitStatus(9))

	boom := errors.New("boom")
	_, err = StatusFunc(func(context.Context, *Invocation) (uint8, error) { return 0, boom }).Handle(ctx, inv)
	require.ErrorIs(t, err, boom)
}
