package dispatchers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
	"github.com/footprint-tools/cmdtree/internal/usage"
)

var noop = commands.Func(func(context.Context, *commands.Invocation) error { return nil })

// spy records the invocations its handler receives.
type spy struct {
	calls []*commands.Invocation
}

func (s *spy) handler() commands.Handler {
	return commands.Func(func(_ context.Context, inv *commands.Invocation) error {
		s.calls = append(s.calls, inv)
		return nil
	})
}

func (s *spy) last(t *testing.T) *commands.Invocation {
	t.Helper()
	require.NotEmpty(t, s.calls, "handler was not called")
	return s.calls[len(s.calls)-1]
}

// databaseTree builds:
//
//	tool{verbose} -> database{connection, default=status}
//	              -> {status, migrate(version), advanced{optimize}}
//	              -> run{default=exec, external}
func databaseTree(t *testing.T, s *spy) *commands.Tree {
	t.Helper()
	tree, err := commands.Build([]commands.Declaration{
		commands.Root(commands.RootSpec{
			Name:   "tool",
			Params: params.Schema{{Name: "verbose", Short: "v", Type: params.TypeBool}},
		}),
		commands.Group(commands.GroupSpec{
			Path:    []string{"database"},
			Params:  params.Schema{{Name: "connection", Type: params.TypeString, Default: "main"}},
			Default: "status",
		}),
		commands.Command(commands.CommandSpec{Path: []string{"database", "status"}, Handler: s.handler()}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"database", "migrate"},
			Params:  params.Schema{{Name: "version", Positional: true, Required: true}},
			Handler: s.handler(),
		}),
		commands.Group(commands.GroupSpec{Path: []string{"database", "advanced"}}),
		commands.Command(commands.CommandSpec{Path: []string{"database", "advanced", "optimize"}, Handler: s.handler()}),
		commands.Group(commands.GroupSpec{Path: []string{"run"}, Default: "exec", AllowExternal: true}),
		commands.Command(commands.CommandSpec{Path: []string{"run", "exec"}, Handler: s.handler()}),
	})
	require.NoError(t, err)
	return tree
}

// gitTree builds a task mode tree: tool -> git{clone(url), commit(message)}.
func gitTree(t *testing.T, s *spy) *commands.Tree {
	t.Helper()
	tree, err := commands.Build([]commands.Declaration{
		commands.Root(commands.RootSpec{Name: "tool"}),
		commands.Group(commands.GroupSpec{Path: []string{"git"}}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"git", "clone"},
			Doc:     commands.Doc{About: "Clone a repository"},
			Params:  params.Schema{{Name: "url", Positional: true, Required: true}},
			Handler: s.handler(),
		}),
		commands.Command(commands.CommandSpec{
			Path:    []string{"git", "commit"},
			Doc:     commands.Doc{About: "Record changes"},
			Params:  params.Schema{{Name: "message", Short: "m", Type: params.TypeString}},
			Handler: s.handler(),
		}),
	}, commands.WithTasks(commands.DefaultTaskConfig()))
	require.NoError(t, err)
	return tree
}

func newRunner(tree *commands.Tree) (*Runner, *bytes.Buffer) {
	style.Init(false, nil)
	var out bytes.Buffer
	return &Runner{Tree: tree, Stdout: &out, Stderr: &out}, &out
}

func requireUsageKind(t *testing.T, err error, kind usage.ErrorKind) *usage.Error {
	t.Helper()
	var uerr *usage.Error
	require.True(t, errors.As(err, &uerr), "expected usage error, got %v", err)
	require.Equal(t, kind, uerr.Kind, uerr.Message)
	return uerr
}

func TestResolve_DatabaseScenario(t *testing.T) {
	s := &spy{}
	tree := databaseTree(t, s)

	res, err := Resolve(tree, []string{"--verbose", "database", "--connection", "c1", "migrate", "v2"})
	require.NoError(t, err)
	require.Equal(t, []string{"database", "migrate"}, res.Node.Path)
	require.Equal(t, []string{"v2"}, res.Args)
	require.Nil(t, res.External)
	require.Equal(t, 1, res.Scope.Depth())
	require.Equal(t, "c1", res.Scope.String("connection"))

	root, ok := res.Scope.At(0)
	require.True(t, ok)
	require.True(t, root.Bool("verbose"))

	r, _ := newRunner(tree)
	status, err := r.Dispatch(context.Background(), res)
	require.NoError(t, err)
	require.Zero(t, status)

	inv := s.last(t)
	require.Equal(t, "v2", inv.Scope.String("version"))
	require.Equal(t, 2, inv.Scope.Depth())

	verbose, err := params.Value[bool](inv.Scope, 0, "verbose")
	require.NoError(t, err)
	require.True(t, verbose)

	conn, err := params.Value[string](inv.Scope, 1, "connection")
	require.NoError(t, err)
	require.Equal(t, "c1", conn)
}

func TestResolve_DefaultAction(t *testing.T) {
	tree := databaseTree(t, &spy{})

	res, err := Resolve(tree, []string{"database", "--connection", "c1"})
	require.NoError(t, err)
	require.Equal(t, []string{"database", "status"}, res.Node.Path)
	require.Empty(t, res.Args)
	require.Nil(t, res.External)
	require.Equal(t, "c1", res.Scope.String("connection"))
}

func TestResolve_Errors(t *testing.T) {
	tree := databaseTree(t, &spy{})

	tests := []struct {
		name string
		args []string
		kind usage.ErrorKind
		path []string
	}{
		{name: "unknown subcommand", args: []string{"database", "bogus"}, kind: usage.ErrUnknownCommand, path: []string{"database"}},
		{name: "module without default", args: []string{"database", "advanced"}, kind: usage.ErrMissingCommand, path: []string{"database", "advanced"}},
		{name: "root without default", args: nil, kind: usage.ErrMissingCommand, path: []string{}},
		{name: "unknown root flag", args: []string{"--bogus", "database"}, kind: usage.ErrInvalidFlag, path: []string{}},
		{name: "flag of another level", args: []string{"--connection", "c1", "database"}, kind: usage.ErrInvalidFlag, path: []string{}},
		{name: "child names are case sensitive", args: []string{"Database"}, kind: usage.ErrUnknownCommand, path: []string{}},
		{name: "no prefix matching", args: []string{"data"}, kind: usage.ErrUnknownCommand, path: []string{}},
		{name: "help after terminator is not a help route", args: []string{"database", "bogus", "--", "-h"}, kind: usage.ErrUnknownCommand, path: []string{"database"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tree, tt.args)
			uerr := requireUsageKind(t, err, tt.kind)
			require.Equal(t, len(tt.path), len(uerr.Path))
			if len(tt.path) > 0 {
				require.Equal(t, tt.path, uerr.Path)
			}
		})
	}
}

func TestResolve_UnknownCommandMessage(t *testing.T) {
	tree := databaseTree(t, &spy{})

	_, err := Resolve(tree, []string{"database", "migrat"})
	uerr := requireUsageKind(t, err, usage.ErrUnknownCommand)
	require.Equal(t, []string{"migrate"}, uerr.Suggestions)
	require.Contains(t, uerr.Error(), "'database migrat' is not a tool database command")
	require.Contains(t, uerr.Error(), "The most similar command is\n\tmigrate")
}

func TestResolve_ScopeDepth(t *testing.T) {
	s := &spy{}
	tree := databaseTree(t, s)
	r, _ := newRunner(tree)

	_, err := r.Run(context.Background(), []string{"database", "advanced", "optimize"})
	require.NoError(t, err)

	inv := s.last(t)
	require.Equal(t, 3, inv.Scope.Depth())

	chain := inv.Scope.Chain()
	require.Len(t, chain, 4)
	for depth, name := range []string{"tool", "database", "advanced", "optimize"} {
		anc, ok := inv.Ancestor(depth)
		require.True(t, ok)
		require.Equal(t, name, anc.Name())
		require.Same(t, chain[depth], anc)
	}

	adv, _ := inv.Ancestor(2)
	require.Zero(t, adv.Values().Len())
	require.Zero(t, inv.Args().Len())

	conn, err := params.Value[string](inv.Scope, 1, "connection")
	require.NoError(t, err)
	require.Equal(t, "main", conn)

	_, ok := inv.Ancestor(4)
	require.False(t, ok)
}

func TestResolve_DefaultEquivalence(t *testing.T) {
	s := &spy{}
	tree := databaseTree(t, s)
	r, _ := newRunner(tree)

	implicit, err := r.Run(context.Background(), []string{"-v", "database", "--connection", "c1"})
	require.NoError(t, err)
	first := s.last(t)

	explicit, err := r.Run(context.Background(), []string{"-v", "database", "--connection", "c1", "status"})
	require.NoError(t, err)
	second := s.last(t)

	require.Equal(t, implicit, explicit)
	require.Same(t, first.Node, second.Node)
	require.Equal(t, first.External, second.External)
	require.Equal(t, first.Scope.Depth(), second.Scope.Depth())
	for depth := 0; depth <= first.Scope.Depth(); depth++ {
		a, _ := first.Ancestor(depth)
		b, _ := second.Ancestor(depth)
		require.Equal(t, a.Values(), b.Values())
	}
}

func TestResolve_External(t *testing.T) {
	tree := databaseTree(t, &spy{})

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "unknown child and trailing tokens", args: []string{"run", "X", "Y", "Z"}, want: []string{"X", "Y", "Z"}},
		{name: "flags after the unknown child are passed through", args: []string{"run", "X", "--force", "-h"}, want: []string{"X", "--force", "-h"}},
		{name: "implicit default", args: []string{"run"}, want: []string{}},
		{name: "explicit default", args: []string{"run", "exec", "Y"}, want: []string{"Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tree, tt.args)
			require.NoError(t, err)
			require.Equal(t, []string{"run", "exec"}, res.Node.Path)
			require.Equal(t, tt.want, res.External)
			require.Empty(t, res.Args)
		})
	}
}

func TestResolve_FlatEquivalence(t *testing.T) {
	s := &spy{}
	tree := gitTree(t, s)
	r, _ := newRunner(tree)

	flat, err := Resolve(tree, []string{"git.clone", "http://x"})
	require.NoError(t, err)
	nested, err := Resolve(tree, []string{"git", "clone", "http://x"})
	require.NoError(t, err)

	require.Same(t, nested.Node, flat.Node)
	require.Equal(t, nested.Args, flat.Args)
	require.Equal(t, []string{"http://x"}, flat.Args)
	require.Equal(t, nested.Scope.Depth(), flat.Scope.Depth())

	for _, res := range []Resolution{flat, nested} {
		_, err := r.Dispatch(context.Background(), res)
		require.NoError(t, err)
		require.Equal(t, "http://x", s.last(t).Scope.String("url"))
	}
}

func TestResolve_FlatErrors(t *testing.T) {
	tree := gitTree(t, &spy{})

	_, err := Resolve(tree, []string{"git..clone"})
	requireUsageKind(t, err, usage.ErrInvalidPath)

	_, err = Resolve(tree, []string{".git"})
	requireUsageKind(t, err, usage.ErrInvalidPath)

	_, err = Resolve(tree, []string{"git.clnoe"})
	uerr := requireUsageKind(t, err, usage.ErrUnknownCommand)
	require.Equal(t, []string{"git"}, uerr.Path)
	require.Contains(t, uerr.Suggestions, "git.clone")

	_, err = Resolve(tree, []string{"git.clone.extra"})
	uerr = requireUsageKind(t, err, usage.ErrInvalidPath)
	require.Contains(t, uerr.Error(), "'git.clone.extra'")
	require.Contains(t, uerr.Error(), "'git.clone' is a command")

	res, err := Resolve(tree, []string{"git.clone", "extra"})
	require.NoError(t, err)
	require.Equal(t, []string{"extra"}, res.Args)
}

// externalTaskTree builds a task mode tree: tool -> run{default=exec, external}.
func externalTaskTree(t *testing.T) *commands.Tree {
	t.Helper()
	tree, err := commands.Build([]commands.Declaration{
		commands.Root(commands.RootSpec{Name: "tool"}),
		commands.Group(commands.GroupSpec{Path: []string{"run"}, Default: "exec", AllowExternal: true}),
		commands.Command(commands.CommandSpec{Path: []string{"run", "exec"}, Handler: (&spy{}).handler()}),
	}, commands.WithTasks(commands.DefaultTaskConfig()))
	require.NoError(t, err)
	return tree
}

func TestResolve_FlatAtExternalModule(t *testing.T) {
	tree := externalTaskTree(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "dotted external token stays whole", args: []string{"run", "example.com"}, want: []string{"example.com"}},
		{name: "split tokens stay split", args: []string{"run", "example", "com"}, want: []string{"example", "com"}},
		{name: "malformed flat token passes through", args: []string{"run", "a..b"}, want: []string{"a..b"}},
		{name: "flat explicit default", args: []string{"run.exec", "Y"}, want: []string{"Y"}},
		{name: "flat module", args: []string{"run"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tree, tt.args)
			require.NoError(t, err)
			require.Equal(t, []string{"run", "exec"}, res.Node.Path)
			require.Equal(t, tt.want, res.External)
		})
	}

	_, err := Resolve(tree, []string{"run.bogus"})
	requireUsageKind(t, err, usage.ErrUnknownCommand)

	_, err = Resolve(tree, []string{"run.exec.extra"})
	requireUsageKind(t, err, usage.ErrInvalidPath)
}

func TestResolve_FlatDisabledOutsideTaskMode(t *testing.T) {
	tree := databaseTree(t, &spy{})

	_, err := Resolve(tree, []string{"database.status"})
	requireUsageKind(t, err, usage.ErrUnknownCommand)
}

func TestResolve_HelpRoutes(t *testing.T) {
	db := databaseTree(t, &spy{})
	git := gitTree(t, &spy{})

	tests := []struct {
		name string
		tree *commands.Tree
		args []string
		path []string
		// err is the kind of the error carried along, ErrUnknown for none.
		err usage.ErrorKind
	}{
		{name: "help command on root", tree: db, args: []string{"help"}, path: []string{}},
		{name: "help command on module", tree: db, args: []string{"help", "database"}, path: []string{"database"}},
		{name: "help command on action", tree: db, args: []string{"help", "database", "migrate"}, path: []string{"database", "migrate"}},
		{name: "help flag on module", tree: db, args: []string{"database", "--help"}, path: []string{"database"}},
		{name: "short help flag on root", tree: db, args: []string{"-h"}, path: []string{}},
		{name: "help on external module", tree: db, args: []string{"help", "run"}, path: []string{"run"}},
		{name: "task help prefix", tree: git, args: []string{"h", "git.clone"}, path: []string{"git", "clone"}},
		{name: "task help on module", tree: git, args: []string{"h", "git"}, path: []string{"git"}},
		{name: "help command with flat path", tree: git, args: []string{"help", "git.commit"}, path: []string{"git", "commit"}},
		{name: "failed help route reports node reached", tree: db, args: []string{"help", "database", "bogus"}, path: []string{"database"}, err: usage.ErrUnknownCommand},
		{name: "failed task help route", tree: git, args: []string{"h", "git.nope"}, path: []string{"git"}, err: usage.ErrUnknownCommand},
		{name: "task help past an action", tree: git, args: []string{"h", "git.clone.extra"}, path: []string{"git", "clone"}, err: usage.ErrInvalidPath},
		{name: "trailing help after unknown flat segment", tree: git, args: []string{"git.bogus", "-h"}, path: []string{"git"}, err: usage.ErrUnknownCommand},
		{name: "trailing help after unknown subcommand", tree: db, args: []string{"database", "bogus", "--help"}, path: []string{"database"}, err: usage.ErrUnknownCommand},
		{name: "trailing help after invalid flag", tree: db, args: []string{"database", "--bogus", "-h"}, path: []string{"database"}, err: usage.ErrInvalidFlag},
		{name: "trailing help past an action", tree: git, args: []string{"git.clone.extra", "-h"}, path: []string{"git", "clone"}, err: usage.ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.tree, tt.args)
			require.NoError(t, err)
			require.True(t, res.Help)
			require.Equal(t, len(tt.path), len(res.Node.Path))
			if len(tt.path) > 0 {
				require.Equal(t, tt.path, res.Node.Path)
			}
			if tt.err != usage.ErrUnknown {
				requireUsageKind(t, res.Err, tt.err)
			} else {
				require.NoError(t, res.Err)
			}
		})
	}
}

func TestResolve_HelpPrefixOnlyInTaskMode(t *testing.T) {
	tree := databaseTree(t, &spy{})

	_, err := Resolve(tree, []string{"h", "database"})
	requireUsageKind(t, err, usage.ErrUnknownCommand)
}

func TestRun_Help(t *testing.T) {
	s := &spy{}
	tree := databaseTree(t, s)
	r, out := newRunner(tree)

	status, err := r.Run(context.Background(), []string{"database", "migrate", "-h"})
	require.NoError(t, err)
	require.Zero(t, status)
	require.Contains(t, out.String(), "ARGUMENTS")
	require.Empty(t, s.calls)

	out.Reset()
	status, err = r.Run(context.Background(), []string{"help", "database", "bogus"})
	requireUsageKind(t, err, usage.ErrUnknownCommand)
	require.Equal(t, DefaultFailureStatus, status)
	require.Contains(t, out.String(), "tool database")

	out.Reset()
	status, err = r.Run(context.Background(), []string{"database", "bogus", "--help"})
	requireUsageKind(t, err, usage.ErrUnknownCommand)
	require.Equal(t, DefaultFailureStatus, status)
	require.Contains(t, out.String(), "tool database")
	require.Empty(t, s.calls)

	var shown string
	r.Show = func(text string) { shown = text }
	_, err = r.Run(context.Background(), []string{"help"})
	require.NoError(t, err)
	require.Contains(t, shown, "USAGE")
}

func TestRun_Overview(t *testing.T) {
	tree := gitTree(t, &spy{})
	r, out := newRunner(tree)

	status, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, status)
	require.Contains(t, out.String(), "git.clone")
	require.Contains(t, out.String(), "git.commit")
}

func TestRun_ArgumentErrors(t *testing.T) {
	tree := databaseTree(t, &spy{})
	r, _ := newRunner(tree)

	tests := []struct {
		name string
		args []string
		kind usage.ErrorKind
	}{
		{name: "missing positional", args: []string{"database", "migrate"}, kind: usage.ErrMissingArgument},
		{name: "unexpected positional", args: []string{"database", "migrate", "v1", "v2"}, kind: usage.ErrInvalidArgument},
		{name: "unknown leaf flag", args: []string{"database", "status", "--fast"}, kind: usage.ErrInvalidFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := r.Run(context.Background(), tt.args)
			uerr := requireUsageKind(t, err, tt.kind)
			require.Equal(t, 2, uerr.GetExitCode())
			require.Equal(t, DefaultFailureStatus, status)
		})
	}
}

func TestDispatch_ResultNormalization(t *testing.T) {
	fault := errors.New("deploy failed")

	tests := []struct {
		name    string
		handler commands.Handler
		failure uint8
		want    uint8
		wantErr error
	}{
		{
			name:    "no value is success",
			handler: noop,
			want:    0,
		},
		{
			name: "explicit status",
			handler: commands.StatusFunc(func(context.Context, *commands.Invocation) (uint8, error) {
				return 7, nil
			}),
			want: 7,
		},
		{
			name: "explicit zero status",
			handler: commands.StatusFunc(func(context.Context, *commands.Invocation) (uint8, error) {
				return 0, nil
			}),
			want: 0,
		},
		{
			name: "optional status present",
			handler: commands.OptionalFunc(func(context.Context, *commands.Invocation) (uint8, bool, error) {
				return 9, true, nil
			}),
			want: 9,
		},
		{
			name: "optional status absent",
			handler: commands.OptionalFunc(func(context.Context, *commands.Invocation) (uint8, bool, error) {
				return 0, false, nil
			}),
			want: DefaultFailureStatus,
		},
		{
			name: "configured failure sentinel",
			handler: commands.HandlerFunc(func(context.Context, *commands.Invocation) (commands.Result, error) {
				return commands.NoStatus(), nil
			}),
			failure: 42,
			want:    42,
		},
		{
			name: "handler fault is returned unchanged",
			handler: commands.Func(func(context.Context, *commands.Invocation) error {
				return fault
			}),
			want:    DefaultFailureStatus,
			wantErr: fault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := commands.Build([]commands.Declaration{
				commands.Root(commands.RootSpec{Name: "tool"}),
				commands.Command(commands.CommandSpec{Path: []string{"deploy"}, Handler: tt.handler}),
			})
			require.NoError(t, err)

			r, _ := newRunner(tree)
			r.FailureStatus = tt.failure

			status, err := r.Run(context.Background(), []string{"deploy"})
			require.Equal(t, tt.want, status)
			if tt.wantErr != nil {
				require.Same(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDispatch_NotAnAction(t *testing.T) {
	tree := databaseTree(t, &spy{})
	r, _ := newRunner(tree)

	_, err := r.Dispatch(context.Background(), Resolution{Node: tree.Root})
	require.ErrorContains(t, err, "not an action")
}

type memoryRecorder struct {
	records []domain.InvocationRecord
	err     error
}

func (m *memoryRecorder) Insert(rec domain.InvocationRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

type memoryLogger struct {
	lines []string
}

func (l *memoryLogger) Debug(format string, _ ...any) { l.lines = append(l.lines, "debug "+format) }
func (l *memoryLogger) Info(format string, _ ...any)  { l.lines = append(l.lines, "info "+format) }
func (l *memoryLogger) Warn(format string, _ ...any)  { l.lines = append(l.lines, "warn "+format) }
func (l *memoryLogger) Error(format string, _ ...any) { l.lines = append(l.lines, "error "+format) }
func (l *memoryLogger) Close() error                  { return nil }

func TestDispatch_RecordsInvocations(t *testing.T) {
	s := &spy{}
	tree := databaseTree(t, s)
	rec := &memoryRecorder{err: errors.New("disk full")}
	logger := &memoryLogger{}

	r, _ := newRunner(tree)
	r.Recorder = rec
	r.Logger = logger

	args := []string{"database", "migrate", "v3"}
	_, err := r.Run(context.Background(), args)
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	require.Equal(t, s.last(t).ID, got.ID)
	require.Equal(t, []string{"database", "migrate"}, got.Path)
	require.Equal(t, args, got.Args)
	require.False(t, got.Failed())
	require.False(t, got.StartedAt.IsZero())

	require.Contains(t, logger.lines, "warn record invocation %s: %v")
}
