// Package dispatchers resolves an argument vector against a command tree
// and runs the action it names.
package dispatchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/help"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/tasks"
	"github.com/footprint-tools/cmdtree/internal/usage"
)

// DefaultFailureStatus is used when a handler reports failure without an
// exit status.
const DefaultFailureStatus uint8 = 1

// Recorder keeps a record of every dispatched invocation.
type Recorder interface {
	Insert(record domain.InvocationRecord) error
}

// Runner resolves and dispatches invocations against one tree. The zero
// value of every field except Tree is usable.
type Runner struct {
	Tree *commands.Tree

	// FailureStatus replaces DefaultFailureStatus when non-zero. Zero is
	// never a failure status.
	FailureStatus uint8

	Stdout io.Writer
	Stderr io.Writer

	// Show displays help and overview text. It defaults to writing to
	// Stdout.
	Show func(text string)

	Logger   domain.Logger
	Recorder Recorder
}

func (r *Runner) failure() uint8 {
	if r.FailureStatus != 0 {
		return r.FailureStatus
	}
	return DefaultFailureStatus
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return io.Discard
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return io.Discard
	}
	return r.Stderr
}

func (r *Runner) show(text string) {
	if r.Show != nil {
		r.Show(text)
		return
	}
	_, _ = io.WriteString(r.stdout(), text)
}

func (r *Runner) debugf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Debug(format, args...)
	}
}

// Run resolves args and dispatches the result. Without arguments a tree in
// task mode shows the task overview instead.
//
// Usage errors and handler errors are returned unchanged next to the
// status; the caller decides how they map to the process exit code.
func (r *Runner) Run(ctx context.Context, args []string) (uint8, error) {
	if cfg, ok := r.Tree.Tasks(); ok && len(args) == 0 {
		r.show(help.Overview(r.Tree, tasks.Overview(r.Tree.Root, cfg)))
		return 0, nil
	}

	res, err := Resolve(r.Tree, args)
	if err != nil {
		r.debugf("resolve %q: %v", args, err)
		return r.failure(), err
	}
	if res.Help {
		r.show(help.Node(r.Tree, res.Node))
		if res.Err != nil {
			return r.failure(), res.Err
		}
		return 0, nil
	}
	return r.dispatch(ctx, res, args)
}

// Dispatch parses the leaf arguments of res, layers the leaf scope and
// calls the handler. The handler result is normalized to an exit status;
// a handler error is returned as is.
func (r *Runner) Dispatch(ctx context.Context, res Resolution) (uint8, error) {
	return r.dispatch(ctx, res, slices.Concat(res.Args, res.External))
}

func (r *Runner) dispatch(ctx context.Context, res Resolution, argv []string) (uint8, error) {
	node := res.Node
	if node == nil || node.Kind != commands.KindAction {
		return r.failure(), fmt.Errorf("dispatch: %s is not an action", describe(r.Tree, node))
	}

	vals, err := params.ParseArgs(node.Name, node.Params, res.Args)
	if err != nil {
		if errors.Is(err, params.ErrHelp) {
			r.show(help.Node(r.Tree, node))
			return 0, nil
		}
		return r.failure(), usage.FromParse(r.Tree.Name(), node.Path, err)
	}

	inv := &commands.Invocation{
		ID:       uuid.NewString(),
		Node:     node,
		Scope:    push(res.Scope, node.Name, vals),
		External: res.External,
		Stdout:   r.stdout(),
		Stderr:   r.stderr(),
	}

	r.debugf("dispatch %s id=%s args=%q external=%q", describe(r.Tree, node), inv.ID, res.Args, res.External)

	start := time.Now()
	result, err := node.Handler.Handle(ctx, inv)
	elapsed := time.Since(start)

	status := result.ExitStatus(r.failure())
	if err != nil {
		status = r.failure()
	}
	r.debugf("finished %s id=%s status=%d elapsed=%s err=%v", describe(r.Tree, node), inv.ID, status, elapsed, err)
	r.record(inv, argv, status, err, start, elapsed)

	return status, err
}

func (r *Runner) record(inv *commands.Invocation, argv []string, status uint8, err error, start time.Time, elapsed time.Duration) {
	if r.Recorder == nil {
		return
	}
	rec := domain.InvocationRecord{
		ID:        inv.ID,
		Path:      inv.Node.Path,
		Args:      argv,
		Status:    status,
		StartedAt: start,
		Duration:  elapsed,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if rerr := r.Recorder.Insert(rec); rerr != nil && r.Logger != nil {
		r.Logger.Warn("record invocation %s: %v", inv.ID, rerr)
	}
}

func describe(tree *commands.Tree, n *commands.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Display(tree.Name())
}
