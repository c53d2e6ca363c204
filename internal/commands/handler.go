package commands

import (
	"context"
	"io"

	"github.com/footprint-tools/cmdtree/internal/params"
)

// Invocation is what a handler receives: the action being run, its scope
// chain (the innermost layer holds the action's own arguments) and any
// passthrough tokens.
type Invocation struct {
	ID       string
	Node     *Node
	Scope    *params.Scope
	External []string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Args returns the action's own parsed arguments.
func (inv *Invocation) Args() params.Values {
	return inv.Scope.Values()
}

// Ancestor returns the scope of the node at the given depth from the root.
func (inv *Invocation) Ancestor(depth int) (*params.Scope, bool) {
	return inv.Scope.At(depth)
}

type resultKind int

const (
	resultNone resultKind = iota
	resultStatus
	resultMissing
)

// Result is what a handler returns: nothing, an explicit status byte, or a
// failure without a status.
type Result struct {
	kind resultKind
	code uint8
}

// Success is the result of a handler that returns no value.
func Success() Result {
	return Result{kind: resultNone}
}

// Status is an explicit exit status.
func Status(code uint8) Result {
	return Result{kind: resultStatus, code: code}
}

// Optional is an optional exit status; ok == false reports failure
// without a specific code.
func Optional(code uint8, ok bool) Result {
	if !ok {
		return NoStatus()
	}
	return Status(code)
}

// NoStatus reports failure without a specific code.
func NoStatus() Result {
	return Result{kind: resultMissing}
}

// ExitStatus normalizes the result; failure is the status used when the
// handler reported failure without a code.
func (r Result) ExitStatus(failure uint8) uint8 {
	switch r.kind {
	case resultStatus:
		return r.code
	case resultMissing:
		return failure
	default:
		return 0
	}
}

// Handler runs an action. A returned error is a handler fault and is
// passed up unchanged.
type Handler interface {
	Handle(ctx context.Context, inv *Invocation) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv *Invocation) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, inv *Invocation) (Result, error) {
	return f(ctx, inv)
}

// Func adapts a handler that returns no value.
func Func(fn func(ctx context.Context, inv *Invocation) error) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) (Result, error) {
		if err := fn(ctx, inv); err != nil {
			return Result{}, err
		}
		return Success(), nil
	})
}

// StatusFunc adapts a handler that returns an explicit status byte.
func StatusFunc(fn func(ctx context.Context, inv *Invocation) (uint8, error)) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) (Result, error) {
		code, err := fn(ctx, inv)
		if err != nil {
			return Result{}, err
		}
		return Status(code), nil
	})
}

// OptionalFunc adapts a handler that returns an optional status byte.
func OptionalFunc(fn func(ctx context.Context, inv *Invocation) (uint8, bool, error)) Handler {
	return HandlerFunc(func(ctx context.Context, inv *Invocation) (Result, error) {
		code, ok, err := fn(ctx, inv)
		if err != nil {
			return Result{}, err
		}
		return Optional(code, ok), nil
	})
}
