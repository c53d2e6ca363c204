package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/log"
	"github.com/footprint-tools/cmdtree/internal/params"
)

// DefaultShell runs manifest scripts when Shell.Program is empty.
const DefaultShell = "sh"

// Shell runs the run scripts of manifest actions.
//
// Every parameter bound anywhere in the invocation's scope chain is
// exported to the script as an environment variable named after the
// parameter, dashes replaced by underscores. Inner scopes shadow outer
// ones and both shadow the inherited environment, so $name in a script
// is the nearest binding. Variadic leaf arguments followed by the
// external tokens become the script's positional parameters ("$@").
type Shell struct {
	Program string
	Dir     string
	Env     []string // nil means os.Environ()
	Stdin   io.Reader
}

// Handler returns the action handler running script.
func (sh *Shell) Handler(script string) commands.Handler {
	return commands.OptionalFunc(func(ctx context.Context, inv *commands.Invocation) (uint8, bool, error) {
		return sh.run(ctx, script, inv)
	})
}

func (sh *Shell) run(ctx context.Context, script string, inv *commands.Invocation) (uint8, bool, error) {
	program := sh.Program
	if program == "" {
		program = DefaultShell
	}

	argv := append([]string{"-c", script, inv.Node.Name}, positional(inv)...)
	cmd := exec.CommandContext(ctx, program, argv...)
	cmd.Dir = sh.Dir
	cmd.Env = append(sh.environ(), scopeEnv(inv.Scope)...)
	cmd.Stdin = sh.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	log.Debug("manifest: run %s id=%s: %s", strings.Join(inv.Node.Path, " "), inv.ID, script)

	err := cmd.Run()
	if err == nil {
		return 0, true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal.
			log.Debug("manifest: %s id=%s: %v", strings.Join(inv.Node.Path, " "), inv.ID, err)
			return 0, false, nil
		}
		return uint8(code), true, nil
	}
	return 0, false, fmt.Errorf("run %s: %w", program, err)
}

func (sh *Shell) environ() []string {
	if sh.Env != nil {
		return append([]string(nil), sh.Env...)
	}
	return os.Environ()
}

// EnvName is the environment variable a parameter is exported as.
func EnvName(param string) string {
	return strings.ReplaceAll(param, "-", "_")
}

// scopeEnv lists the bindings of the chain root first. exec keeps the last
// value of a duplicated key.
func scopeEnv(scope *params.Scope) []string {
	if scope == nil {
		return nil
	}
	var env []string
	for _, s := range scope.Chain() {
		vals := s.Values()
		for _, name := range vals.Names() {
			v, _ := vals.Get(name)
			env = append(env, EnvName(name)+"="+params.Format(v))
		}
	}
	return env
}

func positional(inv *commands.Invocation) []string {
	var out []string
	for _, p := range inv.Node.Params.Positionals() {
		if !p.Variadic() {
			continue
		}
		out = append(out, inv.Scope.Strings(p.Name)...)
	}
	return append(out, inv.External...)
}
