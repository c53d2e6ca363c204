// Package ui provides terminal output helpers including pager support.
//
// The pager is an arbitrary user-configured command, the same way git and
// man treat $PAGER.
package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/footprint-tools/cmdtree/internal/domain"
)

// DefaultPager is used when neither the config nor $PAGER names one.
const DefaultPager = "less -FRSX"

// Writer implements domain.OutputWriter.
type Writer struct {
	out           io.Writer
	pagerDisabled bool
	pagerOverride string
	configGetter  func(string) (string, bool)
	envGetter     func(string) string
	isTerminal    func(io.Writer) bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPagerDisabled disables the pager.
func WithPagerDisabled() WriterOption {
	return func(w *Writer) {
		w.pagerDisabled = true
	}
}

// WithPagerOverride sets a pager command override.
func WithPagerOverride(cmd string) WriterOption {
	return func(w *Writer) {
		w.pagerOverride = cmd
	}
}

// WithConfigGetter sets the config getter function.
func WithConfigGetter(fn func(string) (string, bool)) WriterOption {
	return func(w *Writer) {
		w.configGetter = fn
	}
}

// WithEnvGetter sets the environment variable getter function.
func WithEnvGetter(fn func(string) string) WriterOption {
	return func(w *Writer) {
		w.envGetter = fn
	}
}

// NewWriter creates a Writer for stdout.
func NewWriter(opts ...WriterOption) *Writer {
	return NewWriterTo(os.Stdout, opts...)
}

// NewWriterTo creates a Writer for out.
func NewWriterTo(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		out:        out,
		envGetter:  os.Getenv,
		isTerminal: IsTerminal,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IsTerminal reports whether out is a terminal.
func IsTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.out.Write(p)
}

// Printf formats and prints to the output.
func (w *Writer) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(w.out, format, args...)
}

// Println prints a line to the output.
func (w *Writer) Println(args ...any) (int, error) {
	return fmt.Fprintln(w.out, args...)
}

// PagerCommand returns the pager that Pager would run, or "" when content
// is written directly.
//
// Precedence:
//  1. --no-pager → direct output
//  2. output not a TTY → direct output
//  3. pager override → uses it, "cat" bypasses
//  4. pager config key → uses it, "cat" bypasses
//  5. $PAGER → uses it, "cat" bypasses
//  6. DefaultPager
func (w *Writer) PagerCommand() string {
	if w.pagerDisabled || !w.isTerminal(w.out) {
		return ""
	}

	cmd := DefaultPager
	if w.pagerOverride != "" {
		cmd = w.pagerOverride
	} else if v, ok := w.lookupConfig("pager"); ok && v != "" {
		cmd = v
	} else if w.envGetter != nil && w.envGetter("PAGER") != "" {
		cmd = w.envGetter("PAGER")
	}

	if strings.TrimSpace(cmd) == "cat" {
		return ""
	}
	return cmd
}

// Pager displays content through a pager if appropriate. It falls back to
// direct output when the pager cannot be run.
func (w *Writer) Pager(content string) {
	cmd := w.PagerCommand()
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		fmt.Fprint(w.out, content)
		return
	}

	pager := exec.Command(parts[0], parts[1:]...)
	pager.Stdin = strings.NewReader(content)
	pager.Stdout = w.out
	pager.Stderr = os.Stderr
	if err := pager.Run(); err != nil {
		fmt.Fprint(w.out, content)
	}
}

func (w *Writer) lookupConfig(key string) (string, bool) {
	if w.configGetter == nil {
		return "", false
	}
	return w.configGetter(key)
}

// Verify Writer implements domain.OutputWriter
var _ domain.OutputWriter = (*Writer)(nil)
