package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/footprint-tools/cmdtree/internal/app"
	"github.com/footprint-tools/cmdtree/internal/browser"
	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/completions"
	"github.com/footprint-tools/cmdtree/internal/config"
	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/format"
	"github.com/footprint-tools/cmdtree/internal/history"
	"github.com/footprint-tools/cmdtree/internal/ui"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
	"github.com/footprint-tools/cmdtree/internal/usage"
)

// ExitConfig is the exit status for a malformed manifest or configuration.
const ExitConfig = 78

const program = "cmdtree"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	meta, rest := splitMeta(args)
	opts, err := parseMeta(meta)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	switch {
	case opts.version:
		fmt.Fprintf(stdout, "%s version %s\n", program, app.Version)
		return 0
	case opts.listConfig:
		return listConfig(stdout, stderr)
	case opts.set != "":
		return setConfig(stdout, stderr, opts.set)
	case opts.unset != "":
		return unsetConfig(stdout, stderr, opts.unset)
	case opts.showHistory:
		return showHistory(stdout, stderr, history.Filter{
			Failed:  opts.failed,
			Command: strings.Join(rest, " "),
			Limit:   opts.history,
		})
	}

	appOpts := app.DefaultOptions()
	appOpts.ManifestPath = opts.file
	appOpts.PagerDisabled = opts.noPager
	appOpts.StyleEnabled = colorEnabled(stdout, opts.noColor)
	appOpts.Stdout = stdout
	appOpts.Stderr = stderr

	a, err := app.New(appOpts)
	if err != nil {
		return report(stderr, err)
	}
	defer func() { _ = a.Close() }()

	if opts.completions != "" {
		shell, err := completions.ParseShell(opts.completions)
		if err != nil {
			fmt.Fprintln(stderr, style.Error(err.Error()))
			return 2
		}
		if err := completions.PrintCompletions(stdout, a.Tree, shell); err != nil {
			return report(stderr, err)
		}
		if ui.IsTerminal(stdout) {
			fmt.Fprint(stderr, style.Muted(completions.Hint(shell, a.Tree.Name(), a.Manifest.Path)))
		}
		return 0
	}

	if opts.interactive {
		path, err := browser.Run(a.Tree)
		if err != nil {
			return report(stderr, err)
		}
		if path == nil {
			return 0
		}
		rest = path
	}

	status, err := a.Runner.Run(ctx, rest)
	if err != nil {
		return report(stderr, err)
	}
	return int(status)
}

// report prints err and maps it to the process exit status.
func report(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, style.Error(err.Error()))

	var cfgErr *commands.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	var ue *usage.Error
	if errors.As(err, &ue) {
		return ue.GetExitCode()
	}
	return 1
}

// configError classifies a failed --set or --unset.
func configError(err error) error {
	var unknown *config.ErrUnknownKey
	switch {
	case errors.As(err, &unknown):
		return usage.InvalidConfigKey(program, unknown.Key)
	case errors.Is(err, config.ErrInvalidValue):
		return usage.InvalidConfigValue(program, err)
	default:
		return usage.FailedConfigPath(program, err)
	}
}

func colorEnabled(stdout io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("CMDTREE_NO_COLOR") != "" {
		return false
	}
	return ui.IsTerminal(stdout)
}

func listConfig(stdout, stderr io.Writer) int {
	values, err := config.GetAll()
	if err != nil {
		return report(stderr, err)
	}
	section := ""
	for _, key := range domain.VisibleConfigKeys() {
		value := values[key.Name]
		if key.HideIfEmpty && value == "" {
			continue
		}
		if key.Section != section {
			section = key.Section
			fmt.Fprintln(stdout, style.Header("# "+section))
		}
		fmt.Fprintf(stdout, "%s=%s\n", key.Name, value)
	}
	return 0
}

func setConfig(stdout, stderr io.Writer, assignment string) int {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		fmt.Fprintln(stderr, style.Error(fmt.Sprintf("--set expects KEY=VALUE, got %q", assignment)))
		return 2
	}
	if err := config.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
		return report(stderr, configError(err))
	}
	fmt.Fprintf(stdout, "%s=%s\n", strings.TrimSpace(key), strings.TrimSpace(value))
	return 0
}

func unsetConfig(stdout, stderr io.Writer, key string) int {
	if err := config.Unset(key); err != nil {
		return report(stderr, configError(err))
	}
	def, _ := domain.GetDefaultValue(key)
	fmt.Fprintf(stdout, "%s=%s\n", key, def)
	return 0
}

// showHistory lists recorded invocations. Tree arguments after the meta
// flags narrow the listing to that command path.
func showHistory(stdout, stderr io.Writer, filter history.Filter) int {
	store, err := app.OpenHistory()
	if err != nil {
		return report(stderr, err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.Query(filter)
	if err != nil {
		return report(stderr, err)
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, style.Muted("no recorded invocations"))
		return 0
	}

	layouts := format.LayoutsFrom(config.Get)
	now := time.Now()
	for _, rec := range records {
		status := style.Success(fmt.Sprintf("%3d", rec.Status))
		if rec.Failed() {
			status = style.Error(fmt.Sprintf("%3d", rec.Status))
		}
		line := fmt.Sprintf("%s  %s  %7s  %s  %s",
			style.Muted(layouts.Relative(rec.StartedAt, now)),
			status,
			format.Duration(rec.Duration),
			style.Info(rec.Command()),
			strings.Join(rec.Args, " "),
		)
		if rec.Error != "" {
			line += "  " + style.Muted(rec.Error)
		}
		fmt.Fprintln(stdout, line)
	}
	return 0
}
