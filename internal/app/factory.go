// Package app wires configuration, logging, history and the manifest tree
// into a ready-to-run dispatcher.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/config"
	"github.com/footprint-tools/cmdtree/internal/dispatchers"
	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/history"
	"github.com/footprint-tools/cmdtree/internal/log"
	"github.com/footprint-tools/cmdtree/internal/manifest"
	"github.com/footprint-tools/cmdtree/internal/paths"
	"github.com/footprint-tools/cmdtree/internal/ui"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

// ManifestEnv names the manifest when --file is not given.
const ManifestEnv = "CMDTREE_FILE"

// Options configures the application factory.
type Options struct {
	// ManifestPath overrides every other way of finding the manifest.
	ManifestPath string

	// Pager options
	PagerDisabled bool
	PagerOverride string

	StyleEnabled bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WorkDir is where the manifest search starts. Empty means the
	// current directory.
	WorkDir string
}

// DefaultOptions returns the default application options.
func DefaultOptions() Options {
	return Options{
		StyleEnabled: true,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// App is a loaded manifest tree with everything needed to run it.
type App struct {
	Manifest *manifest.Manifest
	Tree     *commands.Tree
	Runner   *dispatchers.Runner
	Config   domain.ConfigProvider
	Logger   domain.Logger
	Output   *ui.Writer

	// History is nil unless history recording is enabled.
	History domain.HistoryStore

	historyKeep int
}

// New loads the configuration and the manifest and builds the tree. A
// manifest that cannot be found, read or built is reported as a
// *commands.ConfigError.
func New(opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	settings, _ := config.GetAll()
	style.Init(opts.StyleEnabled, settings)
	logger := newLogger(settings)

	path, err := manifestPath(opts, settings)
	if err != nil {
		return nil, &commands.ConfigError{Err: err}
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, &commands.ConfigError{Err: err}
	}

	tree, err := m.Build(&manifest.Shell{Stdin: opts.Stdin}, TaskConfig(settings))
	if err != nil {
		return nil, err
	}
	logger.Debug("app: loaded %s from %s", tree.Name(), path)

	var writerOpts []ui.WriterOption
	if opts.PagerDisabled {
		writerOpts = append(writerOpts, ui.WithPagerDisabled())
	}
	if opts.PagerOverride != "" {
		writerOpts = append(writerOpts, ui.WithPagerOverride(opts.PagerOverride))
	}
	writerOpts = append(writerOpts, ui.WithConfigGetter(config.Get))
	output := ui.NewWriterTo(opts.Stdout, writerOpts...)

	a := &App{
		Manifest:    m,
		Tree:        tree,
		Config:      config.Provider{},
		Logger:      logger,
		Output:      output,
		historyKeep: intSetting(settings, "history_keep", 1000),
	}

	a.Runner = &dispatchers.Runner{
		Tree:          tree,
		FailureStatus: FailureStatus(settings),
		Stdout:        opts.Stdout,
		Stderr:        opts.Stderr,
		Show:          output.Pager,
		Logger:        logger,
	}

	if settings["history"] == "true" {
		if store, err := OpenHistory(); err != nil {
			logger.Warn("app: history disabled: %v", err)
		} else {
			a.History = store
			a.Runner.Recorder = store
		}
	}

	return a, nil
}

// OpenHistory opens the history database regardless of the history
// setting, for listing past invocations.
func OpenHistory() (*history.Store, error) {
	path := paths.HistoryDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return history.New(path)
}

func newLogger(settings map[string]string) domain.Logger {
	if settings["enable_log"] != "true" {
		return log.NopLogger{}
	}
	l, err := log.Init(paths.LogFilePath(), log.ParseLevel(settings["log_level"]))
	if err != nil || l == nil {
		return log.NopLogger{}
	}
	return l
}

// manifestPath picks the manifest: the explicit option, $CMDTREE_FILE, the
// manifest setting, then a search upwards from the working directory.
func manifestPath(opts Options, settings map[string]string) (string, error) {
	if opts.ManifestPath != "" {
		return opts.ManifestPath, nil
	}
	if p := os.Getenv(ManifestEnv); p != "" {
		return p, nil
	}
	if p := settings["manifest"]; p != "" {
		return p, nil
	}

	dir := opts.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	path, err := manifest.Find(dir)
	if errors.Is(err, manifest.ErrNotFound) {
		return "", fmt.Errorf("%w in %s or its parents (looked for %v)", err, dir, manifest.DefaultNames)
	}
	return path, err
}

// TaskConfig reads the task settings. Values that do not parse keep their
// defaults.
func TaskConfig(settings map[string]string) commands.TaskConfig {
	cfg := commands.DefaultTaskConfig()
	if sep := settings["separator"]; sep != "" {
		cfg.Separator = sep
	}
	cfg.MaxGroupSize = intSetting(settings, "max_groupsize", cfg.MaxGroupSize)
	cfg.MaxDepth = intSetting(settings, "max_depth", cfg.MaxDepth)
	return cfg
}

// FailureStatus reads the failure_status setting. Zero is not a failure
// and falls back to the default like any other invalid value.
func FailureStatus(settings map[string]string) uint8 {
	n, err := strconv.ParseUint(settings["failure_status"], 10, 8)
	if err != nil || n == 0 {
		return dispatchers.DefaultFailureStatus
	}
	return uint8(n)
}

func intSetting(settings map[string]string, key string, def int) int {
	n, err := strconv.Atoi(settings[key])
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Close prunes the history down to history_keep entries and releases
// resources.
func (a *App) Close() error {
	if a.History != nil {
		if _, err := a.History.Prune(a.historyKeep); err != nil {
			a.Logger.Warn("app: prune history: %v", err)
		}
		_ = a.History.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Close()
	}
	return nil
}
