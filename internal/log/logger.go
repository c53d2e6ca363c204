// Package log writes leveled diagnostics to a size-rotated file. Nothing
// is logged until Init succeeds; the package functions are no-ops before.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/footprint-tools/cmdtree/internal/domain"
)

// Rotation limits of the log file.
const (
	MaxSizeMB  = 5
	MaxBackups = 3
	MaxAgeDays = 30
)

// Level is the severity of a message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name, in any case, to its Level. Unknown names
// give LevelWarn.
func ParseLevel(s string) Level {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i)
		}
	}
	return LevelWarn
}

// Logger appends "[time] LEVEL: message" lines to a rotated file. A nil
// *Logger discards everything.
type Logger struct {
	mu  sync.Mutex
	out *lumberjack.Logger
	min Level
}

// New opens a logger on path, creating its directory with mode 0700 and
// the file with mode 0600.
func New(path string, min Level) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	// OpenFile keeps the mode of an existing file.
	chmodErr := f.Chmod(0600)
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if chmodErr != nil {
		return nil, fmt.Errorf("chmod log file: %w", chmodErr)
	}

	return &Logger{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
		},
		min: min,
	}, nil
}

func (l *Logger) write(level Level, format string, args []any) {
	if l == nil || level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format(time.DateTime), level, msg)

	l.mu.Lock()
	_, err := l.out.Write([]byte(line))
	l.mu.Unlock()

	if err != nil && level >= LevelError {
		fmt.Fprintf(os.Stderr, "log: %v (message: %s)\n", err, msg)
	}
}

func (l *Logger) Debug(format string, args ...any) { l.write(LevelDebug, format, args) }
func (l *Logger) Info(format string, args ...any)  { l.write(LevelInfo, format, args) }
func (l *Logger) Warn(format string, args ...any)  { l.write(LevelWarn, format, args) }
func (l *Logger) Error(format string, args ...any) { l.write(LevelError, format, args) }

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}

var (
	current  atomic.Pointer[Logger]
	initOnce sync.Once
	initErr  error
)

// Init installs the package logger on first use and returns it. Later
// calls return the first result.
func Init(path string, min Level) (*Logger, error) {
	initOnce.Do(func() {
		var l *Logger
		if l, initErr = New(path, min); initErr == nil {
			current.Store(l)
		}
	})
	return current.Load(), initErr
}

// Default returns the package logger, nil before Init.
func Default() *Logger { return current.Load() }

func Debug(format string, args ...any) { current.Load().write(LevelDebug, format, args) }
func Info(format string, args ...any)  { current.Load().write(LevelInfo, format, args) }
func Warn(format string, args ...any)  { current.Load().write(LevelWarn, format, args) }
func Error(format string, args ...any) { current.Load().write(LevelError, format, args) }

// Close closes the package logger.
func Close() error { return current.Load().Close() }

// NopLogger discards all messages.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (NopLogger) Close() error         { return nil }

var (
	_ domain.Logger = (*Logger)(nil)
	_ domain.Logger = NopLogger{}
)
