package domain

import "io"

// HistoryStore keeps InvocationRecords.
type HistoryStore interface {
	Insert(record InvocationRecord) error
	// Recent returns up to limit records, newest first; limit <= 0 means all.
	Recent(limit int) ([]InvocationRecord, error)
	// Prune keeps the newest keep records and reports how many went.
	Prune(keep int) (int64, error)
	Close() error
}

// ConfigProvider reads and edits user settings. Get and GetAll fall back
// to the defaults in ConfigKeys.
type ConfigProvider interface {
	Get(key string) (string, bool)
	GetAll() (map[string]string, error)
	Set(key, value string) error
	Unset(key string) error
}

// Logger takes printf-style diagnostics.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Close() error
}

// OutputWriter is user-facing output. Pager shows long text through the
// configured pager when the output is a terminal.
type OutputWriter interface {
	io.Writer
	Printf(format string, args ...any) (int, error)
	Println(args ...any) (int, error)
	Pager(content string)
}
