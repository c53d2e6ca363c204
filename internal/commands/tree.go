package commands

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultSeparator    = "."
	DefaultMaxGroupSize = 5
	DefaultMaxDepth     = 20
)

// TaskConfig enables flat task addressing and configures the overview.
type TaskConfig struct {
	Separator    string
	MaxGroupSize int
	MaxDepth     int
}

// DefaultTaskConfig returns the stock task settings.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Separator:    DefaultSeparator,
		MaxGroupSize: DefaultMaxGroupSize,
		MaxDepth:     DefaultMaxDepth,
	}
}

func (c TaskConfig) validate() error {
	if c.Separator == "" {
		return errors.New("task separator must not be empty")
	}
	if strings.ContainsAny(c.Separator, " \t\n") || strings.HasPrefix(c.Separator, "-") {
		return fmt.Errorf("invalid task separator %q", c.Separator)
	}
	if c.MaxGroupSize < 0 {
		return fmt.Errorf("max group size must not be negative, got %d", c.MaxGroupSize)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// Tree is a built, immutable command tree. It may be shared by any number
// of concurrent resolutions.
type Tree struct {
	Root  *Node
	tasks *TaskConfig
}

// Name returns the program name, which is the root node's name.
func (t *Tree) Name() string {
	return t.Root.Name
}

// Tasks returns the task configuration when the tree was built in task
// mode.
func (t *Tree) Tasks() (TaskConfig, bool) {
	if t.tasks == nil {
		return TaskConfig{}, false
	}
	return *t.tasks, true
}

// Find returns the node at path.
func (t *Tree) Find(path []string) (*Node, bool) {
	cur := t.Root
	for _, seg := range path {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ConfigError reports a malformed tree. It is raised while building, before
// any argument is looked at.
type ConfigError struct {
	Path []string
	Err  error
}

func (e *ConfigError) Error() string {
	if len(e.Path) == 0 {
		return "configuration error: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration error at %q: %v", strings.Join(e.Path, " "), e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(path []string, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}
