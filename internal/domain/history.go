package domain

import (
	"strings"
	"time"
)

// InvocationRecord is one dispatched invocation as kept in the history.
type InvocationRecord struct {
	ID        string
	Path      []string
	Args      []string
	Status    uint8
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Command returns the space separated command path.
func (r InvocationRecord) Command() string {
	return strings.Join(r.Path, " ")
}

// Failed reports whether the invocation ended with a non-zero status or a
// handler error.
func (r InvocationRecord) Failed() bool {
	return r.Status != 0 || r.Error != ""
}
