// Package tasks implements flat task addressing: a command path written as
// a single token with its segments joined by a separator, such as
// "git.clone".
package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/usage"
)

// ErrEmptySegment is returned for a flat path with an empty segment, such
// as "git..clone" or ".git".
var ErrEmptySegment = errors.New("empty path segment")

// Split splits a flat path into its segments.
func Split(token, sep string) []string {
	return strings.Split(token, sep)
}

// Join writes path segments as a flat path.
func Join(path []string, sep string) string {
	return strings.Join(path, sep)
}

// IsFlat reports whether token is written as a flat path. Flags are never
// flat paths, whatever their value contains.
func IsFlat(token, sep string) bool {
	return sep != "" && !strings.HasPrefix(token, "-") && strings.Contains(token, sep)
}

// FlatPath returns the flat path addressing n.
func FlatPath(n *commands.Node, sep string) string {
	return Join(n.Path, sep)
}

// Explode returns the segments of a flat token. A token that is not flat
// comes back as its only segment.
func Explode(token, sep string) ([]string, error) {
	if !IsFlat(token, sep) {
		return []string{token}, nil
	}
	segs := Split(token, sep)
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%q: %w", token, ErrEmptySegment)
		}
	}
	return segs, nil
}

// Lookup resolves a flat path against the tree below root. Only an exact
// chain of existing nodes matches.
func Lookup(root *commands.Node, token, sep string) (*commands.Node, error) {
	segs, err := Explode(token, sep)
	if err != nil {
		return nil, usage.InvalidPath(root.Name, token, ErrEmptySegment.Error())
	}

	cur := root
	for i, seg := range segs {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, usage.UnknownCommand(root.Name, segs[:i], seg)
		}
		cur = next
	}
	return cur, nil
}
