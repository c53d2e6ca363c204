package usage

import (
	"fmt"
	"slices"
	"strings"
)

func display(program string, path []string) string {
	return strings.Join(append([]string{program}, path...), " ")
}

// UnknownCommand is returned when a token names no subcommand of the node
// at path.
func UnknownCommand(program string, path []string, token string, suggestions ...string) *Error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: '%s' is not a %s command. See '%s --help'.",
		program, strings.Join(append(slices.Clone(path), token), " "), display(program, path), display(program, path))

	if len(suggestions) == 1 {
		fmt.Fprintf(&b, "\n\nThe most similar command is\n\t%s", suggestions[0])
	} else if len(suggestions) > 1 {
		b.WriteString("\n\nThe most similar commands are")
		for _, s := range suggestions {
			b.WriteString("\n\t" + s)
		}
	}

	return &Error{
		Kind:        ErrUnknownCommand,
		Message:     b.String(),
		Path:        path,
		Suggestions: suggestions,
	}
}

// MissingCommand is returned when a module is addressed without a
// subcommand and has no default.
func MissingCommand(program string, path []string) *Error {
	return &Error{
		Kind:    ErrMissingCommand,
		Message: fmt.Sprintf("%s: no command given. See '%s --help'.", display(program, path), display(program, path)),
		Path:    path,
	}
}

// InvalidPath is returned for a malformed flat task path.
func InvalidPath(program string, token string, reason string) *Error {
	return &Error{
		Kind:    ErrInvalidPath,
		Message: fmt.Sprintf("%s: invalid task path '%s': %s", program, token, reason),
	}
}
