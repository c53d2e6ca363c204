package usage

import (
	"errors"
	"fmt"

	"github.com/footprint-tools/cmdtree/internal/params"
)

// InvalidFlag is returned when a flag is unknown or its value is rejected.
func InvalidFlag(program string, path []string, err error) *Error {
	return argumentError(ErrInvalidFlag, program, path, err)
}

// MissingArgument is returned when a required argument or flag is not
// provided.
func MissingArgument(program string, path []string, err error) *Error {
	return argumentError(ErrMissingArgument, program, path, err)
}

// InvalidArgument is returned when a positional value cannot be coerced or
// is not expected at all.
func InvalidArgument(program string, path []string, err error) *Error {
	return argumentError(ErrInvalidArgument, program, path, err)
}

// FromParse converts a parser error into a usage error of the matching
// kind. Errors that did not come from the parser are classed as invalid
// flags.
func FromParse(program string, path []string, err error) *Error {
	var perr *params.ParseError
	if !errors.As(err, &perr) {
		return InvalidFlag(program, path, err)
	}
	switch perr.Kind {
	case params.ErrMissingFlag, params.ErrMissingArgument:
		return MissingArgument(program, path, err)
	case params.ErrInvalidArgument, params.ErrUnexpectedArgument:
		return InvalidArgument(program, path, err)
	default:
		return InvalidFlag(program, path, err)
	}
}

func argumentError(kind ErrorKind, program string, path []string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf("%s: %v", display(program, path), err),
		Path:    path,
		Err:     err,
	}
}
