package usage

// ErrorKind classifies a usage error.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrUnknownCommand
	ErrMissingCommand
	ErrInvalidPath
	ErrInvalidFlag
	ErrMissingArgument
	ErrInvalidArgument
	ErrInvalidConfigKey
	ErrFailedConfigPath
)

// Error is a mistake in the command line, reported to the user as is.
type Error struct {
	Kind    ErrorKind
	Message string
	// Path is the command path reached before the error, without the
	// program name.
	Path        []string
	Suggestions []string
	Err         error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GetExitCode is 2 for errors in the arguments of a resolved command and
// 1 for everything else.
func (e *Error) GetExitCode() int {
	switch e.Kind {
	case ErrInvalidFlag, ErrMissingArgument, ErrInvalidArgument:
		return 2
	default:
		return 1
	}
}

// Resolution reports whether the error came from path resolution rather
// than from argument parsing.
func (e *Error) Resolution() bool {
	switch e.Kind {
	case ErrUnknownCommand, ErrMissingCommand, ErrInvalidPath:
		return true
	default:
		return false
	}
}
