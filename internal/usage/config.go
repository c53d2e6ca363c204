package usage

import "fmt"

// InvalidConfigKey is returned when a configuration key is not known.
func InvalidConfigKey(program string, key string) *Error {
	return &Error{
		Kind:    ErrInvalidConfigKey,
		Message: fmt.Sprintf("%s: unknown config key '%s'", program, key),
	}
}

// FailedConfigPath is returned when the configuration file cannot be
// located or written.
func FailedConfigPath(program string, err error) *Error {
	return &Error{
		Kind:    ErrFailedConfigPath,
		Message: fmt.Sprintf("%s: could not access config file: %v", program, err),
		Err:     err,
	}
}

// InvalidConfigValue is returned when a value is rejected by the rules of
// its key.
func InvalidConfigValue(program string, err error) *Error {
	return &Error{
		Kind:    ErrInvalidArgument,
		Message: fmt.Sprintf("%s: %v", program, err),
		Err:     err,
	}
}
