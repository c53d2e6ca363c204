package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

// ErrUnknownKey is returned by Validate for keys that are not in
// domain.ConfigKeys.
type ErrUnknownKey struct {
	Key string
}

func (e *ErrUnknownKey) Error() string {
	return fmt.Sprintf("config: unknown key %q", e.Key)
}

// ErrInvalidValue is wrapped by Validate errors for values a known key
// rejects.
var ErrInvalidValue = errors.New("invalid value")

var validators = map[string]func(string) error{
	"separator":      validSeparator,
	"max_groupsize":  nonNegative,
	"max_depth":      nonNegative,
	"failure_status": validStatus,
	"enable_log":     validBool,
	"history":        validBool,
	"history_keep":   positive,
	"log_level":      oneOf("debug", "info", "warn", "error"),
	"theme":          validTheme,
	"display_time":   oneOf("12h", "24h"),
}

// Validate checks value against the rules of key.
func Validate(key, value string) error {
	if !domain.IsValidConfigKey(key) {
		return &ErrUnknownKey{Key: key}
	}
	check, ok := validators[key]
	if !ok {
		return nil
	}
	if err := check(value); err != nil {
		return fmt.Errorf("config: %s: %w: %w", key, ErrInvalidValue, err)
	}
	return nil
}

func validSeparator(v string) error {
	switch {
	case v == "":
		return fmt.Errorf("must not be empty")
	case strings.ContainsAny(v, " \t"):
		return fmt.Errorf("must not contain whitespace")
	case strings.HasPrefix(v, "-"):
		return fmt.Errorf("must not start with '-'")
	}
	return nil
}

func nonNegative(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("expected a non-negative integer, got %q", v)
	}
	return nil
}

func positive(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("expected a positive integer, got %q", v)
	}
	return nil
}

// validStatus accepts 1-255; a failure must not exit as success.
func validStatus(v string) error {
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil || n == 0 {
		return fmt.Errorf("expected a status between 1 and 255, got %q", v)
	}
	return nil
}

func validBool(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return fmt.Errorf("expected true or false, got %q", v)
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		if !slices.Contains(allowed, strings.ToLower(v)) {
			return fmt.Errorf("expected one of %s, got %q", strings.Join(allowed, ", "), v)
		}
		return nil
	}
}

func validTheme(v string) error {
	if _, ok := style.Themes[v]; ok || slices.Contains(style.BaseThemeNames, v) {
		return nil
	}
	return fmt.Errorf("unknown theme %q (available: %s)", v, strings.Join(style.BaseThemeNames, ", "))
}
