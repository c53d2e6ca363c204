package params

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// ErrHelp is returned by the parsers when -h or --help appears in the
// parsed window.
var ErrHelp = pflag.ErrHelp

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// ErrInvalidFlag covers everything the flag parser rejects: unknown
	// flags, missing flag values and values that fail coercion.
	ErrInvalidFlag ErrorKind = iota
	ErrMissingFlag
	ErrMissingArgument
	ErrUnexpectedArgument
	ErrInvalidArgument
)

// ParseError is returned when tokens do not match a schema. Its message is
// meant to be shown to the user as is.
type ParseError struct {
	Kind  ErrorKind
	Param string
	Err   error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseWindow parses the flags of one module level from the front of
// tokens. Parsing stops at the first positional token, which is left at
// the head of the returned slice. Positional parameters are not allowed in
// a window schema.
func ParseWindow(name string, schema Schema, tokens []string) (Values, []string, error) {
	fs, err := newFlagSet(name, schema, false)
	if err != nil {
		return Values{}, nil, err
	}
	if err := fs.Parse(tokens); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Values{}, nil, ErrHelp
		}
		return Values{}, nil, &ParseError{Kind: ErrInvalidFlag, Err: err}
	}

	vals, err := collect(fs, schema)
	if err != nil {
		return Values{}, nil, err
	}
	return vals, fs.Args(), nil
}

// ParseArgs parses a leaf's own arguments. Flags may appear anywhere;
// positional tokens are bound to the positional parameters in declaration
// order, a trailing strings parameter taking all that remain. Tokens left
// over after binding are an error.
func ParseArgs(name string, schema Schema, tokens []string) (Values, error) {
	fs, err := newFlagSet(name, schema, true)
	if err != nil {
		return Values{}, err
	}
	if err := fs.Parse(tokens); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Values{}, ErrHelp
		}
		return Values{}, &ParseError{Kind: ErrInvalidFlag, Err: err}
	}

	vals, err := collect(fs, schema)
	if err != nil {
		return Values{}, err
	}
	if err := bindPositionals(name, schema.Positionals(), fs.Args(), &vals); err != nil {
		return Values{}, err
	}
	return vals, nil
}

func newFlagSet(name string, schema Schema, interspersed bool) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SetInterspersed(interspersed)
	fs.SortFlags = false

	for _, p := range schema.Flags() {
		if err := define(fs, p); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func define(fs *pflag.FlagSet, p Spec) error {
	switch p.Type {
	case TypeBool:
		fs.BoolP(p.Name, p.Short, false, p.Help)
	case TypeString:
		fs.StringP(p.Name, p.Short, "", p.Help)
	case TypeInt:
		fs.IntP(p.Name, p.Short, 0, p.Help)
	case TypeFloat:
		fs.Float64P(p.Name, p.Short, 0, p.Help)
	case TypeDuration:
		fs.DurationP(p.Name, p.Short, 0, p.Help)
	case TypeStrings:
		var def []string
		if p.Default != "" {
			def = strings.Split(p.Default, ",")
		}
		fs.StringArrayP(p.Name, p.Short, def, p.Help)
		return nil
	default:
		return fmt.Errorf("parameter %q has unknown type %d", p.Name, p.Type)
	}

	if p.Default == "" {
		return nil
	}
	f := fs.Lookup(p.Name)
	if err := f.Value.Set(p.Default); err != nil {
		return fmt.Errorf("default %q for parameter %q: %w", p.Default, p.Name, err)
	}
	f.DefValue = f.Value.String()
	return nil
}

func collect(fs *pflag.FlagSet, schema Schema) (Values, error) {
	vals := newValues()
	for _, p := range schema.Flags() {
		changed := fs.Changed(p.Name)
		if p.Required && !changed {
			return Values{}, &ParseError{
				Kind:  ErrMissingFlag,
				Param: p.Name,
				Err:   fmt.Errorf("required flag --%s not set", p.Name),
			}
		}

		v, err := flagValue(fs, p)
		if err != nil {
			return Values{}, &ParseError{Kind: ErrInvalidFlag, Param: p.Name, Err: err}
		}
		vals.put(p.Name, v, changed)
	}
	return vals, nil
}

func flagValue(fs *pflag.FlagSet, p Spec) (any, error) {
	switch p.Type {
	case TypeBool:
		return fs.GetBool(p.Name)
	case TypeString:
		return fs.GetString(p.Name)
	case TypeInt:
		return fs.GetInt(p.Name)
	case TypeFloat:
		return fs.GetFloat64(p.Name)
	case TypeDuration:
		return fs.GetDuration(p.Name)
	case TypeStrings:
		return fs.GetStringArray(p.Name)
	default:
		return nil, fmt.Errorf("parameter %q has unknown type %d", p.Name, p.Type)
	}
}

// bindPositionals coerces positional tokens through a throwaway flag set so
// that positionals and flags share one set of conversion rules.
func bindPositionals(name string, specs []Spec, tokens []string, vals *Values) error {
	coerce, err := newFlagSet(name, positionalsAsFlags(specs), true)
	if err != nil {
		return err
	}

	i := 0
	for _, p := range specs {
		if p.Variadic() {
			rest := append([]string(nil), tokens[i:]...)
			if p.Required && len(rest) == 0 {
				return missingArgument(p)
			}
			if len(rest) == 0 && p.Default != "" {
				rest = strings.Split(p.Default, ",")
			}
			vals.put(p.Name, rest, len(tokens) > i)
			i = len(tokens)
			continue
		}

		if i >= len(tokens) {
			if p.Required {
				return missingArgument(p)
			}
			v, err := flagValue(coerce, p)
			if err != nil {
				return err
			}
			vals.put(p.Name, v, false)
			continue
		}

		if err := coerce.Lookup(p.Name).Value.Set(tokens[i]); err != nil {
			return &ParseError{
				Kind:  ErrInvalidArgument,
				Param: p.Name,
				Err:   fmt.Errorf("invalid value %q for argument <%s>: %w", tokens[i], p.Name, err),
			}
		}
		v, err := flagValue(coerce, p)
		if err != nil {
			return err
		}
		vals.put(p.Name, v, true)
		i++
	}

	if i < len(tokens) {
		return &ParseError{
			Kind: ErrUnexpectedArgument,
			Err:  fmt.Errorf("unexpected argument %q", tokens[i]),
		}
	}
	return nil
}

func positionalsAsFlags(specs []Spec) Schema {
	out := make(Schema, 0, len(specs))
	for _, p := range specs {
		p.Positional = false
		p.Required = false
		out = append(out, p)
	}
	return out
}

func missingArgument(p Spec) error {
	return &ParseError{
		Kind:  ErrMissingArgument,
		Param: p.Name,
		Err:   fmt.Errorf("missing required argument <%s>", p.Name),
	}
}
