package params

import (
	"fmt"
	"strings"
)

// Type is the type tag of a declared parameter.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeDuration
	TypeStrings
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDuration:
		return "duration"
	case TypeStrings:
		return "strings"
	default:
		return "unknown"
	}
}

// ParseType converts a type name as written in manifests into a Type.
// An empty name means string.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "str":
		return TypeString, nil
	case "bool", "boolean", "flag":
		return TypeBool, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "number":
		return TypeFloat, nil
	case "duration":
		return TypeDuration, nil
	case "strings", "list", "[]string":
		return TypeStrings, nil
	default:
		return 0, fmt.Errorf("unknown parameter type %q", s)
	}
}

// ReservedName is the parameter name taken by the ancestor-access mechanism.
// Scopes reach their ancestors through Scope.Parent, so no node may declare
// a parameter with this name.
const ReservedName = "parent"

// Spec declares a single parameter owned by one tree level.
type Spec struct {
	Name       string
	Short      string
	Type       Type
	Positional bool
	Required   bool
	Default    string
	ValueHint  string
	Help       string
}

// Variadic reports whether a positional parameter collects every
// remaining token.
func (s Spec) Variadic() bool {
	return s.Positional && s.Type == TypeStrings
}

// Schema is the ordered list of parameters a node declares.
type Schema []Spec

// Flags returns the flag-style parameters in declaration order.
func (s Schema) Flags() []Spec {
	var out []Spec
	for _, p := range s {
		if !p.Positional {
			out = append(out, p)
		}
	}
	return out
}

// Positionals returns the positional parameters in declaration order.
func (s Schema) Positionals() []Spec {
	var out []Spec
	for _, p := range s {
		if p.Positional {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds a declared parameter by name.
func (s Schema) Lookup(name string) (Spec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Spec{}, false
}

// Validate checks the schema for duplicate or reserved names, misplaced
// variadic positionals and defaults the parser cannot read.
func (s Schema) Validate() error {
	names := make(map[string]bool)
	shorts := make(map[string]bool)
	positionals := s.Positionals()

	for _, p := range s {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if strings.HasPrefix(p.Name, "-") || strings.ContainsAny(p.Name, " \t=") {
			return fmt.Errorf("invalid parameter name %q", p.Name)
		}
		if p.Name == ReservedName {
			return fmt.Errorf("parameter name %q is reserved for ancestor access", p.Name)
		}
		if p.Name == "help" {
			return fmt.Errorf("parameter name %q is reserved for help", p.Name)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		names[p.Name] = true

		if p.Short != "" {
			if p.Positional {
				return fmt.Errorf("positional parameter %q cannot have a short name", p.Name)
			}
			if len(p.Short) != 1 {
				return fmt.Errorf("short name %q of parameter %q must be one character", p.Short, p.Name)
			}
			if p.Short == "h" {
				return fmt.Errorf("short name %q of parameter %q is reserved for help", p.Short, p.Name)
			}
			if shorts[p.Short] {
				return fmt.Errorf("duplicate short name %q", p.Short)
			}
			shorts[p.Short] = true
		}
	}

	for i, p := range positionals {
		if p.Variadic() && i != len(positionals)-1 {
			return fmt.Errorf("variadic parameter %q must be the last positional", p.Name)
		}
		if p.Type == TypeBool {
			return fmt.Errorf("positional parameter %q cannot be a bool", p.Name)
		}
	}

	for i := 1; i < len(positionals); i++ {
		if positionals[i].Required && !positionals[i-1].Required {
			return fmt.Errorf("required parameter %q follows optional parameter %q",
				positionals[i].Name, positionals[i-1].Name)
		}
	}

	// Defaults are read by the same parser that reads arguments.
	if _, err := newFlagSet("validate", s, true); err != nil {
		return err
	}
	if _, err := newFlagSet("validate", positionalsAsFlags(positionals), true); err != nil {
		return err
	}
	return nil
}
