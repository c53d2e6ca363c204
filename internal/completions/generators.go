package completions

import (
	"fmt"
	"regexp"
	"strings"
)

// Shell names a supported shell.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// Shells lists the supported shells.
var Shells = []Shell{ShellBash, ShellZsh, ShellFish}

// ParseShell returns the Shell named by s.
func ParseShell(s string) (Shell, error) {
	for _, sh := range Shells {
		if string(sh) == strings.ToLower(s) {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", s)
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

func program(commands []CommandInfo) string {
	if len(commands) == 0 || len(commands[0].Path) == 0 {
		return "cmdtree"
	}
	return commands[0].Path[0]
}

func funcName(prog string) string {
	return "_" + nonIdent.ReplaceAllString(prog, "_")
}

// key is the space separated command path below the program, the value
// the scripts compare the typed words against.
func key(cmd CommandInfo) string {
	return strings.Join(cmd.Path[1:], " ")
}

func words(cmd CommandInfo) []string {
	var out []string
	for _, s := range cmd.Subcommands {
		out = append(out, s.Name)
	}
	for _, f := range cmd.Flags {
		out = append(out, f.Names...)
	}
	return out
}

// GenerateBash returns a bash completion script.
func GenerateBash(commands []CommandInfo) string {
	prog := program(commands)
	fn := funcName(prog) + "_completions"

	var b strings.Builder
	fmt.Fprintf(&b, "# %s bash completion script\n\n", prog)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    local path=\"\"\n")
	b.WriteString("    local i\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	b.WriteString("            -*) ;;\n")
	b.WriteString("            *) path=\"${path:+$path }${COMP_WORDS[i]}\" ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")
	b.WriteString("    case \"$path\" in\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        %q)\n", key(cmd))
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words(cmd), " "))
		b.WriteString("            ;;\n")
	}
	b.WriteString("        *)\n")
	b.WriteString("            COMPREPLY=($(compgen -f -- \"$cur\"))\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "complete -F %s %s\n", fn, prog)
	return b.String()
}

func zshQuote(s string) string {
	s = strings.ReplaceAll(s, `'`, `'\''`)
	return strings.ReplaceAll(s, ":", `\:`)
}

// GenerateZsh returns a zsh completion script.
func GenerateZsh(commands []CommandInfo) string {
	prog := program(commands)
	fn := funcName(prog)

	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n\n", prog)
	fmt.Fprintf(&b, "%s_commands() {\n", fn)
	b.WriteString("    local -a cmds flags\n")
	b.WriteString("    case \"$1\" in\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        %q)\n", key(cmd))
		b.WriteString("            cmds=(\n")
		for _, s := range cmd.Subcommands {
			fmt.Fprintf(&b, "                '%s:%s'\n", zshQuote(s.Name), zshQuote(s.Summary))
		}
		b.WriteString("            )\n")
		var flags []string
		for _, f := range cmd.Flags {
			flags = append(flags, f.Names...)
		}
		fmt.Fprintf(&b, "            flags=(%s)\n", strings.Join(flags, " "))
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("    if [[ $PREFIX == -* ]]; then\n")
	b.WriteString("        compadd -- $flags\n")
	b.WriteString("    elif (( ${#cmds} )); then\n")
	b.WriteString("        _describe 'command' cmds\n")
	b.WriteString("    else\n")
	b.WriteString("        _files\n")
	b.WriteString("    fi\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local -a path_words\n")
	b.WriteString("    local i\n")
	b.WriteString("    for ((i=2; i<CURRENT; i++)); do\n")
	b.WriteString("        [[ ${words[i]} == -* ]] || path_words+=(${words[i]})\n")
	b.WriteString("    done\n")
	fmt.Fprintf(&b, "    %s_commands \"${(j: :)path_words}\"\n", fn)
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "compdef %s %s\n", fn, prog)
	return b.String()
}

func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`) + "'"
}

// GenerateFish returns a fish completion script.
func GenerateFish(commands []CommandInfo) string {
	prog := program(commands)
	helper := "__" + nonIdent.ReplaceAllString(prog, "_") + "_path"

	var b strings.Builder
	fmt.Fprintf(&b, "# %s fish completion script\n\n", prog)
	fmt.Fprintf(&b, "function %s\n", helper)
	b.WriteString("    set -l words (commandline -opc)\n")
	b.WriteString("    set -e words[1]\n")
	b.WriteString("    string join ' ' -- (string match -v -- '-*' $words)\n")
	b.WriteString("end\n\n")
	fmt.Fprintf(&b, "complete -c %s -f\n", prog)

	for _, cmd := range commands {
		cond := fmt.Sprintf(`test "(%s)" = %s`, helper, fishQuote(key(cmd)))
		if len(cmd.Path) == 1 {
			cond = "__fish_use_subcommand"
		}
		for _, s := range cmd.Subcommands {
			fmt.Fprintf(&b, "complete -c %s -n %s -a %s", prog, fishQuote(cond), fishQuote(s.Name))
			if s.Summary != "" {
				fmt.Fprintf(&b, " -d %s", fishQuote(s.Summary))
			}
			b.WriteString("\n")
		}
		for _, f := range cmd.Flags {
			fmt.Fprintf(&b, "complete -c %s -n %s", prog, fishQuote(cond))
			for _, name := range f.Names {
				if strings.HasPrefix(name, "--") {
					fmt.Fprintf(&b, " -l %s", strings.TrimPrefix(name, "--"))
				} else {
					fmt.Fprintf(&b, " -s %s", strings.TrimPrefix(name, "-"))
				}
			}
			if f.HasValue {
				b.WriteString(" -r")
			}
			if f.Description != "" {
				fmt.Fprintf(&b, " -d %s", fishQuote(f.Description))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
