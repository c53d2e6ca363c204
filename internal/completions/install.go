package completions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/footprint-tools/cmdtree/internal/commands"
)

// PrintCompletions writes the completion script for the given shell to w.
// In task mode the flat task paths are offered next to the top level
// commands.
func PrintCompletions(w io.Writer, tree *commands.Tree, shell Shell) error {
	if tree == nil {
		return fmt.Errorf("command tree not built")
	}

	opts := Options{}
	if cfg, ok := tree.Tasks(); ok {
		opts = Options{Flat: true, Separator: cfg.Separator}
	}

	script := generateScript(shell, ExtractCommands(tree, opts))
	if script == "" {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	_, err := fmt.Fprint(w, script)
	return err
}

func generateScript(shell Shell, commands []CommandInfo) string {
	switch shell {
	case ShellBash:
		return GenerateBash(commands)
	case ShellZsh:
		return GenerateZsh(commands)
	case ShellFish:
		return GenerateFish(commands)
	default:
		return ""
	}
}

// BinaryPath returns the resolved path of the running executable.
func BinaryPath() string {
	exe, err := os.Executable()
	if err != nil {
		if len(os.Args) > 0 {
			return os.Args[0]
		}
		return "cmdtree"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}
