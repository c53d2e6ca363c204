package completions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceInstructions returns shell-specific instructions for loading the
// completions of the manifest at manifestPath.
func SourceInstructions(shell Shell, manifestPath string) string {
	cmd := fmt.Sprintf("%s --file %s --completions %s", BinaryPath(), manifestPath, shell)
	switch shell {
	case ShellBash, ShellZsh:
		return fmt.Sprintf(`eval "$(%s)"`, cmd)
	case ShellFish:
		return cmd + " | source"
	default:
		return ""
	}
}

// RcFile returns the rc file path for the given shell.
func RcFile(shell Shell) string {
	switch shell {
	case ShellBash:
		return "~/.bashrc"
	case ShellZsh:
		return "~/.zshrc"
	case ShellFish:
		return "~/.config/fish/config.fish"
	default:
		return ""
	}
}

// AutoInstallPath returns the path where completions for program are
// auto-loaded from, or "" if the shell has no such directory.
func AutoInstallPath(shell Shell, program string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch shell {
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "completions", program+".fish")
	case ShellBash:
		if IsBashCompletionInstalled() {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", program)
		}
		return ""
	default:
		return ""
	}
}

var bashCompletionScripts = []string{
	"/usr/share/bash-completion/bash_completion",
	"/etc/bash_completion",
	"/usr/local/etc/profile.d/bash_completion.sh",
	"/opt/homebrew/etc/profile.d/bash_completion.sh",
}

// IsBashCompletionInstalled reports whether the bash-completion package,
// which loads per-command scripts on demand, is present.
func IsBashCompletionInstalled() bool {
	for _, p := range bashCompletionScripts {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// Hint tells the user how to load the completions for program, whose
// commands come from the manifest at manifestPath.
func Hint(shell Shell, program, manifestPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# To load %s completions in every session, add this to %s:\n", program, RcFile(shell))
	fmt.Fprintf(&b, "#   %s\n", SourceInstructions(shell, manifestPath))
	if p := AutoInstallPath(shell, program); p != "" {
		fmt.Fprintf(&b, "# or save this output to %s\n", p)
	}
	return b.String()
}
