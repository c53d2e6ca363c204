// Package paths locates the files cmdtree keeps outside the project: the
// rc file, the log and the history database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "cmdtree"

// ConfigFileEnv overrides the location of the rc file.
const ConfigFileEnv = "CMDTREE_CONFIG"

// AppDataDir is the per-user config directory for cmdtree, created with
// mode 0700 on first use. It falls back to "." when no config directory
// can be determined.
func AppDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(base, appDirName)
	_ = os.MkdirAll(dir, 0700)
	return dir
}

// AppLocalDataDir is the per-user data directory for cmdtree:
// Application Support on macOS, %LOCALAPPDATA% on Windows and
// $XDG_DATA_HOME (default ~/.local/share) elsewhere.
func AppLocalDataDir() string {
	base := localDataBase()
	if base == "" {
		return "."
	}
	return filepath.Join(base, appDirName)
}

func localDataBase() string {
	var env string
	var fallback []string
	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "LOCALAPPDATA", []string{"AppData", "Local"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// ConfigFilePath is $CMDTREE_CONFIG when set and ~/.cmdtreerc otherwise.
func ConfigFilePath() (string, error) {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cmdtreerc"), nil
}

// LogFilePath is the rotated diagnostics log.
func LogFilePath() string {
	return filepath.Join(AppDataDir(), "cmdtree.log")
}

// HistoryDBPath is the sqlite database of recorded invocations.
func HistoryDBPath() string {
	return filepath.Join(AppLocalDataDir(), "history.db")
}
