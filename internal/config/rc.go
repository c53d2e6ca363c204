// Package config reads and edits the cmdtree rc file, a list of key=value
// settings layered over the defaults in domain.ConfigKeys.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/log"
	"github.com/footprint-tools/cmdtree/internal/paths"
)

const rcMode = 0600

// Lines returns the raw lines of the rc file. A missing or empty file is
// seeded with the commented default template first.
func Lines() ([]string, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := os.Chmod(path, rcMode); err != nil {
			log.Warn("config: chmod %s: %v", path, err)
		}
	}

	if len(data) == 0 {
		lines := template()
		if err := Save(lines); err != nil {
			log.Warn("config: write default settings: %v", err)
		}
		return lines, nil
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// Save replaces the rc file with lines. The content goes to a sibling
// temporary file that is renamed over the old one.
func Save(lines []string) error {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err := tmp.Chmod(rcMode); err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// Update runs edit over the rc file lines while holding the rc lock and
// saves the result.
func Update(edit func(lines []string) []string) error {
	return Locked(func() error {
		lines, err := Lines()
		if err != nil {
			return err
		}
		return Save(edit(lines))
	})
}

// template lists the visible keys with their defaults, grouped by
// section. Optional overrides are written commented out.
func template() []string {
	lines := []string{
		"# cmdtree configuration",
		"# Edit values below or use: cmdtree --set <key>=<value>",
	}

	section := ""
	for _, key := range domain.ConfigKeys {
		if key.Hidden {
			continue
		}
		if key.Section != section {
			section = key.Section
			lines = append(lines, "", "# "+section)
		}
		if key.HideIfEmpty {
			lines = append(lines, "# "+key.Name+"=")
			continue
		}
		lines = append(lines, key.Name+"="+quote(key.Default))
	}
	return lines
}
