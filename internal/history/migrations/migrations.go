// Package migrations applies the embedded schema of the history database.
//
// Each file under sql/ is one step named NN_description.sql. The number of
// the last applied step is kept in the database's user_version pragma, so
// no bookkeeping table is needed.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/log"
)

//go:embed sql/*.sql
var files embed.FS

// Step is one schema change.
type Step struct {
	Version int
	Name    string
	SQL     string
}

func (s Step) String() string {
	return fmt.Sprintf("%02d_%s", s.Version, s.Name)
}

// Load returns the embedded steps ordered by version.
func Load() ([]Step, error) {
	names, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(strings.TrimPrefix(name, "sql/"), ".sql")
		num, label, ok := strings.Cut(base, "_")
		version, err := strconv.Atoi(num)
		if !ok || err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: want NN_description.sql", name)
		}
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{Version: version, Name: label, SQL: string(body)})
	}

	slices.SortFunc(steps, func(a, b Step) int { return a.Version - b.Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("migrations %s and %s share a version", steps[i-1], steps[i])
		}
	}
	return steps, nil
}

// CurrentVersion returns the version of the last applied step, zero for a
// fresh database.
func CurrentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Pending returns the steps newer than the database.
func Pending(db *sql.DB) ([]Step, error) {
	steps, err := Load()
	if err != nil {
		return nil, err
	}
	current, err := CurrentVersion(db)
	if err != nil {
		return nil, err
	}
	i, _ := slices.BinarySearchFunc(steps, current+1, func(s Step, v int) int { return s.Version - v })
	return steps[i:], nil
}

// Run applies every pending step, each in its own transaction.
func Run(db *sql.DB) error {
	pending, err := Pending(db)
	if err != nil {
		return err
	}
	for _, step := range pending {
		if err := apply(db, step); err != nil {
			return fmt.Errorf("migration %s: %w", step, err)
		}
		log.Debug("history: applied migration %s", step)
	}
	return nil
}

func apply(db *sql.DB, step Step) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(step.SQL); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec("PRAGMA user_version = " + strconv.Itoa(step.Version)); err != nil {
		return err
	}
	return tx.Commit()
}
