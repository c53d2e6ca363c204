// Package history keeps a sqlite record of dispatched invocations.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/history/migrations"
	"github.com/footprint-tools/cmdtree/internal/log"
)

// Store wraps a SQLite database connection for invocation records.
// It implements the domain.HistoryStore interface.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the database at path and runs pending migrations.
func New(path string) (*Store, error) {
	log.Debug("history: opening database at %s", path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	setDBPermissions(path)

	if err = migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// NewWithDB creates a Store from an existing database connection.
// Useful for testing with pre-configured databases.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// setDBPermissions sets restrictive file permissions on the database and its WAL/SHM files.
func setDBPermissions(path string) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return
	}
	_ = os.Chmod(path, 0600)
	_ = os.Chmod(path+"-wal", 0600)
	_ = os.Chmod(path+"-shm", 0600)
}

// Insert adds a record. Records are keyed by invocation ID; inserting the
// same ID twice keeps the later record.
func (s *Store) Insert(rec domain.InvocationRecord) error {
	args, err := json.Marshal(nonNil(rec.Args))
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO invocations
		 (id, path, args, status, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   error = excluded.error,
		   duration_ms = excluded.duration_ms`,
		rec.ID,
		rec.Command(),
		string(args),
		int(rec.Status),
		rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.Duration.Milliseconds(),
	)
	return err
}

// Filter narrows a history query. The zero value matches every record.
type Filter struct {
	// Failed keeps only records with a non-zero status.
	Failed bool
	// Command keeps records whose command path is Command or lies below it.
	Command string
	// Limit caps the number of records; zero or less means no cap.
	Limit int
}

// Recent returns up to limit records, newest first. A limit of zero or
// less returns every record.
func (s *Store) Recent(limit int) ([]domain.InvocationRecord, error) {
	return s.Query(Filter{Limit: limit})
}

// Query returns the records matching f, newest first.
func (s *Store) Query(f Filter) ([]domain.InvocationRecord, error) {
	base := `
		SELECT id, path, args, status, error, started_at, duration_ms
		FROM invocations
	`

	var (
		clauses   []string
		queryArgs []any
	)

	if f.Failed {
		clauses = append(clauses, "status != 0")
	}
	if f.Command != "" {
		clauses = append(clauses, "(path = ? OR path LIKE ? ESCAPE '\\')")
		queryArgs = append(queryArgs, f.Command, escapeLike(f.Command)+" %")
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		queryArgs = append(queryArgs, f.Limit)
	}

	rows, err := s.db.Query(query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.InvocationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// Prune deletes all but the newest keep records and returns how many were
// removed.
func (s *Store) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.Exec(`
		DELETE FROM invocations
		WHERE id NOT IN (
			SELECT id FROM invocations
			ORDER BY started_at DESC, rowid DESC
			LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanRecord(rows *sql.Rows) (domain.InvocationRecord, error) {
	var (
		rec      domain.InvocationRecord
		path     string
		args     string
		status   int
		started  string
		duration int64
	)

	if err := rows.Scan(&rec.ID, &path, &args, &status, &rec.Error, &started, &duration); err != nil {
		return domain.InvocationRecord{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return domain.InvocationRecord{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
		return domain.InvocationRecord{}, fmt.Errorf("record %s: decode args: %w", rec.ID, err)
	}

	if path != "" {
		rec.Path = strings.Split(path, " ")
	}
	rec.Status = uint8(status)
	rec.StartedAt = t
	rec.Duration = time.Duration(duration) * time.Millisecond
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Verify Store implements domain.HistoryStore
var _ domain.HistoryStore = (*Store)(nil)
