package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/simcheck/pkg/errors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS comparisons (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	expected_path TEXT NOT NULL,
	actual_path TEXT,
	outcome TEXT NOT NULL,
	distance REAL NOT NULL,
	max_distance REAL NOT NULL,
	sample_size INTEGER NOT NULL,
	grid_size INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expected_path ON comparisons(expected_path);
CREATE INDEX IF NOT EXISTS idx_created_at ON comparisons(created_at);`

// timeLayout is fixed width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps records in a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	prepare(rec)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons
			(id, created_at, expected_path, actual_path, outcome, distance, max_distance, sample_size, grid_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.ExpectedPath, rec.ActualPath,
		rec.Outcome, rec.Distance, rec.MaxDistance, rec.SampleSize, rec.GridSize)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, created_at, expected_path, actual_path, outcome, distance, max_distance, sample_size, grid_size FROM comparisons`

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeNotFound, "record %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List implements [Store].
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if opts.ExpectedPath != "" {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` WHERE expected_path = ? ORDER BY created_at DESC LIMIT ?`,
			opts.ExpectedPath, opts.limit())
	} else {
		rows, err = s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT ?`, opts.limit())
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec     Record
		created string
		actual  sql.NullString
	)
	if err := row.Scan(&rec.ID, &created, &rec.ExpectedPath, &actual, &rec.Outcome,
		&rec.Distance, &rec.MaxDistance, &rec.SampleSize, &rec.GridSize); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("record %s: bad created_at %q: %w", rec.ID, created, err)
	}
	rec.CreatedAt = t
	rec.ActualPath = actual.String
	return &rec, nil
}

var _ Store = (*SQLiteStore)(nil)
