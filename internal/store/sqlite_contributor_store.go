package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"

	_ "modernc.org/sqlite"
)

const contributorSchema = `
CREATE TABLE IF NOT EXISTS contributors (
	id                TEXT PRIMARY KEY,
	email             TEXT NOT NULL DEFAULT '',
	name              TEXT NOT NULL DEFAULT '',
	color             TEXT NOT NULL DEFAULT '',
	registration_date TEXT NOT NULL DEFAULT '',
	data              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS contributors_email ON contributors(email);
`

// SQLiteContributorStore implements ContributorStore on a SQLite database.
// The full record is kept as JSON in the data column; the other columns
// mirror it for querying.
type SQLiteContributorStore struct {
	db     *sql.DB
	logger logging.Logger
}

var _ ContributorStore = (*SQLiteContributorStore)(nil)

// OpenSQLiteContributorStore opens (creating if needed) the database at
// path and ensures the schema exists.
func OpenSQLiteContributorStore(ctx context.Context, path string, logger logging.Logger) (*SQLiteContributorStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// One connection serializes writers; SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteContributorStore{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteContributorStore) init(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(initCtx, p); err != nil {
			// In-memory databases reject WAL; the store still works.
			s.logger.Warn("sqlite pragma skipped", "pragma", p, "error", err)
		}
	}

	if _, err := s.db.ExecContext(initCtx, contributorSchema); err != nil {
		return fmt.Errorf("failed to create contributors table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteContributorStore) Close() error {
	return s.db.Close()
}

// Save upserts a contributor.
func (s *SQLiteContributorStore) Save(ctx context.Context, c *model.Contributor) error {
	return s.upsert(ctx, s.db, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteContributorStore) upsert(ctx context.Context, db execer, c *model.Contributor) error {
	if c.ID == "" {
		return memerr.InvalidField("id", "contributor ID is required")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal contributor %s: %w", c.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO contributors (id, email, name, color, registration_date, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			color = excluded.color,
			registration_date = excluded.registration_date,
			data = excluded.data`,
		c.ID, c.Email, c.Name, c.Color, c.RegistrationDate, string(data))
	if err != nil {
		return fmt.Errorf("failed to save contributor %s: %w", c.ID, err)
	}
	return nil
}

// Get reads a contributor by ID.
func (s *SQLiteContributorStore) Get(ctx context.Context, id string) (*model.Contributor, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM contributors WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, memerr.ContributorNotFound(id)
		}
		return nil, fmt.Errorf("failed to read contributor %s: %w", id, err)
	}

	var c model.Contributor
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("invalid contributor record %s: %w", id, err)
	}
	return &c, nil
}

// List returns all contributors sorted by ID. Rows with invalid JSON are
// logged and skipped.
func (s *SQLiteContributorStore) List(ctx context.Context) ([]*model.Contributor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM contributors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	defer rows.Close()

	cs := []*model.Contributor{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		var c model.Contributor
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			s.logger.Warn("skipping malformed contributor row", "id", id, "error", err)
			continue
		}
		cs = append(cs, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	return cs, nil
}

// SaveAll upserts every record in one transaction.
func (s *SQLiteContributorStore) SaveAll(ctx context.Context, cs []*model.Contributor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, c := range cs {
		if err := s.upsert(ctx, tx, c); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contributors: %w", err)
	}
	return nil
}

// Delete removes a contributor.
func (s *SQLiteContributorStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contributors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contributor %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete contributor %s: %w", id, err)
	}
	if n == 0 {
		return memerr.ContributorNotFound(id)
	}
	return nil
}
