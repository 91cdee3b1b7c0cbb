// ABOUTME: SQLite implementation of the LineStore interface using modernc.org/sqlite
// ABOUTME: Provides transcript persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/chatmerge/internal/chattext"
)

// SQLiteStore implements LineStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transcript_lines (
			line_id    TEXT PRIMARY KEY,
			pane       TEXT NOT NULL,
			seq        INTEGER NOT NULL,
			coded      TEXT NOT NULL,
			plain      TEXT NOT NULL,
			identity   TEXT NOT NULL,
			revision   INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_transcript_pane_seq
			ON transcript_lines(pane, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// SaveLine appends a line to its pane. Seq is assigned as one past the
// pane's current highest sequence number and written back to line.
func (s *SQLiteStore) SaveLine(ctx context.Context, line *Line) error {
	query := `
		INSERT INTO transcript_lines (
			line_id, pane, seq, coded, plain, identity, revision, created_at, updated_at
		) VALUES (
			?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transcript_lines WHERE pane = ?),
			?, ?, ?, ?, ?, ?
		)
		RETURNING seq
	`

	err := s.db.QueryRowContext(ctx, query,
		line.ID,
		line.Pane,
		line.Pane,
		line.Text.Coded(),
		line.Text.String(),
		line.Identity,
		line.Revision,
		line.CreatedAt.UTC().Format(time.RFC3339Nano),
		line.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Scan(&line.Seq)
	if err != nil {
		return fmt.Errorf("inserting line: %w", err)
	}

	s.logger.Debug("saved transcript line",
		"line_id", line.ID,
		"pane", line.Pane,
		"seq", line.Seq,
	)
	return nil
}

// UpdateLine rewrites a line's text and identity and bumps its revision.
// Returns ErrNotFound if the line was never saved.
func (s *SQLiteStore) UpdateLine(ctx context.Context, line *Line) error {
	query := `
		UPDATE transcript_lines
		SET coded = ?, plain = ?, identity = ?, revision = revision + 1, updated_at = ?
		WHERE line_id = ?
		RETURNING revision
	`

	err := s.db.QueryRowContext(ctx, query,
		line.Text.Coded(),
		line.Text.String(),
		line.Identity,
		line.UpdatedAt.UTC().Format(time.RFC3339Nano),
		line.ID,
	).Scan(&line.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating line: %w", err)
	}
	return nil
}

// GetLine retrieves a single line by ID
func (s *SQLiteStore) GetLine(ctx context.Context, id string) (*Line, error) {
	query := `
		SELECT line_id, pane, seq, coded, identity, revision, created_at, updated_at
		FROM transcript_lines
		WHERE line_id = ?
	`

	line, err := scanLine(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying line: %w", err)
	}
	return line, nil
}

// GetLines returns the most recent lines of a pane, oldest first.
// A limit of zero or less returns every line.
func (s *SQLiteStore) GetLines(ctx context.Context, pane string, limit int) ([]*Line, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT line_id, pane, seq, coded, identity, revision, created_at, updated_at
		FROM (
			SELECT * FROM transcript_lines
			WHERE pane = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, pane, limit)
	if err != nil {
		return nil, fmt.Errorf("querying lines: %w", err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lines: %w", err)
	}
	return lines, nil
}

// ListPanes returns the names of panes with journaled lines, sorted.
func (s *SQLiteStore) ListPanes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT pane FROM transcript_lines ORDER BY pane`)
	if err != nil {
		return nil, fmt.Errorf("querying panes: %w", err)
	}
	defer rows.Close()

	var panes []string
	for rows.Next() {
		var pane string
		if err := rows.Scan(&pane); err != nil {
			return nil, fmt.Errorf("scanning pane: %w", err)
		}
		panes = append(panes, pane)
	}
	return panes, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(row rowScanner) (*Line, error) {
	var (
		line                 Line
		coded                string
		createdAt, updatedAt string
	)
	if err := row.Scan(&line.ID, &line.Pane, &line.Seq, &coded, &line.Identity,
		&line.Revision, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	line.Text = chattext.ParseCoded(coded)

	var err error
	if line.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if line.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &line, nil
}
