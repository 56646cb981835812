// Package history persists evaluated expressions in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/consts"
)

// Sources recorded alongside an entry
const (
	SourceCLI   = "cli"
	SourceTUI   = "tui"
	SourceAPI   = "api"
	SourceWS    = "ws"
	SourceBatch = "batch"
)

// Entry is a single evaluation
type Entry struct {
	ID           int64     `json:"id"`
	Expression   string    `json:"expression"`
	Result       string    `json:"result,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// Failed reports whether the evaluation ended in an error
func (e Entry) Failed() bool {
	return e.ErrorKind != "" || e.ErrorMessage != ""
}

// NewEntry builds an entry from an evaluation outcome
func NewEntry(source, expression, result string, err error) Entry {
	entry := Entry{
		Expression: expression,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		if kind := calc.KindOf(err); kind != 0 {
			entry.ErrorKind = kind.String()
		}
		entry.ErrorMessage = calc.Message(err)
		return entry
	}
	entry.Result = result
	return entry
}

// HashExpression returns the lookup key for an expression
func HashExpression(expression string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.TrimSpace(expression)))
}

// Store handles SQLite operations for the history
type Store struct {
	db     *sql.DB
	dbPath string
	limit  atomic.Int64
}

// Open creates the database file (and its directory) if needed
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers instead of surfacing SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	store.limit.Store(consts.DefaultHistoryLimit)

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.dbPath
}

// SetLimit sets how many entries Record keeps. Zero disables pruning.
func (s *Store) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	s.limit.Store(int64(limit))
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expression TEXT NOT NULL,
		expr_hash TEXT NOT NULL,
		result TEXT,
		error_kind TEXT,
		error_message TEXT,
		source TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_expr_hash ON history(expr_hash);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Record stores an entry, prunes old rows and returns the new ID
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history (expression, expr_hash, result, error_kind, error_message, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Expression,
		HashExpression(entry.Expression),
		nullString(entry.Result),
		nullString(entry.ErrorKind),
		nullString(entry.ErrorMessage),
		entry.Source,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history entry id: %w", err)
	}

	if limit := s.limit.Load(); limit > 0 {
		if _, err := s.Prune(ctx, int(limit)); err != nil {
			return id, err
		}
	}

	return id, nil
}

// Recent returns the newest entries first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = consts.DefaultHistoryPageSize
	}
	if limit > consts.MaxHistoryPageSize {
		limit = consts.MaxHistoryPageSize
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression, result, error_kind, error_message, source, created_at
		FROM history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindByExpression returns previous evaluations of the same (trimmed) expression
func (s *Store) FindByExpression(ctx context.Context, expression string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression, result, error_kind, error_message, source, created_at
		FROM history
		WHERE expr_hash = ?
		ORDER BY id DESC`, HashExpression(expression))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	candidates, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	// Hash collisions are possible, compare the text as well
	want := strings.TrimSpace(expression)
	entries := make([]Entry, 0, len(candidates))
	for _, entry := range candidates {
		if strings.TrimSpace(entry.Expression) == want {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Count returns the number of stored entries
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// Clear removes every entry and returns how many were deleted
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// Prune keeps the newest keep entries and deletes the rest
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.New("history: negative prune size")
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM history
		WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var result, errorKind, errorMessage sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Expression, &result, &errorKind, &errorMessage, &entry.Source, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Result = result.String
		entry.ErrorKind = errorKind.String
		entry.ErrorMessage = errorMessage.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
