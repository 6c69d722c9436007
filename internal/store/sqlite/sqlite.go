package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	ts       TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	message  TEXT NOT NULL
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup opens the database and runs setup instead of the default schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append upserts msg by timestamp.
func (s *SQLiteStore) Append(ctx context.Context, msg core.Message) error {
	query := `
		INSERT INTO messages (ts, username, message)
		VALUES (?, ?, ?)
		ON CONFLICT(ts) DO UPDATE SET username = excluded.username, message = excluded.message
	`
	if _, err := s.db.ExecContext(ctx, query, msg.Timestamp, msg.Username, msg.Message); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Load returns every stored message.
func (s *SQLiteStore) Load(ctx context.Context) (store.Messages, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, username, message FROM messages ORDER BY ts`)
	if err != nil {
		return store.Messages{}, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := store.Messages{}
	for rows.Next() {
		var (
			ts    string
			entry store.Entry
		)
		if err := rows.Scan(&ts, &entry.Username, &entry.Message); err != nil {
			return store.Messages{}, fmt.Errorf("scan message: %w", err)
		}
		messages[ts] = entry
	}
	if err := rows.Err(); err != nil {
		return store.Messages{}, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
