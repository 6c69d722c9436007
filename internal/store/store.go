package store

import (
	"context"
	"errors"

	"github.com/vovakirdan/wireboard/internal/core"
)

// Driver names accepted by configuration.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"

	// DefaultSQLitePath is used by the sqlite driver when no dedicated path is configured.
	DefaultSQLitePath = "storage/data.db"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Entry is the persisted value of a record, keyed by its timestamp.
type Entry struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Messages maps timestamp keys to entries.
type Messages map[string]Entry

// Contains reports whether m holds msg under its timestamp.
func (m Messages) Contains(msg core.Message) bool {
	e, ok := m[msg.Timestamp]
	return ok && e.Username == msg.Username && e.Message == msg.Message
}

// MessageStore handles message persistence.
type MessageStore interface {
	// Load returns every stored message. Missing or corrupt data loads as an
	// empty map.
	Load(ctx context.Context) (Messages, error)

	// Append inserts msg under its timestamp, replacing any entry with the same key.
	Append(ctx context.Context, msg core.Message) error
}

// Store aggregates the storage interfaces.
type Store interface {
	MessageStore

	// Close releases the underlying resources.
	Close() error
}
