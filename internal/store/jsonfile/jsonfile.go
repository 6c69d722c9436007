package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/store"
)

// FileStore keeps all messages in a single pretty-printed JSON object.
// Mutations are serialized, so concurrent appends never lose updates.
type FileStore struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// New creates a store backed by path, creating its directory if needed.
// The file itself is created on the first append.
func New(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the backing file. Missing or unparsable content yields an empty map.
func (s *FileStore) Load(_ context.Context) (store.Messages, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.Messages{}, store.ErrClosed
	}
	return s.loadUnlocked()
}

// Append rewrites the whole file with msg added.
func (s *FileStore) Append(ctx context.Context, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	messages, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	messages[msg.Timestamp] = store.Entry{Username: msg.Username, Message: msg.Message}
	return s.saveUnlocked(messages)
}

// Close marks the store closed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) loadUnlocked() (store.Messages, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.Messages{}, nil
		}
		return store.Messages{}, fmt.Errorf("read store: %w", err)
	}

	return decode(data), nil
}

// decode parses the file content entry by entry. Content that is not a JSON
// object yields an empty map; entries with the wrong shape are dropped and
// the rest are kept.
func decode(data []byte) store.Messages {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return store.Messages{}
	}

	messages := make(store.Messages, len(raw))
	for ts, value := range raw {
		var entry store.Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			continue
		}
		messages[ts] = entry
	}
	return messages
}

// saveUnlocked writes to a temp file next to the target and renames it into
// place, so readers see either the old or the new content.
func (s *FileStore) saveUnlocked(messages store.Messages) error {
	data, err := encode(messages)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// encode renders messages with 4-space indentation and without escaping
// HTML or non-ASCII characters.
func encode(messages store.Messages) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(messages); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
