// Package session tracks per-session context memory: the last-known git
// state and the last-message timestamp. Entries are created lazily on first
// observed message and destroyed only by an explicit session-deleted event.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/gitstate"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/paths"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/validation"
)

// Entry is the per-session context memory.
// It is owned exclusively by the message tracker; no other component reads
// or writes it.
type Entry struct {
	// SessionID is the unique session identifier
	SessionID string `json:"session_id"`

	// LastGit is the git state announced most recently for this session.
	// nil means no git state has been observed yet.
	LastGit *gitstate.State `json:"last_git,omitempty"`

	// LastMessageAt is when the previous message for this session arrived.
	// nil means this is the first observed message.
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Registry stores session entries keyed by session ID.
//
// Host contract: the embedding host must never run two message-hook
// invocations for the same session ID concurrently. Implementations
// serialize individual operations but do not make a Get-then-Put sequence
// atomic across processes.
type Registry interface {
	// Get returns the entry for sessionID, or (nil, nil) when no entry
	// exists. Absence is an expected case, not an error.
	Get(ctx context.Context, sessionID string) (*Entry, error)

	// Put creates or replaces the entry.
	Put(ctx context.Context, entry *Entry) error

	// Delete removes the entry for sessionID. Removing a missing entry is
	// a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryRegistry is an in-process Registry for embedding hosts and tests.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]*Entry)}
}

// Get returns the entry for sessionID, or (nil, nil) when absent.
func (m *MemoryRegistry) Get(_ context.Context, sessionID string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[sessionID]
	if !ok {
		return nil, nil //nolint:nilnil // nil,nil indicates entry not found (expected case)
	}
	// Copy so callers can't mutate registry state in place.
	cp := *entry
	return &cp, nil
}

// Put creates or replaces the entry.
func (m *MemoryRegistry) Put(_ context.Context, entry *Entry) error {
	if entry.SessionID == "" {
		return fmt.Errorf("entry has no session ID")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.SessionID] = &cp
	return nil
}

// Delete removes the entry for sessionID. Missing entries are a no-op.
func (m *MemoryRegistry) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// Store is a file-backed Registry keeping one JSON file per session under
// ~/.config/kimaki/sessions/. It lets the CLI hook surface, which runs one
// process per event, share tracker state across invocations.
type Store struct {
	// stateDir is the directory where session entry files are stored
	stateDir string
}

// NewStore creates a store rooted at the kimaki config directory.
func NewStore() (*Store, error) {
	dir, err := paths.SessionsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sessions directory: %w", err)
	}
	return &Store{stateDir: dir}, nil
}

// NewStoreWithDir creates a store with a custom directory.
// This is useful for testing.
func NewStoreWithDir(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

// Get loads the entry for the given session ID.
// Returns (nil, nil) when the entry file doesn't exist.
func (s *Store) Get(ctx context.Context, sessionID string) (*Entry, error) {
	_ = ctx // Reserved for future use

	// Validate session ID to prevent path traversal
	if err := validation.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	entryFile := s.entryFilePath(sessionID)

	data, err := os.ReadFile(entryFile) //nolint:gosec // entryFile is derived from validated sessionID
	if os.IsNotExist(err) {
		return nil, nil //nolint:nilnil // nil,nil indicates entry not found (expected case)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session entry: %w", err)
	}
	return &entry, nil
}

// Put saves the entry atomically.
func (s *Store) Put(ctx context.Context, entry *Entry) error {
	_ = ctx // Reserved for future use

	if err := validation.ValidateSessionID(entry.SessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	if err := os.MkdirAll(s.stateDir, 0o750); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}
	data = append(data, '\n')

	entryFile := s.entryFilePath(entry.SessionID)

	// Atomic write: write to temp file, then rename
	tmpFile := entryFile + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session entry: %w", err)
	}
	if err := os.Rename(tmpFile, entryFile); err != nil {
		return fmt.Errorf("failed to rename session entry file: %w", err)
	}
	return nil
}

// Delete removes the entry file for the given session ID.
// Removing a missing entry is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_ = ctx // Reserved for future use

	if err := validation.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	if err := os.Remove(s.entryFilePath(sessionID)); err != nil {
		if os.IsNotExist(err) {
			return nil // Already gone, not an error
		}
		return fmt.Errorf("failed to remove session entry file: %w", err)
	}
	return nil
}

// List returns all stored entries.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	entries, err := os.ReadDir(s.stateDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var result []*Entry
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}

		sessionID := strings.TrimSuffix(dirEntry.Name(), ".json")
		entry, err := s.Get(ctx, sessionID)
		if err != nil {
			continue // Skip corrupted entry files
		}
		if entry == nil {
			continue
		}

		result = append(result, entry)
	}
	return result, nil
}

// entryFilePath returns the path to a session entry file.
func (s *Store) entryFilePath(sessionID string) string {
	return filepath.Join(s.stateDir, sessionID+".json")
}
