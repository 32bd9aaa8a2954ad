// Package threads persists the mapping from coding-agent sessions to the
// Discord threads that host them. The upload coordinator consults it to find
// where a file-upload prompt should surface.
package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/paths"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/validation"
)

// Store is a file-backed session-to-thread map.
// All operations read and rewrite the whole file; the map stays small (one
// entry per live session).
type Store struct {
	// filePath is the JSON file holding the mapping
	filePath string

	// mu serializes load-modify-save cycles within this process
	mu sync.Mutex
}

// NewStore creates a store rooted at the kimaki config directory.
func NewStore() (*Store, error) {
	filePath, err := paths.ThreadsFile()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve threads file: %w", err)
	}
	return &Store{filePath: filePath}, nil
}

// NewStoreWithFile creates a store backed by a specific file.
// This is useful for testing.
func NewStoreWithFile(filePath string) *Store {
	return &Store{filePath: filePath}
}

// ThreadForSession returns the thread ID linked to sessionID, or ("", nil)
// when no thread is linked. Absence is an expected case, not an error.
func (s *Store) ThreadForSession(ctx context.Context, sessionID string) (string, error) {
	_ = ctx // Reserved for future use

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return "", err
	}
	return mapping[sessionID], nil
}

// Link records that sessionID is hosted in threadID, replacing any previous
// link for the session.
func (s *Store) Link(ctx context.Context, sessionID, threadID string) error {
	_ = ctx // Reserved for future use

	if err := validation.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}
	if err := validation.ValidateThreadID(threadID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return err
	}
	mapping[sessionID] = threadID
	return s.save(mapping)
}

// Unlink removes the session's thread link. Missing links are a no-op.
func (s *Store) Unlink(ctx context.Context, sessionID string) error {
	_ = ctx // Reserved for future use

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := mapping[sessionID]; !ok {
		return nil
	}
	delete(mapping, sessionID)
	return s.save(mapping)
}

// Link is one session-to-thread association.
type Link struct {
	SessionID string
	ThreadID  string
}

// List returns all links sorted by session ID.
func (s *Store) List(ctx context.Context) ([]Link, error) {
	_ = ctx // Reserved for future use

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return nil, err
	}

	links := make([]Link, 0, len(mapping))
	for sessionID, threadID := range mapping {
		links = append(links, Link{SessionID: sessionID, ThreadID: threadID})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].SessionID < links[j].SessionID })
	return links, nil
}

// load reads the mapping file. A missing file is an empty mapping.
func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.filePath) //nolint:gosec // filePath is from paths package or tests
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading threads file: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing threads file: %w", err)
	}
	if mapping == nil {
		mapping = make(map[string]string)
	}
	return mapping, nil
}

// save writes the mapping atomically (temp file, then rename).
func (s *Store) save(mapping map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling threads mapping: %w", err)
	}
	data = append(data, '\n')

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("writing threads file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		return fmt.Errorf("renaming threads file: %w", err)
	}
	return nil
}
