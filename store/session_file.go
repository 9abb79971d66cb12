package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"drivenmind/models"
)

// SessionFile is the durable local key-value store holding the current
// identity record and the anonymous visitor id. Writes are atomic
// (temp file + rename) so a reload immediately after a mutation observes
// the new value.
type SessionFile struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

// sessionData is keyed by the fixed storage identifiers. The visitor id
// is unrelated to the identity record; it is issued once per installation
// and consumed by the external help-widget collaborator.
type sessionData struct {
	User      *models.User `json:"drivenmind_user,omitempty"`
	VisitorID string       `json:"drivenmind_visitor_id,omitempty"`
}

// NewSessionFile returns a session store backed by the given file path
func NewSessionFile(path string, logger *log.Logger) *SessionFile {
	return &SessionFile{path: path, logger: logger}
}

// LoadIdentity reads the persisted identity record. A corrupt file is
// discarded and logged, never surfaced as an error: the caller sees the
// logged-out state.
func (f *SessionFile) LoadIdentity() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		f.logger.Printf("discarding unreadable session file: %v", err)
		f.discard()
		return nil
	}
	return data.User
}

// SaveIdentity persists the identity record, preserving the visitor id
func (f *SessionFile) SaveIdentity(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		data = &sessionData{}
	}
	data.User = user.Clone()
	return f.write(data)
}

// ClearIdentity removes the persisted identity record. Idempotent.
func (f *SessionFile) ClearIdentity() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		data = &sessionData{}
	}
	if data.User == nil && data.VisitorID == "" {
		return os.RemoveAll(f.path)
	}
	data.User = nil
	return f.write(data)
}

// VisitorID returns the anonymous visitor id, issuing and persisting a
// fresh one on first use.
func (f *SessionFile) VisitorID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		data = &sessionData{}
	}
	if data.VisitorID != "" {
		return data.VisitorID, nil
	}
	data.VisitorID = uuid.NewString()
	if err := f.write(data); err != nil {
		return "", err
	}
	return data.VisitorID, nil
}

func (f *SessionFile) read() (*sessionData, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return &sessionData{}, nil
	}
	if err != nil {
		return nil, err
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (f *SessionFile) write(data *sessionData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *SessionFile) discard() {
	if err := os.RemoveAll(f.path); err != nil {
		f.logger.Printf("failed to remove session file: %v", err)
	}
}
