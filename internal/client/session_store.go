package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// sessionKey names the single session record kept on disk.
const sessionKey = "user"

// Record is the locally persisted session: public identity and bearer token.
type Record struct {
	Server    string            `json:"server"`
	User      domain.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// FileStore keeps the session record as a JSON file in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultSessionDir checks STREETLIGHT_CONFIG_DIR, then the user config directory.
func DefaultSessionDir() (string, error) {
	if dir := os.Getenv("STREETLIGHT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "streetlight"), nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, sessionKey+".json")
}

// Load returns the stored record, or nil when no session is stored.
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file %s: %w", s.Path(), err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", s.Path(), err)
	}
	if record.Token == "" || record.User.ID == "" {
		return nil, nil
	}
	return &record, nil
}

// Save writes the record with owner-only permissions.
func (s *FileStore) Save(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.Path(), data, 0o600); err != nil {
		return fmt.Errorf("writing session file %s: %w", s.Path(), err)
	}
	return nil
}

// Clear removes the record. A missing record is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", s.Path(), err)
	}
	return nil
}
