package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

const sessionFilename = "session.json"

// persisted is the on-disk session layout. Versioned so future fields can
// be added without breaking older clients.
type persisted struct {
	Version int         `json:"version"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// FileStore persists the session under a state directory with
// owner-only permissions.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path() string {
	return filepath.Join(f.dir, sessionFilename)
}

// Load reads the persisted session. Returns (nil, nil) when none exists
// or the file is unreadable as JSON; a corrupt session file is treated
// the same as being logged out.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		_ = os.Remove(f.path())
		return nil, nil
	}
	if p.Token == "" || p.User.ID == 0 {
		return nil, nil
	}
	return &Session{User: p.User, Token: p.Token}, nil
}

// Save writes the session atomically (temp file + rename).
func (f *FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(persisted{Version: 1, Token: s.Token, User: s.User}, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
