package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Koora7334/minecraft-launcher-core/internal/config"
	"github.com/Koora7334/minecraft-launcher-core/internal/fsutil"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
)

// Repository defines persistence operations for the login session.
type Repository interface {
	Load(ctx context.Context) (*yggdrasil.Session, error)
	Save(ctx context.Context, session *yggdrasil.Session) error
	Clear(ctx context.Context) error
}

// ErrNotFound is returned when no session has been saved yet.
var ErrNotFound = errors.New("session not found")

var errNothingToSave = errors.New("session is nil")

// FileRepository persists the session to a JSON file on disk. Access
// tokens are credentials, the file is written with owner-only
// permissions.
type FileRepository struct {
	// path is the filesystem location of the session file.
	path string
	// mu protects concurrent access to the session file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads and writes JSON at
// the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the session from disk.
func (r *FileRepository) Load(_ context.Context) (*yggdrasil.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session yggdrasil.Session
	if err = json.Unmarshal(contents, &session); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return &session, nil
}

// Save writes the session to disk.
func (r *FileRepository) Save(_ context.Context, session *yggdrasil.Session) error {
	if session == nil {
		return errNothingToSave
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err = fsutil.EnsureDir(filepath.Dir(r.path)); err != nil {
		return err
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (r *FileRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}

	return nil
}
