package draft

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/patungan/internal/metrics"
)

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create draft dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a key to a file name. Keys contain user-typed titles, so the file
// name is a digest of the key rather than the key itself.
func (s *FileStore) path(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return filepath.Join(s.dir, Prefix+hex.EncodeToString(sum[:16])+".json")
}

func (s *FileStore) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		fail("set", key, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		fail("set", key, err)
		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		fail("set", key, err)
	}
}

func (s *FileStore) Get(key string, dst any) bool {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()

	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	if err != nil {
		fail("get", key, err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		fail("decode", key, err)
		return false
	}
	return true
}

func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		fail("remove", key, err)
	}
}

func fail(op, key string, err error) {
	metrics.DraftErrorsTotal.WithLabelValues(op).Inc()
	slog.Warn("Draft store failure", "op", op, "key", key, "error", err)
}
