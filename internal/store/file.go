package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
)

// FileStore persists key-value pairs in a single JSON file. It is the
// fallback backend for hosts without SQLite support.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// OpenFile creates a FileStore rooted at dataDir.
func OpenFile(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrPersistence, "failed to create data directory", err)
	}
	return &FileStore{path: filepath.Join(dataDir, "greensentinel_store.json")}, nil
}

// load reads the whole key-value map. A missing file is an empty map;
// a corrupt file is logged and treated as empty rather than fatal.
func (s *FileStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("store file unreadable, treating as empty",
				map[string]interface{}{"path": s.path, "error": err.Error()})
		}
		return map[string]string{}
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		logging.Warn("store file corrupt, treating as empty",
			map[string]interface{}{"path": s.path, "error": err.Error()})
		return map[string]string{}
	}
	return kv
}

// save writes the whole map through a temp file and rename, so readers
// see either the previous file or the new one, never a partial write.
func (s *FileStore) save(kv map[string]string) error {
	data, err := json.Marshal(kv)
	if err != nil {
		return errors.Wrap(errors.ErrSerialization, "failed to marshal store", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to write store file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to replace store file", err)
	}
	return nil
}

// Read returns the value stored under key.
func (s *FileStore) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv := s.load()
	value, ok := kv[key]
	return value, ok, nil
}

// Write stores value under key.
func (s *FileStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv := s.load()
	kv[key] = value
	return s.save(kv)
}

// Delete removes key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv := s.load()
	if _, ok := kv[key]; !ok {
		return nil
	}
	delete(kv, key)
	return s.save(kv)
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
