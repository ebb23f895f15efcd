package storefront

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CartKey is the storage key the mirror persists under.
const CartKey = "cartItems"

// Storage is a small key/value store for the mirror. Load returns nil data and
// no error for a key that was never saved.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStorage keeps one JSON file per key under Dir.
type FileStorage struct {
	Dir string
}

func (s FileStorage) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Save writes through a temp file so a crash never leaves a torn document.
func (s FileStorage) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

// MemoryStorage is a Storage for tests and short-lived processes.
type MemoryStorage map[string][]byte

func (m MemoryStorage) Load(key string) ([]byte, error) { return m[key], nil }

func (m MemoryStorage) Save(key string, data []byte) error {
	m[key] = append([]byte(nil), data...)
	return nil
}
