// Package localstore is the on-device key-value persistence used for the auth token
// and small cached lists (recent searches, read notifications, favourites).
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devilmonastery/biniq/internal/pkg/metrics"
)

// ErrNotFound is returned by GetItem when the key has no value
var ErrNotFound = errors.New("key not found")

// Well-known keys
const (
	KeyAuthToken            = "authToken"
	KeyRecentSearches       = "recentSearches"
	KeyReadNotifications    = "readNotifications"
	KeyDeletedNotifications = "deletedNotifications"
	KeyFavoriteStores       = "favoriteStores"
)

// Store is a string key-value store. Each operation is atomic on its own.
type Store interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Updater is implemented by stores that can read-modify-write a single key atomically.
// fn receives the current value (ok is false when absent) and returns the new one.
type Updater interface {
	UpdateItem(key string, fn func(value string, ok bool) (string, error)) error
}

// MemoryStore keeps items in memory
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) GetItem(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) UpdateItem(key string, fn func(value string, ok bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	nv, err := fn(v, ok)
	if err != nil {
		return err
	}
	m.items[key] = nv
	return nil
}

func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FileStore persists items as one JSON object in a file readable only by the owner.
// The file is re-read on every operation so separate processes see each other's writes,
// and every write goes through a temp file and a rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: slog.Default().With("component", "localstore"),
	}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) GetItem(key string) (string, error) {
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		metrics.RecordStoreOperation("get", time.Since(start), err)
		return "", err
	}
	v, ok := items[key]
	metrics.RecordStoreOperation("get", time.Since(start), nil)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStore) SetItem(key, value string) error {
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.update(func(items map[string]string) { items[key] = value })
	metrics.RecordStoreOperation("set", time.Since(start), err)
	return err
}

func (f *FileStore) RemoveItem(key string) error {
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.update(func(items map[string]string) { delete(items, key) })
	metrics.RecordStoreOperation("remove", time.Since(start), err)
	return err
}

func (f *FileStore) UpdateItem(key string, fn func(value string, ok bool) (string, error)) error {
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err == nil {
		v, ok := items[key]
		if v, err = fn(v, ok); err == nil {
			items[key] = v
			err = f.save(items)
		}
	}
	metrics.RecordStoreOperation("update", time.Since(start), err)
	return err
}

// update loads, applies fn and saves; the caller holds f.mu
func (f *FileStore) update(fn func(items map[string]string)) error {
	items, err := f.load()
	if err != nil {
		return err
	}
	fn(items)
	return f.save(items)
}

func (f *FileStore) load() (map[string]string, error) {
	items := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return items, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", f.path, err)
	}
	return items, nil
}

func (f *FileStore) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	// Each save gets its own temp file so concurrent writers never share one
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store: %w", err)
	}
	f.logger.Debug("store saved", slog.String("path", f.path), slog.Int("items", len(items)))
	return nil
}
