package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
)

// File is a Store persisted as a single JSON object. The whole file is read
// on open and rewritten atomically on every change.
type File[V any] struct {
	path string

	mu   sync.RWMutex
	data map[string]V
}

// OpenFile loads the store at path. A missing file yields an empty store.
// A file that cannot be decoded is renamed to <path>.corrupt and ErrCorrupt
// is returned.
func OpenFile[V any](path string) (*File[V], error) {
	data, err := loadFile[V](path)
	if err != nil {
		return nil, err
	}
	return &File[V]{path: path, data: data}, nil
}

// OpenEntries opens the entry store inside base.
func OpenEntries(base string) (*File[model.DayEntry], error) {
	return OpenFile[model.DayEntry](filepath.Join(base, EntriesFile))
}

// OpenWaivers opens the waiver store inside base.
func OpenWaivers(base string) (*File[model.WaivedDay], error) {
	return OpenFile[model.WaivedDay](filepath.Join(base, WaiversFile))
}

// Path returns the backing file.
func (f *File[V]) Path() string {
	return f.path
}

func (f *File[V]) Get(key string) (V, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File[V]) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.data), nil
}

func (f *File[V]) Set(key string, value V) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = value
	if err := saveFile(f.path, f.data); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File[V]) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := saveFile(f.path, f.data); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func loadFile[V any](path string) (map[string]V, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]V{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	data := map[string]V{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("%w: %s (backed up to %s): %v", ErrCorrupt, path, backupPath, err)
	}
	if data == nil {
		// A literal null decodes to a nil map.
		data = map[string]V{}
	}
	return data, nil
}

// saveFile atomically writes data to path.
func saveFile[V any](path string, data map[string]V) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
