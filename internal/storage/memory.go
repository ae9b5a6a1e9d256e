package storage

import "sync"

// Memory is an in-memory Store, used in tests and as a scratch store.
type Memory[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// NewMemory returns a Memory store holding a copy of seed.
func NewMemory[V any](seed map[string]V) *Memory[V] {
	data := make(map[string]V, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &Memory[V]{data: data}
}

func (m *Memory[V]) Get(key string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory[V]) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.data), nil
}

func (m *Memory[V]) Set(key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory[V]) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
