// Package storage holds the entry and waiver stores.
//
// Both stores are flat key/value maps: entry keys use zero-based months
// ("2020-6-1"), waiver keys are ISO dates ("2020-07-01"); see package daykey.
// The balance calculator only needs Reader; the CLI and the HTTP API write
// through Store.
package storage

import (
	"errors"
	"sort"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
)

// File names of the JSON stores inside the data directory.
const (
	EntriesFile = "flexible-store.json"
	WaiversFile = "waived-workdays.json"
)

// ErrCorrupt is returned when a persisted store cannot be decoded.
var ErrCorrupt = errors.New("corrupt store")

// Reader is read access to a key/value store.
type Reader[V any] interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (V, bool, error)
	// Keys returns all keys in lexical order.
	Keys() ([]string, error)
}

// Store is read/write access to a key/value store.
type Store[V any] interface {
	Reader[V]
	Set(key string, value V) error
	Delete(key string) error
}

// EntryStore maps entry keys to day entries.
type EntryStore = Store[model.DayEntry]

// WaiverStore maps waiver keys to waived days.
type WaiverStore = Store[model.WaivedDay]

// All reads every key/value pair of r.
func All[V any](r Reader[V]) (map[string]V, error) {
	keys, err := r.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		v, ok, err := r.Get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
