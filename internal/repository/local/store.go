package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// table is a mutex-guarded map persisted as one JSON file per table. Every
// write flushes, so a crash loses at most the in-flight mutation.
type table[T any] struct {
	mu   sync.RWMutex
	path string
	rows map[string]T
}

func newTable[T any](dir, name string) (*table[T], error) {
	t := &table[T]{
		path: filepath.Join(dir, name+".json"),
		rows: make(map[string]T),
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", t.path, err)
	}
	if len(data) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, &t.rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.path, err)
	}
	return t, nil
}

func (t *table[T]) get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[key]
	return row, ok
}

func (t *table[T]) put(key string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[key] = row
	return t.flushLocked()
}

func (t *table[T]) delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, key)
	return t.flushLocked()
}

func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]T, 0, len(t.rows))
	keys := make([]string, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, t.rows[k])
	}
	return rows
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// flushLocked writes the whole table atomically via a temp file rename.
func (t *table[T]) flushLocked() error {
	data, err := json.MarshalIndent(t.rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", t.path, err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", t.path, err)
	}
	return nil
}
