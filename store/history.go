package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
)

// HistoryKey is the settings key holding the JSON-encoded history list.
const HistoryKey = "folder-history-v2"

// DefaultMaxHistory is used when a non-positive maximum is configured.
const DefaultMaxHistory = 10

// DirChecker reports whether a path still resolves to a directory.
type DirChecker interface {
	IsDir(path string) (bool, error)
}

// PersistenceError reports a failed read or write of the history list.
// The in-memory list remains authoritative when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s history: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// History is the ordered, size-bounded list of previously opened folders,
// most recent first. Every mutation updates memory first and then persists.
type History struct {
	kv   KV
	dirs DirChecker
	max  int

	mu    sync.Mutex
	paths []string
}

// NewHistory creates a history manager persisting to kv.
func NewHistory(kv KV, dirs DirChecker, max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{kv: kv, dirs: dirs, max: max}
}

// Max returns the configured maximum length.
func (h *History) Max() int {
	return h.max
}

// Load reads the persisted list, drops paths that no longer resolve to
// directories and re-persists the cleaned list when anything was dropped.
func (h *History) Load() ([]string, error) {
	raw, ok, err := h.kv.Get(HistoryKey)
	if err != nil {
		return h.Paths(), &PersistenceError{Op: "load", Err: err}
	}

	var stored []string
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			h.mu.Lock()
			h.paths = nil
			h.mu.Unlock()
			return nil, &PersistenceError{Op: "decode", Err: err}
		}
	}

	cleaned := make([]string, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, p := range stored {
		if p == "" || seen[p] {
			continue
		}
		if isDir, err := h.dirs.IsDir(p); err != nil || !isDir {
			continue
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}
	if len(cleaned) > h.max {
		cleaned = cleaned[:h.max]
	}

	h.mu.Lock()
	h.paths = cleaned
	h.mu.Unlock()

	if len(cleaned) != len(stored) {
		return h.Paths(), h.persist(cleaned)
	}
	return h.Paths(), nil
}

// Paths returns a copy of the current list.
func (h *History) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// Record moves path to the front, trims the list and persists it.
func (h *History) Record(path string) error {
	path = filepath.Clean(path)

	h.mu.Lock()
	next := make([]string, 0, len(h.paths)+1)
	next = append(next, path)
	for _, p := range h.paths {
		if p != path {
			next = append(next, p)
		}
	}
	if len(next) > h.max {
		next = next[:h.max]
	}
	h.paths = next
	snapshot := append([]string(nil), next...)
	h.mu.Unlock()

	return h.persist(snapshot)
}

// Remove deletes path from the list and persists it.
func (h *History) Remove(path string) error {
	return h.Drop(filepath.Clean(path))
}

// Drop removes every given path and persists the list if anything changed.
func (h *History) Drop(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}

	h.mu.Lock()
	next := make([]string, 0, len(h.paths))
	for _, p := range h.paths {
		if !drop[p] {
			next = append(next, p)
		}
	}
	changed := len(next) != len(h.paths)
	h.paths = next
	snapshot := append([]string(nil), next...)
	h.mu.Unlock()

	if !changed {
		return nil
	}
	return h.persist(snapshot)
}

// Clear empties the list and persists it.
func (h *History) Clear() error {
	h.mu.Lock()
	h.paths = nil
	h.mu.Unlock()
	return h.persist([]string{})
}

func (h *History) persist(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := h.kv.Set(HistoryKey, string(data)); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}
