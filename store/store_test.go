package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "fastfolder-test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	t.Run("Settings", func(t *testing.T) {
		if _, ok, err := db.Get("missing"); err != nil || ok {
			t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
		}

		if err := db.Set("default_action", "terminal"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := db.Set("default_action", "editor"); err != nil {
			t.Fatalf("Set overwrite failed: %v", err)
		}

		value, ok, err := db.Get("default_action")
		if err != nil || !ok {
			t.Fatalf("Get failed: ok %v, err %v", ok, err)
		}
		if value != "editor" {
			t.Errorf("expected editor, got %s", value)
		}
	})

	t.Run("HistoryRoundTrip", func(t *testing.T) {
		dir := t.TempDir()
		a := mkdir(t, dir, "a")
		b := mkdir(t, dir, "b")

		h := NewHistory(db, osDirs{}, 5)
		if err := h.Record(a); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if err := h.Record(b); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		reloaded := NewHistory(db, osDirs{}, 5)
		paths, err := reloaded.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		assertPaths(t, paths, b, a)
	})

	t.Run("Reopen", func(t *testing.T) {
		db2, err := Open(dbPath)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer db2.Close()
		if v, ok, _ := db2.Get("default_action"); !ok || v != "editor" {
			t.Errorf("setting lost across reopen: %q %v", v, ok)
		}
	})
}

// osDirs checks directories on the real filesystem.
type osDirs struct{}

func (osDirs) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// memKV is an in-memory KV that can be told to fail.
type memKV struct {
	data    map[string]string
	failGet error
	failSet error
	sets    int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memKV) stored(t *testing.T) []string {
	t.Helper()
	var paths []string
	if err := json.Unmarshal([]byte(m.data[HistoryKey]), &paths); err != nil {
		t.Fatalf("stored history is not a JSON list: %v", err)
	}
	return paths
}

func mkdir(t *testing.T, parent, name string) string {
	t.Helper()
	p := filepath.Join(parent, name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func assertPaths(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHistoryRecordMovesToFrontAndCaps(t *testing.T) {
	kv := newMemKV()
	h := NewHistory(kv, osDirs{}, 3)

	for _, p := range []string{"/a", "/b", "/c", "/a", "/d"} {
		if err := h.Record(p); err != nil {
			t.Fatalf("Record(%s): %v", p, err)
		}
	}
	assertPaths(t, h.Paths(), "/d", "/a", "/c")
	assertPaths(t, kv.stored(t), "/d", "/a", "/c")
}

func TestHistoryRemove(t *testing.T) {
	kv := newMemKV()
	h := NewHistory(kv, osDirs{}, 10)
	_ = h.Record("/a")
	_ = h.Record("/b")

	if err := h.Remove("/a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertPaths(t, h.Paths(), "/b")
	assertPaths(t, kv.stored(t), "/b")

	sets := kv.sets
	if err := h.Remove("/missing"); err != nil {
		t.Fatalf("Remove(missing): %v", err)
	}
	if kv.sets != sets {
		t.Error("removing an absent path should not persist")
	}
}

func TestHistoryLoadDropsStalePaths(t *testing.T) {
	dir := t.TempDir()
	keep := mkdir(t, dir, "keep")
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	kv := newMemKV()
	raw, _ := json.Marshal([]string{filepath.Join(dir, "gone"), keep, file, keep})
	kv.data[HistoryKey] = string(raw)

	h := NewHistory(kv, osDirs{}, 10)
	paths, err := h.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertPaths(t, paths, keep)
	assertPaths(t, kv.stored(t), keep)
}

func TestHistoryLoadWithoutChangesDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	a := mkdir(t, dir, "a")

	kv := newMemKV()
	raw, _ := json.Marshal([]string{a})
	kv.data[HistoryKey] = string(raw)

	if _, err := NewHistory(kv, osDirs{}, 10).Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if kv.sets != 0 {
		t.Errorf("Load persisted %d times for an unchanged list", kv.sets)
	}

	empty := newMemKV()
	paths, err := NewHistory(empty, osDirs{}, 10).Load()
	if err != nil || len(paths) != 0 {
		t.Fatalf("empty Load = %v, %v", paths, err)
	}
}

func TestHistoryPersistenceFailureKeepsMemory(t *testing.T) {
	kv := newMemKV()
	kv.failSet = errors.New("disk full")
	h := NewHistory(kv, osDirs{}, 10)

	err := h.Record("/a")
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "save" {
		t.Fatalf("expected save PersistenceError, got %v", err)
	}
	assertPaths(t, h.Paths(), "/a")

	kv.failGet = errors.New("locked")
	if _, err := h.Load(); !errors.As(err, &perr) || perr.Op != "load" {
		t.Fatalf("expected load PersistenceError, got %v", err)
	}
	assertPaths(t, h.Paths(), "/a")
}

func TestHistoryCorruptValue(t *testing.T) {
	kv := newMemKV()
	kv.data[HistoryKey] = "{not json"

	paths, err := NewHistory(kv, osDirs{}, 10).Load()
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "decode" {
		t.Fatalf("expected decode PersistenceError, got %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("corrupt history loaded %v", paths)
	}
}

func TestHistoryDropAndClear(t *testing.T) {
	kv := newMemKV()
	h := NewHistory(kv, osDirs{}, 0)
	if h.Max() != DefaultMaxHistory {
		t.Errorf("Max = %d, want default %d", h.Max(), DefaultMaxHistory)
	}
	for _, p := range []string{"/a", "/b", "/c"} {
		_ = h.Record(p)
	}

	if err := h.Drop("/a", "/c"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	assertPaths(t, h.Paths(), "/b")

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(h.Paths()) != 0 || kv.data[HistoryKey] != "[]" {
		t.Errorf("after Clear: memory %v, stored %q", h.Paths(), kv.data[HistoryKey])
	}
}
