package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func adapters(t *testing.T) map[string]Adapter {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sq, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	mem, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sq.Close(); mem.Close() })
	return map[string]Adapter{
		"memory":        NewMemory(),
		"file":          f,
		"sqlite":        sq,
		"sqlite-memory": mem,
	}
}

func TestAdapterContract(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Get("state"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
			}
			if err := a.Set("state", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := a.Set("state", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := a.Get("state")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"a":2}` {
				t.Errorf("Get = %q, want overwritten value", got)
			}
			if err := a.Delete("state"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := a.Get("state"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
			}
			if err := a.Delete("state"); err != nil {
				t.Errorf("Delete of absent key: %v", err)
			}
		})
	}
}

func TestFileRejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := f.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) succeeded, want error", key)
		}
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := f.Set("state", []byte("v")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want [state.json]", names)
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get("k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v", got, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{BackendFile, false},
		{BackendSQLite, false},
		{BackendMemory, false},
		{"redis", true},
	} {
		t.Run(tt.backend, func(t *testing.T) {
			a, err := Open(tt.backend, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) err = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if a != nil {
				a.Close()
			}
		})
	}
}

func TestMemorySetErr(t *testing.T) {
	m := NewMemory()
	m.SetErr = errors.New("quota exceeded")
	if err := m.Set("k", []byte("v")); err == nil {
		t.Error("expected injected error")
	}
}
