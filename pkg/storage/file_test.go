package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	exerciseBackend(t, f)

	// A second handle sees what the first persisted.
	again, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, _ := again.Get(context.Background(), "count")
	if !ok || v != "42" {
		t.Errorf("reopened Get: got (%q, %v), want (\"42\", true)", v, ok)
	}
}

func TestFileBackendRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFileBackendWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	watched, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	writer, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- watched.Watch(ctx, func(key string) { changed <- key })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := writer.Set(context.Background(), "count", "42"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	select {
	case key := <-changed:
		if key != "count" {
			t.Errorf("changed key: got %q, want count", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	v, ok, _ := watched.Get(context.Background(), "count")
	if !ok || v != "42" {
		t.Errorf("watched Get: got (%q, %v), want (\"42\", true)", v, ok)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
