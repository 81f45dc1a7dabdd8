package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File stores all keys in one JSON document. Writes replace the document
// atomically. Watch reports keys changed by other writers of the same file.
type File struct {
	path  string
	cache map[string]string
	mu    sync.Mutex
}

// NewFile opens (or lazily creates) the document at path.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	f := &File{path: abs}
	data, err := f.load()
	if err != nil {
		return nil, err
	}
	f.cache = data
	return f, nil
}

// Path returns the absolute document path.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	data := make(map[string]string)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse storage file: %w", err)
	}
	return data, nil
}

// writeLocked persists the cache through a temp file and rename.
func (f *File) writeLocked() error {
	raw, err := json.MarshalIndent(f.cache, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.cache[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, had := f.cache[key]
	f.cache[key] = value
	if err := f.writeLocked(); err != nil {
		if had {
			f.cache[key] = old
		} else {
			delete(f.cache, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, had := f.cache[key]
	if !had {
		return nil
	}
	delete(f.cache, key)
	if err := f.writeLocked(); err != nil {
		f.cache[key] = old
		return err
	}
	return nil
}

func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.cache))
	for k := range f.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch watches the document's directory (renames replace the file inode)
// and reloads the document whenever it changes, reporting every key whose
// value differs from the cached one.
func (f *File) Watch(ctx context.Context, onChange func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch storage dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			for _, key := range f.reload() {
				onChange(key)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch storage file: %w", err)
		}
	}
}

// reload re-reads the document and returns the keys that changed.
func (f *File) reload() []string {
	data, err := f.load()
	if err != nil {
		// Partially written by a non-atomic writer; the next event retries.
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var changed []string
	for k, v := range data {
		if old, ok := f.cache[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	for k := range f.cache {
		if _, ok := data[k]; !ok {
			changed = append(changed, k)
		}
	}
	f.cache = data
	sort.Strings(changed)
	return changed
}
