package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/use/pkg/storage"
)

// StorageEvent is the payload of an EventStorage event. A nil NewValue
// means the key was removed. OldValue is nil when the previous value is
// unknown (external writes) or the key did not exist.
type StorageEvent struct {
	Key      string
	OldValue *string
	NewValue *string
	Area     *Storage

	// External is true when the write came from another writer of the
	// backend rather than through this area.
	External bool
}

// Storage is a storage area (local or session) over a backend. Every write
// made through the area, and every external write its backend reports,
// dispatches EventStorage on the area.
type Storage struct {
	name    string
	backend storage.Backend
	target  *Target
	timeout time.Duration
	logger  *slog.Logger
}

// NewStorage creates an area named name ("local", "session").
func NewStorage(name string, backend storage.Backend) *Storage {
	return &Storage{
		name:    name,
		backend: backend,
		target:  NewTarget(name + "Storage"),
		timeout: 5 * time.Second,
		logger:  slog.Default().With("storage", name),
	}
}

// Name returns the area name.
func (s *Storage) Name() string {
	return s.name
}

// Backend returns the underlying backend.
func (s *Storage) Backend() storage.Backend {
	return s.backend
}

func (s *Storage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// GetItem reads key.
func (s *Storage) GetItem(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.backend.Get(ctx, key)
}

// SetItem writes key and dispatches a storage event.
func (s *Storage) SetItem(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	old, had, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		return err
	}

	ev := StorageEvent{Key: key, NewValue: &value, Area: s}
	if had {
		ev.OldValue = &old
	}
	s.dispatch(ev)
	return nil
}

// RemoveItem deletes key and dispatches a storage event.
func (s *Storage) RemoveItem(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	old, had, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.backend.Remove(ctx, key); err != nil {
		return err
	}

	ev := StorageEvent{Key: key, Area: s}
	if had {
		ev.OldValue = &old
	}
	s.dispatch(ev)
	return nil
}

// Keys lists stored keys.
func (s *Storage) Keys() ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.backend.Keys(ctx)
}

func (s *Storage) dispatch(ev StorageEvent) {
	s.target.Dispatch(Event{Type: EventStorage, Key: ev.Key, Data: ev})
}

// AddEventListener implements EventTarget.
func (s *Storage) AddEventListener(event string, l *Listener, opts Options) {
	s.target.AddEventListener(event, l, opts)
}

// RemoveEventListener implements EventTarget.
func (s *Storage) RemoveEventListener(event string, l *Listener, opts Options) {
	s.target.RemoveEventListener(event, l, opts)
}

// ListenerCount returns the number of registrations for event.
func (s *Storage) ListenerCount(event string) int {
	return s.target.ListenerCount(event)
}

// Watch forwards external writes reported by the backend as storage events
// until ctx is done. Events are handed to post, which must run them on the
// loop that owns the listeners. Backends without a watcher return at once.
func (s *Storage) Watch(ctx context.Context, post func(func())) error {
	w, ok := s.backend.(storage.Watcher)
	if !ok {
		return nil
	}
	return w.Watch(ctx, func(key string) {
		post(func() {
			ev := StorageEvent{Key: key, Area: s, External: true}
			if v, ok, err := s.GetItem(key); err != nil {
				s.logger.Warn("read after external change failed", "key", key, "error", err)
				return
			} else if ok {
				ev.NewValue = &v
			}
			s.dispatch(ev)
		})
	})
}
