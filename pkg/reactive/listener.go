package reactive

import "sync/atomic"

// Listener is anything that can be notified when a cell it reads changes.
// Consuming units implement it to schedule a re-render.
type Listener interface {
	// MarkDirty notifies the listener that one of its cells changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// Cleanup releases whatever a setup function acquired.
type Cleanup func()

var idCounter atomic.Uint64

// NextID returns a process-unique identifier.
func NextID() uint64 {
	return idCounter.Add(1)
}
