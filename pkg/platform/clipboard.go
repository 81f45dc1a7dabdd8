package platform

import (
	"context"
	"sync"
)

// MemoryClipboard is an in-memory asynchronous clipboard.
type MemoryClipboard struct {
	text   string
	denied bool
	writes int
	mu     sync.Mutex
}

// NewMemoryClipboard creates an empty clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Deny makes subsequent reads and writes fail with ErrPermissionDenied.
func (c *MemoryClipboard) Deny(denied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied = denied
}

// WriteText stores text.
func (c *MemoryClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.denied {
		return ErrPermissionDenied
	}
	c.text = text
	c.writes++
	return nil
}

// ReadText returns the stored text.
func (c *MemoryClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.denied {
		return "", ErrPermissionDenied
	}
	return c.text, nil
}

// Writes returns how many writes succeeded.
func (c *MemoryClipboard) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// MemoryCopier records selection-based copies.
type MemoryCopier struct {
	last   string
	copies int
	fail   bool
	mu     sync.Mutex
}

// NewMemoryCopier creates a copier that succeeds.
func NewMemoryCopier() *MemoryCopier {
	return &MemoryCopier{}
}

// Fail makes subsequent copies report failure.
func (c *MemoryCopier) Fail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

// ExecCopy records text and reports success.
func (c *MemoryCopier) ExecCopy(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.last = text
	c.copies++
	return true
}

// Last returns the most recently copied text.
func (c *MemoryCopier) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Copies returns the number of successful copies.
func (c *MemoryCopier) Copies() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copies
}
