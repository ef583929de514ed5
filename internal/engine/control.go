package engine

import (
	"context"
	"sync"
)

// Control is a thread-safe pause/cancel token shared between a ScanJob's
// owner and the scan goroutine. The scanner calls Wait between files, never
// mid-read, so an in-flight hash always completes.
//
// Pause is resumable; Cancel is terminal. Both may be called from any
// goroutine, any number of times.
type Control struct {
	mu       sync.Mutex
	resume   chan struct{} // non-nil while paused, closed on Resume/Cancel
	done     chan struct{}
	doneOnce sync.Once
}

// NewControl creates a running (not paused, not cancelled) Control.
func NewControl() *Control {
	return &Control{done: make(chan struct{})}
}

// Pause suspends the scan before its next file. No-op if already paused.
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resume == nil {
		c.resume = make(chan struct{})
	}
}

// Resume lifts a pause. No-op if not paused.
func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeLocked()
}

func (c *Control) resumeLocked() {
	if c.resume != nil {
		close(c.resume)
		c.resume = nil
	}
}

// Cancel permanently stops the scan. Also lifts any pause so a paused scan
// observes the cancellation.
func (c *Control) Cancel() {
	c.doneOnce.Do(func() { close(c.done) })
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeLocked()
}

// Done returns a channel closed once Cancel has been called.
func (c *Control) Done() <-chan struct{} { return c.done }

// Cancelled reports whether Cancel has been called.
func (c *Control) Cancelled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Paused reports whether the token is currently paused.
func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume != nil
}

// Wait blocks while paused and returns ErrCancelled after Cancel, or the
// context error if ctx expires first. Returns nil when the scan may proceed
// to its next file.
func (c *Control) Wait(ctx context.Context) error {
	for {
		select {
		case <-c.done:
			return ErrCancelled
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.mu.Lock()
		resume := c.resume
		c.mu.Unlock()
		if resume == nil {
			return nil
		}

		select {
		case <-resume:
		case <-c.done:
			return ErrCancelled
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
