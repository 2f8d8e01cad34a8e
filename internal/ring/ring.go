package ring

import (
	"context"
	"sync"
	"sync/atomic"
)

// Ring is a bounded, thread-safe FIFO with a non-blocking overwriting
// producer side and a blocking consumer side.
//
// Write never blocks: when the buffer is full the oldest element is
// dropped in favor of the newest. This is the back-pressure policy of
// the whole pipeline - a real-time producer is never stalled by a slow
// consumer; consumer slowness manifests as drops, quantified by
// TotalDropped.
//
// Thread-safety model:
//   - Write(): safe from any goroutine, expected from one producer
//   - Read(): safe from any goroutine, expected from one consumer
//   - Close(): idempotent, safe from any goroutine
//
// The buffer uses a channel for signaling to enable context-aware
// waiting in Read (prevents goroutine hangs on context cancellation).
//
// INVARIANTS:
//   - writePos = (readPos + count) mod capacity
//   - 0 <= count <= capacity
//   - PeakSize() = max over time of count
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int
	writePos int
	readPos  int
	count    int
	peakSize int
	signal   chan struct{} // Signals element availability (buffered, size 1)

	closed atomic.Bool

	// Counters are atomic so monitoring can observe them without
	// contending for the buffer lock.
	totalWritten atomic.Int64
	totalRead    atomic.Int64
	totalDropped atomic.Int64
}

// New creates a ring buffer with the given capacity.
// Capacity must be >= 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		panic("ring: capacity must be >= 1")
	}
	return &Ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Write stores an item. NEVER blocks, never fails.
// If the buffer is full, the oldest unread item is overwritten and
// TotalDropped increments. Writes after Close are silently ignored.
func (r *Ring[T]) Write(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return
	}

	if r.count == r.capacity {
		// Full - overwrite oldest, advance readPos
		r.readPos = (r.readPos + 1) % r.capacity
		r.totalDropped.Add(1)
	} else {
		r.count++
	}

	r.buf[r.writePos] = item
	r.writePos = (r.writePos + 1) % r.capacity

	if r.count > r.peakSize {
		r.peakSize = r.count
	}
	r.totalWritten.Add(1)

	// Signal availability (non-blocking - buffer of 1 coalesces
	// signals). Sent under the lock: Close also holds it, so the
	// channel cannot close between the closed check and this send.
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Read removes and returns the oldest item in FIFO order.
//
// Blocks while the buffer is empty and open. Returns (zero, false) when
// the buffer is empty and closed (end of stream) or when ctx is
// cancelled; the consumer must treat both as end of stream.
func (r *Ring[T]) Read(ctx context.Context) (T, bool) {
	for {
		if item, ok := r.TryRead(); ok {
			return item, true
		}

		r.mu.Lock()
		drained := r.closed.Load() && r.count == 0
		r.mu.Unlock()
		if drained {
			var zero T
			return zero, false
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-r.signal:
			// Signal received - loop back to TryRead. The signal
			// channel closes when the buffer is closed, which makes
			// this case fire immediately for the drain re-check.
		}
	}
}

// TryRead attempts to read without blocking.
// Returns (zero, false) if the buffer is currently empty.
func (r *Ring[T]) TryRead() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		var zero T
		return zero, false
	}

	item := r.buf[r.readPos]

	// Clear the slot so the buffer does not retain a reference to a
	// consumed element until the slot is overwritten.
	var zero T
	r.buf[r.readPos] = zero

	r.readPos = (r.readPos + 1) % r.capacity
	r.count--
	r.totalRead.Add(1)

	return item, true
}

// Close marks the buffer end-of-stream and wakes all blocked readers.
// Remaining items stay readable in FIFO order. Idempotent.
func (r *Ring[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return
	}
	r.closed.Store(true)
	close(r.signal) // Wakes all waiters
}

// Len returns the current number of buffered items.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return r.capacity }

// TotalWritten returns the number of items ever written.
func (r *Ring[T]) TotalWritten() int64 { return r.totalWritten.Load() }

// TotalRead returns the number of items successfully read.
func (r *Ring[T]) TotalRead() int64 { return r.totalRead.Load() }

// TotalDropped returns the number of items overwritten before reading.
func (r *Ring[T]) TotalDropped() int64 { return r.totalDropped.Load() }

// PeakSize returns the maximum occupancy ever observed.
func (r *Ring[T]) PeakSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peakSize
}

// IsClosed reports whether Close has been called.
// Lock-free: closed is a simple flag written under the lock.
func (r *Ring[T]) IsClosed() bool { return r.closed.Load() }
