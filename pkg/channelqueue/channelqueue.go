// Package channelqueue is the benchmark's reference baseline: a bounded
// FIFO built directly on Go's native buffered channel, which is already
// blocking, bounded, and strictly ordered without any of
// internal/queuecore's machinery. It does not implement the typed
// facade's CopyPush/MovePush/EmplacePush/SwapPop operations — a channel
// has no notion of swapping a value out of a slot in place — so it exists
// purely as a throughput/latency comparison point against the
// semaphore-backed disciplines in pkg/mutexqueue, pkg/schedlockqueue,
// pkg/spinqueue, and pkg/interruptqueue.
//
// Replaces the teacher's buffered package in the benchmark matrix.
package channelqueue

// ChannelQueue is a bounded FIFO queue backed by a Go channel.
type ChannelQueue[T any] struct {
	ch chan T
}

// New creates a ChannelQueue with the given capacity. A zero-capacity Go
// channel is an unbuffered synchronization primitive, not a zero-capacity
// buffer, so capacity is floored at 1 to preserve bounded-buffer
// semantics.
func New[T any](capacity uint64) *ChannelQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ChannelQueue[T]{ch: make(chan T, capacity)}
}

// Enqueue blocks until val can be sent on the channel.
func (q *ChannelQueue[T]) Enqueue(val T) {
	q.ch <- val
}

// Dequeue is the non-blocking pop half of
// internal/queue.QueueValidationInterface.
func (q *ChannelQueue[T]) Dequeue() (val T, ok bool) {
	select {
	case val = <-q.ch:
		return val, true
	default:
		return val, false
	}
}

// FreeSlots returns how many more elements can be enqueued right now.
func (q *ChannelQueue[T]) FreeSlots() uint64 {
	return uint64(cap(q.ch) - len(q.ch))
}

// UsedSlots returns how many elements are currently queued.
func (q *ChannelQueue[T]) UsedSlots() uint64 {
	return uint64(len(q.ch))
}
