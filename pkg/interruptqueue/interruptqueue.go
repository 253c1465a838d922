// Package interruptqueue is the discipline for queues shared between a
// thread and an interrupt handler: the critical section uses the same CAS
// spinlock as pkg/spinqueue, and its ISR-facing methods (PushFromISR,
// PopFromISR) are the non-blocking ones an ISR is allowed to call (§5).
// The type also has a blocking Enqueue, for thread-side use by the
// benchmark harness only. Thread-side code that needs the rest of the
// blocking API should keep a reference to the underlying
// *fifoqueue.FifoQueue via Unrestricted.
//
// Replaces the teacher's fastmpmc_ticket package in the benchmark matrix.
package interruptqueue

import "github.com/i5heu/rtqueue-bench/pkg/fifoqueue"

// Queue is a FifoQueue whose producer-facing API is restricted to the
// non-blocking variants safe to call from an interrupt handler.
type Queue[T any] struct {
	fq *fifoqueue.FifoQueue[T]
}

// New creates an interrupt-safe Queue guarded by CAS spinlocks.
func New[T any](capacity uint64) *Queue[T] {
	return &Queue[T]{fq: fifoqueue.New[T](int(capacity), fifoqueue.WithSpinLocks())}
}

// Unrestricted returns the underlying FifoQueue, for thread-context code
// that needs the blocking/timed API. Never call methods on it from an
// interrupt handler.
func (q *Queue[T]) Unrestricted() *fifoqueue.FifoQueue[T] { return q.fq }

// PushFromISR copy-pushes value without blocking. Safe to call from an
// interrupt handler; returns ErrWouldBlock if the queue is full rather
// than suspending the caller.
func (q *Queue[T]) PushFromISR(value T) error { return q.fq.TryCopyPush(value) }

// PopFromISR swap-pops into out without blocking. Safe to call from an
// interrupt handler.
func (q *Queue[T]) PopFromISR(out *T) error { return q.fq.TrySwapPop(out) }

// FreeSlots returns how many more elements can be pushed right now.
func (q *Queue[T]) FreeSlots() uint64 { return q.fq.FreeSlots() }

// UsedSlots returns how many elements are currently queued.
func (q *Queue[T]) UsedSlots() uint64 { return q.fq.UsedSlots() }

// Enqueue blocks until value can be pushed; only call from thread context.
// It satisfies internal/queue.QueueValidationInterface so Queue can be
// dropped into the existing benchmark harness, which always drives both
// sides from ordinary goroutines, never from a simulated ISR.
func (q *Queue[T]) Enqueue(value T) { q.fq.Enqueue(value) }

// Dequeue is the non-blocking pop half of
// internal/queue.QueueValidationInterface.
func (q *Queue[T]) Dequeue() (T, bool) { return q.fq.Dequeue() }
