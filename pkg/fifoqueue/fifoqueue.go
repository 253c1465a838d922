// Package fifoqueue is the typed facade over internal/queuecore: it
// supplies the four per-slot actions the spec's data model calls for
// (copy-construct, move-construct, emplace-construct, swap-and-destroy)
// and owns the responsibility the core explicitly declines — draining
// residual elements before the storage backing them goes away.
package fifoqueue

import (
	"context"
	"time"

	"github.com/i5heu/rtqueue-bench/internal/queuecore"
)

// FifoQueue is a bounded, blocking, FIFO queue of T. The zero value is not
// usable; construct with New.
type FifoQueue[T any] struct {
	core *queuecore.QueueCore[T]
}

// New constructs a FifoQueue with the given capacity. capacity must be >=
// 1; New panics otherwise, matching internal/ring's construction-time
// contract. Options select the critical-section discipline; the default
// is a dedicated mutex per side.
func New[T any](capacity int, opts ...Option) *FifoQueue[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FifoQueue[T]{core: queuecore.New[T](capacity, o.readLock, o.writeLock)}
}

// Cap returns the queue's fixed capacity.
func (q *FifoQueue[T]) Cap() int { return q.core.Cap() }

// FreeSlots returns how many more elements can be pushed before the queue
// is full. The value is a snapshot; concurrent operations may change it
// immediately after it is read.
func (q *FifoQueue[T]) FreeSlots() uint64 { return uint64(q.core.FreeSlots()) }

// UsedSlots returns how many elements are currently queued.
func (q *FifoQueue[T]) UsedSlots() uint64 { return uint64(q.core.UsedSlots()) }

// CopyPush copy-constructs value into the queue, blocking until a slot is
// free or ctx is done.
func (q *FifoQueue[T]) CopyPush(ctx context.Context, value T) error {
	return q.core.Push(ctx, func(slot *T) { *slot = value })
}

// TryCopyPush is the non-blocking variant of CopyPush.
func (q *FifoQueue[T]) TryCopyPush(value T) error {
	return q.core.TryPush(func(slot *T) { *slot = value })
}

// CopyPushTimeout is the bounded-wait variant of CopyPush.
func (q *FifoQueue[T]) CopyPushTimeout(value T, d time.Duration) error {
	return q.core.PushTimeout(d, func(slot *T) { *slot = value })
}

// CopyPushDeadline is the bounded-wait variant of CopyPush with an
// absolute deadline.
func (q *FifoQueue[T]) CopyPushDeadline(value T, deadline time.Time) error {
	return q.core.PushDeadline(deadline, func(slot *T) { *slot = value })
}

// MovePush move-constructs *value into the queue and leaves *value at its
// moved-from state (T's zero value), mirroring the rvalue-input push in
// the original spec. It blocks until a slot is free or ctx is done.
func (q *FifoQueue[T]) MovePush(ctx context.Context, value *T) error {
	return q.core.Push(ctx, moveAction(value))
}

// TryMovePush is the non-blocking variant of MovePush.
func (q *FifoQueue[T]) TryMovePush(value *T) error {
	return q.core.TryPush(moveAction(value))
}

// MovePushTimeout is the bounded-wait variant of MovePush.
func (q *FifoQueue[T]) MovePushTimeout(value *T, d time.Duration) error {
	return q.core.PushTimeout(d, moveAction(value))
}

// MovePushDeadline is the bounded-wait variant of MovePush with an
// absolute deadline.
func (q *FifoQueue[T]) MovePushDeadline(value *T, deadline time.Time) error {
	return q.core.PushDeadline(deadline, moveAction(value))
}

func moveAction[T any](value *T) queuecore.Action[T] {
	return func(slot *T) {
		*slot = *value
		var zero T
		*value = zero
	}
}

// EmplacePush constructs the new element in place by calling build exactly
// once, inside the critical section, and storing its result directly into
// the slot. It blocks until a slot is free or ctx is done.
func (q *FifoQueue[T]) EmplacePush(ctx context.Context, build func() T) error {
	return q.core.Push(ctx, func(slot *T) { *slot = build() })
}

// TryEmplacePush is the non-blocking variant of EmplacePush.
func (q *FifoQueue[T]) TryEmplacePush(build func() T) error {
	return q.core.TryPush(func(slot *T) { *slot = build() })
}

// EmplacePushTimeout is the bounded-wait variant of EmplacePush.
func (q *FifoQueue[T]) EmplacePushTimeout(build func() T, d time.Duration) error {
	return q.core.PushTimeout(d, func(slot *T) { *slot = build() })
}

// EmplacePushDeadline is the bounded-wait variant of EmplacePush with an
// absolute deadline.
func (q *FifoQueue[T]) EmplacePushDeadline(build func() T, deadline time.Time) error {
	return q.core.PushDeadline(deadline, func(slot *T) { *slot = build() })
}

// SwapPop exchanges the oldest queued value into *out and destroys the
// now-vacated slot (resetting it to T's zero value so it cannot keep a
// reference alive). *out must already hold a valid T; the swap completes
// before the slot is cleared, so a panicking T never leaves the queue in
// an inconsistent state. It blocks until an element is available or ctx is
// done.
func (q *FifoQueue[T]) SwapPop(ctx context.Context, out *T) error {
	return q.core.Pop(ctx, swapAction(out))
}

// TrySwapPop is the non-blocking variant of SwapPop.
func (q *FifoQueue[T]) TrySwapPop(out *T) error {
	return q.core.TryPop(swapAction(out))
}

// SwapPopTimeout is the bounded-wait variant of SwapPop.
func (q *FifoQueue[T]) SwapPopTimeout(out *T, d time.Duration) error {
	return q.core.PopTimeout(d, swapAction(out))
}

// SwapPopDeadline is the bounded-wait variant of SwapPop with an absolute
// deadline.
func (q *FifoQueue[T]) SwapPopDeadline(out *T, deadline time.Time) error {
	return q.core.PopDeadline(deadline, swapAction(out))
}

func swapAction[T any](out *T) queuecore.Action[T] {
	return func(slot *T) {
		*out, *slot = *slot, *out
		var zero T
		*slot = zero
	}
}

// Drain repeatedly pops elements without blocking, calling destroy on each
// one, until the queue is empty. It is the facade's half of the contract
// the core declines: QueueCore never walks remaining slots on its own, so
// whoever owns a FifoQueue of resource-holding T must call Drain (or
// Close) before letting the last reference go.
func (q *FifoQueue[T]) Drain(destroy func(T)) {
	for {
		var v T
		if err := q.TrySwapPop(&v); err != nil {
			return
		}
		if destroy != nil {
			destroy(v)
		}
	}
}

// Close drains the queue, discarding any residual elements.
func (q *FifoQueue[T]) Close() { q.Drain(nil) }

// Enqueue blocks until value can be pushed. It satisfies
// internal/queue.QueueValidationInterface so a FifoQueue can be dropped
// directly into the existing benchmark harness. Any error other than a
// canceled background context indicates a construction-time misuse and is
// not expected in steady-state operation; Enqueue panics on it so harness
// bugs surface immediately instead of silently dropping elements.
func (q *FifoQueue[T]) Enqueue(value T) {
	if err := q.CopyPush(context.Background(), value); err != nil {
		panic(err)
	}
}

// Dequeue is the non-blocking pop half of
// internal/queue.QueueValidationInterface: it returns the zero value and
// false if the queue is currently empty.
func (q *FifoQueue[T]) Dequeue() (T, bool) {
	var v T
	if err := q.TrySwapPop(&v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
