// Package queuecore implements the push/pop protocol shared by every
// element type and every critical-section discipline: two semaphores guard
// admission to a ring of slots, and a caller-supplied per-slot action
// performs the actual element lifecycle transition under a short
// mutual-exclusion window.
package queuecore

import (
	"context"
	"time"

	"github.com/i5heu/rtqueue-bench/internal/ring"
	"github.com/i5heu/rtqueue-bench/internal/semaphore"
)

// Action transitions the slot at the given pointer between Free and
// Initialized (or vice versa). QueueCore does not know T; typed facades in
// pkg/ close over the value being pushed or the out-parameter being popped
// into.
type Action[T any] func(slot *T)

// Locker is satisfied by sync.Mutex and by this package's Spinlock (used by
// pkg/spinqueue and pkg/interruptqueue). It is the pluggable critical-section discipline
// the spec leaves as an implementer's choice (§4.3/§9): wrap step 2 of
// push/pop in whichever Locker the facade was constructed with.
type Locker interface {
	Lock()
	Unlock()
}

// QueueCore is the generic engine behind every typed facade in pkg/. It
// owns the two semaphores and the ring storage and knows nothing about how
// T is constructed, moved, or destroyed — that is entirely the action's
// job.
type QueueCore[T any] struct {
	popSem, pushSem *semaphore.Semaphore
	storage         *ring.Storage[T]
	readLock        Locker
	writeLock       Locker
}

// New constructs a QueueCore over capacity slots, guarding the read side
// with readLock and the write side with writeLock. Passing the same Locker
// for both sides models a single shared "scheduler lock" discipline;
// passing two independent Lockers models the spec's portable default.
func New[T any](capacity int, readLock, writeLock Locker) *QueueCore[T] {
	return &QueueCore[T]{
		popSem:    semaphore.New(0, capacity),
		pushSem:   semaphore.New(capacity, capacity),
		storage:   ring.New[T](capacity),
		readLock:  readLock,
		writeLock: writeLock,
	}
}

// Cap returns the ring's capacity.
func (c *QueueCore[T]) Cap() int { return c.storage.Cap() }

// FreeSlots returns the number of slots currently available for push.
func (c *QueueCore[T]) FreeSlots() int { return c.pushSem.Value() }

// UsedSlots returns the number of slots currently holding an initialized
// element.
func (c *QueueCore[T]) UsedSlots() int { return c.popSem.Value() }

// Push runs the full three-step push protocol (§4.3): wait on pushSem,
// run action under writeLock advancing the write index, post popSem. On
// step-1 failure it returns immediately with no state change.
func (c *QueueCore[T]) Push(ctx context.Context, action Action[T]) error {
	if err := c.pushSem.Wait(ctx); err != nil {
		return err
	}
	c.writeCriticalSection(action)
	return c.popSem.Post()
}

// TryPush is the non-blocking push variant.
func (c *QueueCore[T]) TryPush(action Action[T]) error {
	if err := c.pushSem.TryWait(); err != nil {
		return err
	}
	c.writeCriticalSection(action)
	return c.popSem.Post()
}

// PushTimeout is the bounded-wait push variant.
func (c *QueueCore[T]) PushTimeout(d time.Duration, action Action[T]) error {
	if err := c.pushSem.TryWaitFor(d); err != nil {
		return err
	}
	c.writeCriticalSection(action)
	return c.popSem.Post()
}

// PushDeadline is the bounded-wait push variant with an absolute deadline.
func (c *QueueCore[T]) PushDeadline(deadline time.Time, action Action[T]) error {
	if err := c.pushSem.TryWaitUntil(deadline); err != nil {
		return err
	}
	c.writeCriticalSection(action)
	return c.popSem.Post()
}

// Pop runs the full three-step pop protocol, symmetric to Push.
func (c *QueueCore[T]) Pop(ctx context.Context, action Action[T]) error {
	if err := c.popSem.Wait(ctx); err != nil {
		return err
	}
	c.readCriticalSection(action)
	return c.pushSem.Post()
}

// TryPop is the non-blocking pop variant.
func (c *QueueCore[T]) TryPop(action Action[T]) error {
	if err := c.popSem.TryWait(); err != nil {
		return err
	}
	c.readCriticalSection(action)
	return c.pushSem.Post()
}

// PopTimeout is the bounded-wait pop variant.
func (c *QueueCore[T]) PopTimeout(d time.Duration, action Action[T]) error {
	if err := c.popSem.TryWaitFor(d); err != nil {
		return err
	}
	c.readCriticalSection(action)
	return c.pushSem.Post()
}

// PopDeadline is the bounded-wait pop variant with an absolute deadline.
func (c *QueueCore[T]) PopDeadline(deadline time.Time, action Action[T]) error {
	if err := c.popSem.TryWaitUntil(deadline); err != nil {
		return err
	}
	c.readCriticalSection(action)
	return c.pushSem.Post()
}

func (c *QueueCore[T]) writeCriticalSection(action Action[T]) {
	c.writeLock.Lock()
	slot := c.storage.Write()
	action(slot)
	c.storage.AdvanceWrite()
	c.writeLock.Unlock()
}

func (c *QueueCore[T]) readCriticalSection(action Action[T]) {
	c.readLock.Lock()
	slot := c.storage.Read()
	action(slot)
	c.storage.AdvanceRead()
	c.readLock.Unlock()
}
