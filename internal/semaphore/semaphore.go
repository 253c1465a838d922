// Package semaphore implements the counting semaphore contract consumed by
// internal/queuecore: a non-negative value bounded by a configured maximum,
// blocking/try/timed decrement, non-blocking increment, and FIFO wake order
// among blocked waiters.
//
// This is the scheduler-integrated primitive that distortos's FifoQueueBase
// treats as an external collaborator. Since this module has no scheduler to
// delegate to, it provides its own, built the way the rest of the retrieved
// queue implementations build their own synchronization — just blocking and
// FIFO instead of spinning.
package semaphore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
)

type isrKey struct{}

// WithInterruptContext marks ctx so that Wait on it fails fast with
// ErrOperationNotPermitted instead of suspending the caller. Interrupt
// handlers must derive their context this way before touching a queue.
func WithInterruptContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, isrKey{}, true)
}

func isInterruptContext(ctx context.Context) bool {
	v, _ := ctx.Value(isrKey{}).(bool)
	return v
}

// waiter is queued by a blocked Wait call and woken by Post. abandoned is
// set by a waiter that gave up (context canceled/expired) so that Post can
// lazily skip it instead of paying for list removal on the hot cancellation
// path.
type waiter struct {
	ready     chan struct{}
	abandoned atomic.Bool
}

// Semaphore is a counting semaphore with a FIFO-ordered waiter queue.
type Semaphore struct {
	mu      sync.Mutex
	value   int
	max     int
	waiters deque.Deque[*waiter]
}

// New creates a Semaphore with the given initial value and maximum. It
// panics if initial is negative, max is negative, or initial exceeds max —
// these are construction-time programmer errors, not runtime failures.
func New(initial, max int) *Semaphore {
	if max < 0 {
		panic("semaphore: max must be >= 0")
	}
	if initial < 0 || initial > max {
		panic("semaphore: initial must be within [0, max]")
	}
	return &Semaphore{value: initial, max: max}
}

// Value returns the current value. It is a point-in-time snapshot useful
// for diagnostics (e.g. FreeSlots/UsedSlots); callers must not rely on it
// being current by the time they act on it.
func (s *Semaphore) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Max returns the configured maximum value.
func (s *Semaphore) Max() int { return s.max }

// TryWait attempts to decrement the value without blocking. It returns
// ErrWouldBlock if the value is zero.
func (s *Semaphore) TryWait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == 0 {
		return ErrWouldBlock
	}
	s.value--
	return nil
}

// Wait blocks until the value is positive, then decrements it. If ctx is
// marked via WithInterruptContext, Wait never blocks and instead returns
// ErrOperationNotPermitted immediately. If ctx is canceled or its deadline
// expires before a permit is granted, Wait returns ErrInterrupted or
// ErrTimedOut respectively, and the semaphore's value is left unchanged.
func (s *Semaphore) Wait(ctx context.Context) error {
	if isInterruptContext(ctx) {
		return ErrOperationNotPermitted
	}

	s.mu.Lock()
	if s.value > 0 {
		s.value--
		s.mu.Unlock()
		return nil
	}
	w := &waiter{ready: make(chan struct{}, 1)}
	s.waiters.PushBack(w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		return s.abandon(ctx, w)
	}
}

// abandon is the cancellation path for a blocked Wait: it decides, under
// the lock, whether a permit was already handed to w by a concurrent Post
// (in which case it must be relayed to the next waiter rather than lost) or
// whether w can simply be marked abandoned for Post to skip later.
func (s *Semaphore) abandon(ctx context.Context, w *waiter) error {
	s.mu.Lock()
	select {
	case <-w.ready:
		s.mu.Unlock()
		_ = s.Post()
	default:
		w.abandoned.Store(true)
		s.mu.Unlock()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimedOut
	}
	return ErrInterrupted
}

// TryWaitFor blocks for at most d waiting for a permit.
func (s *Semaphore) TryWaitFor(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.Wait(ctx)
}

// TryWaitUntil blocks until deadline waiting for a permit.
func (s *Semaphore) TryWaitUntil(deadline time.Time) error {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	return s.Wait(ctx)
}

// Post increments the value, up to max, waking the oldest live waiter if
// any is queued. It returns ErrOverflow if the value is already at max.
func (s *Semaphore) Post() error {
	s.mu.Lock()
	for {
		if s.waiters.Len() == 0 {
			if s.value >= s.max {
				s.mu.Unlock()
				return ErrOverflow
			}
			s.value++
			s.mu.Unlock()
			return nil
		}
		w := s.waiters.PopFront()
		if w.abandoned.Load() {
			continue
		}
		s.mu.Unlock()
		w.ready <- struct{}{}
		return nil
	}
}
