package main

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i5heu/rtqueue-bench/internal/semaphore"
	"github.com/i5heu/rtqueue-bench/pkg/mutexqueue"
)

// TestContextCancellationRace hammers CopyPush/SwapPop with contexts that
// are canceled at essentially random points relative to a matching Post,
// trying to provoke the abandon-vs-permit race in internal/semaphore: a
// waiter's context can fire at the same instant a Post hands it a permit.
// Run with -race; a lost or double-granted permit shows up as every
// producer eventually blocking forever (caught by the watchdog) or as
// UsedSlots exceeding capacity.
func TestContextCancellationRace(t *testing.T) {
	const (
		capacity     = 4
		goroutines   = 32
		perGoroutine = 500
	)
	q := mutexqueue.New[*int](capacity)

	wd := newWatchdog(t, "ContextCancellationRace")
	wd.Start()
	defer wd.Stop()

	var succeeded, canceled atomic.Int64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ctx, cancel := context.WithTimeout(context.Background(), time.Microsecond)
				v := i
				err := q.CopyPush(ctx, &v)
				cancel()
				if err == nil {
					succeeded.Add(1)
				} else {
					canceled.Add(1)
				}
			}
		}()
	}

	total := int64(goroutines * perGoroutine)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			var out *int
			if err := q.TrySwapPop(&out); err == nil {
				wd.Progress()
			}
			if succeeded.Load()+canceled.Load() >= total && q.UsedSlots() == 0 {
				return
			}
		}
	}()

	wg.Wait()
	<-drained

	require.LessOrEqual(t, q.UsedSlots(), uint64(capacity))
	require.Equal(t, total, succeeded.Load()+canceled.Load())
}

// TestSemaphoreNeverOverflowsOrUnderflows drives a raw semaphore with
// concurrent Post/TryWaitFor traffic and checks its value never leaves
// [0, max], exactly the invariant a lost-wakeup or double-grant bug in the
// waiter queue would violate.
func TestSemaphoreNeverOverflowsOrUnderflows(t *testing.T) {
	const max = 16
	sem := semaphore.New(0, max)

	wd := newWatchdog(t, "SemaphoreNeverOverflowsOrUnderflows")
	wd.Start()
	defer wd.Stop()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				sem.Post()
				require.LessOrEqual(t, sem.Value(), max)
			}
		}()
	}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				_ = sem.TryWaitFor(50 * time.Microsecond)
				wd.Progress()
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()

	require.GreaterOrEqual(t, sem.Value(), 0)
	require.LessOrEqual(t, sem.Value(), max)
}

// TestInterruptQueueISRSurfaceUnderContention runs the try-only ISR-facing
// API concurrently with the blocking thread-side API on the same queue,
// the way a real ISR handler and its owning thread would share one
// interruptqueue.Queue. Nothing on the ISR side may ever block.
func TestInterruptQueueISRSurfaceUnderContention(t *testing.T) {
	withAllQueues(t, func(t *testing.T, impl Implementation) {
		if impl.name != "InterruptQueue" {
			t.Skip("only meaningful for the interrupt-safe discipline")
		}

		q := impl.newQueue(32)

		wd := newWatchdog(t, "InterruptQueueISRSurfaceUnderContention")
		wd.Start()
		defer wd.Stop()

		const rounds = 20000
		var pushed, popped atomic.Int64

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				v := i
				q.Enqueue(&v) // thread-context blocking push
				pushed.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			for popped.Load() < int64(rounds) {
				if _, ok := q.Dequeue(); ok { // simulated ISR pop, must never block
					popped.Add(1)
					wd.Progress()
				}
			}
		}()
		wg.Wait()

		require.Equal(t, int64(rounds), pushed.Load())
		require.Equal(t, int64(rounds), popped.Load())
	})
}
