package fifoqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i5heu/rtqueue-bench/internal/semaphore"
)

type payload struct {
	id   int
	data []byte
}

func TestCopyPushSwapPopRoundTrip(t *testing.T) {
	q := New[int](4)

	for i := 0; i < 4; i++ {
		require.NoError(t, q.TryCopyPush(i))
	}
	require.ErrorIs(t, q.TryCopyPush(99), semaphore.ErrWouldBlock)

	for i := 0; i < 4; i++ {
		var out int
		require.NoError(t, q.TrySwapPop(&out))
		require.Equal(t, i, out)
	}
	var out int
	require.ErrorIs(t, q.TrySwapPop(&out), semaphore.ErrWouldBlock)
}

func TestMovePushClearsSource(t *testing.T) {
	q := New[payload](2)
	src := payload{id: 1, data: []byte("hello")}

	require.NoError(t, q.TryMovePush(&src))
	require.Equal(t, payload{}, src, "source must be zeroed after a move-push")

	var out payload
	require.NoError(t, q.TrySwapPop(&out))
	require.Equal(t, 1, out.id)
	require.Equal(t, []byte("hello"), out.data)
}

func TestEmplacePushCallsBuildExactlyOnce(t *testing.T) {
	q := New[int](2)
	calls := 0
	require.NoError(t, q.TryEmplacePush(func() int {
		calls++
		return 42
	}))
	require.Equal(t, 1, calls)

	var out int
	require.NoError(t, q.TrySwapPop(&out))
	require.Equal(t, 42, out)
}

func TestSwapPopZeroesVacatedSlot(t *testing.T) {
	q := New[payload](1)
	require.NoError(t, q.TryCopyPush(payload{id: 1, data: []byte("x")}))

	out := payload{id: -1, data: []byte("stale")}
	require.NoError(t, q.TrySwapPop(&out))
	require.Equal(t, 1, out.id)

	// push again and pop; if the old slot weren't cleared, this would
	// leak the previous element's backing array reference, not its value,
	// so the only observable check here is that round-tripping still
	// yields exactly what was pushed.
	require.NoError(t, q.TryCopyPush(payload{id: 2, data: []byte("y")}))
	var out2 payload
	require.NoError(t, q.TrySwapPop(&out2))
	require.Equal(t, 2, out2.id)
}

func TestCopyPushBlocksUntilSwapPop(t *testing.T) {
	q := New[int](1)
	require.NoError(t, q.TryCopyPush(1))

	done := make(chan error, 1)
	go func() { done <- q.CopyPush(context.Background(), 2) }()

	select {
	case <-done:
		t.Fatal("CopyPush returned before a slot freed up")
	case <-time.After(50 * time.Millisecond):
	}

	var out int
	require.NoError(t, q.SwapPop(context.Background(), &out))
	require.Equal(t, 1, out)
	require.NoError(t, <-done)
}

func TestCopyPushDeadlineExpires(t *testing.T) {
	q := New[int](1)
	require.NoError(t, q.TryCopyPush(1))
	err := q.CopyPushDeadline(2, time.Now().Add(20*time.Millisecond))
	require.ErrorIs(t, err, semaphore.ErrTimedOut)
}

func TestDrainCallsDestroyOnEveryResidualElement(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.TryCopyPush(i))
	}

	var destroyed []int
	q.Drain(func(v int) { destroyed = append(destroyed, v) })

	require.Equal(t, []int{0, 1, 2}, destroyed)
	require.Equal(t, uint64(0), q.UsedSlots())
}

func TestCloseDiscardsResidualElements(t *testing.T) {
	q := New[int](2)
	require.NoError(t, q.TryCopyPush(1))
	q.Close()
	require.Equal(t, uint64(0), q.UsedSlots())
	require.Equal(t, uint64(2), q.FreeSlots())
}

func TestEnqueueDequeueSatisfyValidationInterface(t *testing.T) {
	q := New[int](2)
	q.Enqueue(5)
	v, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, 5, v)

	_, ok = q.Dequeue()
	require.False(t, ok)
}

func TestWithSingleLockSharesOneLockBetweenSides(t *testing.T) {
	var o options
	WithSingleLock()(&o)
	require.Same(t, o.readLock, o.writeLock)

	q := New[int](4, WithSingleLock())
	require.NoError(t, q.TryCopyPush(1))
	var out int
	require.NoError(t, q.TrySwapPop(&out))
	require.Equal(t, 1, out)
}

func TestWithSpinLocksRoundTrip(t *testing.T) {
	q := New[int](4, WithSpinLocks())
	for i := 0; i < 4; i++ {
		require.NoError(t, q.TryCopyPush(i))
	}
	for i := 0; i < 4; i++ {
		var out int
		require.NoError(t, q.TrySwapPop(&out))
		require.Equal(t, i, out)
	}
}
