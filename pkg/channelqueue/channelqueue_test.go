package channelqueue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i5heu/rtqueue-bench/internal/queue"
)

var _ queue.QueueValidationInterface[*int] = New[*int](1)

func TestCapacityFlooredAtOne(t *testing.T) {
	q := New[int](0)
	require.Equal(t, uint64(1), q.FreeSlots())
}

func TestRoundTrip(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 4; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, uint64(0), q.FreeSlots())

	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	require.False(t, ok)
}
