package schedlockqueue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i5heu/rtqueue-bench/internal/queue"
)

var _ queue.QueueValidationInterface[*int] = New[*int](1)

func TestRoundTrip(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 4; i++ {
		require.NoError(t, q.TryCopyPush(i))
	}
	for i := 0; i < 4; i++ {
		var out int
		require.NoError(t, q.TrySwapPop(&out))
		require.Equal(t, i, out)
	}
}
