package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	require.Panics(t, func() { New[int](0) })
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := New[int](4)
	require.Equal(t, 4, s.Cap())

	for i := 0; i < 4; i++ {
		*s.Write() = i
		s.AdvanceWrite()
	}
	for i := 0; i < 4; i++ {
		require.Equal(t, i, *s.Read())
		s.AdvanceRead()
	}
}

func TestWrapsAtCapacity(t *testing.T) {
	s := New[int](3)

	// fill, drain one, fill one more: write index must wrap to 0.
	*s.Write() = 1
	s.AdvanceWrite()
	*s.Write() = 2
	s.AdvanceWrite()
	*s.Write() = 3
	s.AdvanceWrite()

	require.Equal(t, 1, *s.Read())
	s.AdvanceRead()

	*s.Write() = 4
	s.AdvanceWrite()

	require.Equal(t, 2, *s.Read())
	s.AdvanceRead()
	require.Equal(t, 3, *s.Read())
	s.AdvanceRead()
	require.Equal(t, 4, *s.Read())
	s.AdvanceRead()
}
