package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewerd/memsim/pkg/trace"
)

func req(t *testing.T, arrive uint64) *trace.Request {
	t.Helper()
	r, err := trace.ParseLine(fmt.Sprintf("%d 0 0x0", arrive))
	require.NoError(t, err)
	return r
}

func TestPushBounded(t *testing.T) {
	q := New(2)
	assert.True(t, q.Empty())

	require.NoError(t, q.Push(req(t, 1)))
	require.NoError(t, q.Push(req(t, 2)))
	assert.True(t, q.Full())
	assert.Equal(t, 2, q.Len())

	assert.ErrorIs(t, q.Push(req(t, 3)), ErrFull)
	assert.Equal(t, 2, q.Len())
}

func TestOrderAndRemove(t *testing.T) {
	q := New(4)
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, q.Push(req(t, i)))
	}

	// 1-based, oldest first.
	assert.Equal(t, uint64(1), q.Peek(1).Arrive)
	assert.Equal(t, uint64(4), q.Peek(4).Arrive)

	removed := q.Remove(2)
	assert.Equal(t, uint64(2), removed.Arrive)

	// Later entries reindex.
	assert.Equal(t, uint64(1), q.Peek(1).Arrive)
	assert.Equal(t, uint64(3), q.Peek(2).Arrive)
	assert.Equal(t, uint64(4), q.Peek(3).Arrive)
	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Full())
}

func TestAgeCountsDownTIQCountsUp(t *testing.T) {
	q := New(2)
	require.NoError(t, q.Push(req(t, 0)))
	q.SetAge(1, 10)

	q.Age(4)
	assert.Equal(t, uint8(6), q.AgeOf(1))
	assert.Equal(t, uint16(4), q.TIQ(1))

	// Age saturates at zero, never wraps.
	q.Age(100)
	assert.Equal(t, uint8(0), q.AgeOf(1))
	assert.Equal(t, uint16(104), q.TIQ(1))
}

func TestSetAgeClamps(t *testing.T) {
	q := New(1)
	require.NoError(t, q.Push(req(t, 0)))

	q.SetAge(1, 1000)
	assert.Equal(t, uint8(MaxAge), q.AgeOf(1))

	q.SetAge(1, 0)
	assert.Equal(t, uint8(0), q.AgeOf(1))
}

func TestTIQSaturates(t *testing.T) {
	q := New(1)
	require.NoError(t, q.Push(req(t, 0)))

	q.Age(MaxTIQ - 1)
	assert.Equal(t, uint16(MaxTIQ-1), q.TIQ(1))
	q.Age(1000)
	assert.Equal(t, uint16(MaxTIQ), q.TIQ(1))
}

func TestIndexMisusePanics(t *testing.T) {
	q := New(1)
	require.NoError(t, q.Push(req(t, 0)))
	assert.Panics(t, func() { q.Peek(0) })
	assert.Panics(t, func() { q.Peek(2) })
	assert.Panics(t, func() { q.Remove(5) })
}
