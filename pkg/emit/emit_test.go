package emit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerseFormat(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, false)

	em.Activate(0, 48, 0, 0, 0)
	em.Read(48, 56, 0, 0, 0, 1)
	em.Write(112, 48, 2, 3, 0x1A, 0x3F)
	em.Precharge(200, 48, 1, 2, 7)
	em.Drain(1000)
	require.NoError(t, em.Err())

	want := fmt.Sprintf("%26d\tACT 0 0 0\n", 0) +
		fmt.Sprintf("%26d\tRD  0 0 1\n", 48) +
		fmt.Sprintf("%26d\tWR  2 3 3F\n", 112) +
		fmt.Sprintf("%26d\tPRE 1 2\n", 200)
	assert.Equal(t, want, buf.String())
}

func TestTerseFieldWidth(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, false)
	em.Precharge(7, 48, 0, 0, 0)

	line, _, found := strings.Cut(buf.String(), "\t")
	require.True(t, found)
	assert.Len(t, line, 26, "cycle is right-aligned in a 26-char field")
	assert.Equal(t, "7", strings.TrimSpace(line))
}

func TestTerseIgnoresNotes(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, false)
	em.Note(0, 0, "nothing to see")
	em.Drain(100)
	assert.Empty(t, buf.String())
	_, ok := em.NextAt()
	assert.False(t, ok)
}

func TestVerboseDrainsInTimeOrder(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, true)

	// Read at cycle 0 completing at 56: received now, burst begins at 48,
	// completes at 56.
	em.Read(0, 56, 0, 0, 5, 2)
	em.Note(0, 10, "interleaved note")

	em.Drain(0)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "received read command")

	em.Drain(56)
	require.NoError(t, em.Err())
	lines = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "interleaved note")
	assert.Contains(t, lines[2], "begun bursting")
	assert.Contains(t, lines[3], "completed burst")

	_, pending := em.NextAt()
	assert.False(t, pending)
}

func TestVerboseSameCycleKeepsInsertionOrder(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, true)

	em.Note(0, 4, "first")
	em.Note(0, 4, "second")
	em.Note(0, 4, "third")
	em.Drain(4)

	out := buf.String()
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "third"))
}

func TestVerboseNextAt(t *testing.T) {
	var buf strings.Builder
	em := New(&buf, true)

	em.Precharge(10, 48, 0, 0, 3)
	em.Drain(10)

	at, ok := em.NextAt()
	require.True(t, ok)
	assert.Equal(t, uint64(58), at, "completion message pends at 10+48")

	out := buf.String()
	assert.Contains(t, out, "closed row 3")
}
