package sim

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewerd/memsim/pkg/config"
	"github.com/ewerd/memsim/pkg/sched"
)

func runTrace(t *testing.T, traceText string, opts Options) (*Simulator, []string, error) {
	t.Helper()
	if opts.Config.QueueCapacity == 0 {
		opts.Config = config.Default()
	}
	var out strings.Builder
	s, err := New(strings.NewReader(traceText), &out, opts)
	require.NoError(t, err)

	runErr := s.Run()

	raw := strings.TrimSuffix(out.String(), "\n")
	var lines []string
	if raw != "" {
		for _, l := range strings.Split(raw, "\n") {
			lines = append(lines, strings.Join(strings.Fields(l), " "))
		}
	}
	t.Logf("command log:\n%s", out.String())
	return s, lines, runErr
}

// A single read to a cold bank: activate, then the read after tRCD.
func TestSingleReadColdBank(t *testing.T) {
	s, lines, err := runTrace(t, "0 0 0x000000000\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0 ACT 0 0 0",
		"48 RD 0 0 0",
	}, lines)
	// No PRE: the bank starts precharged. The queue drains once the read
	// burst completes.
	assert.Equal(t, uint64(104), s.Now())
}

// Two reads to the same open row: the second waits only tCCD_L.
func TestTwoReadsSameOpenRow(t *testing.T) {
	_, lines, err := runTrace(t, "0 0 0x000000000\n0 0 0x000000008\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0 ACT 0 0 0",
		"48 RD 0 0 0",
		"64 RD 0 0 1",
	}, lines)
}

// A row conflict forces precharge + activate between the accesses.
func TestRowConflict(t *testing.T) {
	_, lines, err := runTrace(t, "0 0 0x000000000\n0 0 0x000040000\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0 ACT 0 0 0",
		"48 RD 0 0 0",
		"104 PRE 0 0",  // max(48+tRTP, tRAS)
		"152 ACT 0 0 1", // +tRP
		"200 RD 0 0 0",  // +tRCD
	}, lines)
}

// Two banks in different groups proceed in parallel, spaced by tRRD_S and
// tCCD_S.
func TestCrossGroupParallelism(t *testing.T) {
	_, lines, err := runTrace(t, "0 0 0x000000000\n0 0 0x000000040\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0 ACT 0 0 0",
		"8 ACT 1 0 0",
		"48 RD 0 0 0",
		"56 RD 1 0 0",
	}, lines)
}

// Same-group requests: strict holds the younger bank's activate until the
// elder's read lands; loose slots it in at tRRD_L.
func TestStrictVersusLoose(t *testing.T) {
	trace := "0 0 0x000000000\n0 0 0x000000100\n" // bank 0 and bank 1, group 0

	_, loose, err := runTrace(t, trace, Options{Policy: sched.Loose})
	require.NoError(t, err)
	_, strict, err := runTrace(t, trace, Options{Policy: sched.Strict})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(loose), 2)
	assert.Equal(t, "12 ACT 0 1 0", loose[1], "loose: tRRD_L after the first activate")

	require.GreaterOrEqual(t, len(strict), 3)
	assert.Equal(t, "0 ACT 0 0 0", strict[0])
	assert.Equal(t, "48 RD 0 0 0", strict[1], "strict: the elder finishes first")
	assert.Equal(t, "50 ACT 0 1 0", strict[2])
}

// A backlog larger than the queue: ingest throttles at 16 entries and the
// simulation still drains everything.
func TestFullQueueThrottlesIngest(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("0 0 0x000000000\n")
	}
	_, lines, err := runTrace(t, sb.String(), Options{})
	require.NoError(t, err)

	// One activate opens the row; twenty reads follow. Total commands =
	// activates + precharges + one access per request.
	require.Len(t, lines, 21)
	assert.Equal(t, "0 ACT 0 0 0", lines[0])
	for _, l := range lines[1:] {
		assert.Contains(t, l, "RD 0 0 0")
	}
}

// Command issue cycles never decrease, across a mixed workload.
func TestIssueTimesMonotonic(t *testing.T) {
	trace := "0 0 0x000000000\n" +
		"0 1 0x000040100\n" +
		"4 2 0x000080040\n" +
		"10 0 0x0000000C0\n" +
		"10 1 0x000000300\n"
	_, lines, err := runTrace(t, trace, Options{Policy: sched.Optimized})
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	last := uint64(0)
	for _, l := range lines {
		at, err := strconv.ParseUint(strings.Fields(l)[0], 10, 64)
		require.NoError(t, err, "line %q", l)
		assert.GreaterOrEqual(t, at, last, "issue times are non-decreasing")
		last = at
	}
}

// Malformed lines are skipped; good ones still simulate.
func TestBadLinesSkipped(t *testing.T) {
	trace := "bogus line\n0 0 0x000000000\n1 7 0x0\n"
	_, lines, err := runTrace(t, trace, Options{})
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

// An arrival at the top of the cycle range overflows the clock: the run
// reports it and stops instead of wrapping.
func TestClockOverflow(t *testing.T) {
	_, _, err := runTrace(t, "18446744073709551615 0 0x000000000\n", Options{})
	assert.ErrorIs(t, err, ErrOverflow)
}

// Statistics: time in queue is recorded per kind on completion.
func TestStatsCollected(t *testing.T) {
	s, _, err := runTrace(t, "0 0 0x000000000\n0 0 0x000000008\n", Options{Stats: true})
	require.NoError(t, err)
	require.NotNil(t, s.Stats())
	assert.Equal(t, 2, s.Stats().Count())

	var rep strings.Builder
	require.NoError(t, s.Stats().Report(&rep))
	out := rep.String()
	assert.Contains(t, out, "--READS:")
	assert.Contains(t, out, "TOTALS")
	assert.NotContains(t, out, "--WRITES:")
}

// Verbose mode narrates the same run as begin/end events in time order.
func TestVerboseRun(t *testing.T) {
	var out strings.Builder
	s, err := New(strings.NewReader("0 0 0x000000000\n"), &out, Options{
		Verbose: true,
		Config:  config.Default(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Run())

	text := out.String()
	t.Logf("verbose log:\n%s", text)
	assert.Contains(t, text, "Added new request to queue")
	assert.Contains(t, text, "begun activating row 0")
	assert.Contains(t, text, "completed activating row 0")
	assert.Contains(t, text, "received read command")
	assert.Contains(t, text, "completed burst")
	assert.Contains(t, text, "Completed READ request")

	// Events appear in emission-time order.
	assert.Less(t, strings.Index(text, "begun activating"), strings.Index(text, "received read command"))
}

// A custom config flows through: a slower tRCD moves the read later.
func TestCustomTiming(t *testing.T) {
	cfg := config.Default()
	cfg.Timing.TRCD = 30

	_, lines, err := runTrace(t, "0 0 0x000000000\n", Options{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0 ACT 0 0 0",
		"60 RD 0 0 0",
	}, lines)
}
