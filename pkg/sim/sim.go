// Package sim owns a complete simulation: the trace reader, the pending
// queue, the DRAM timing core, the scheduler and the emitter, advanced by
// a single-threaded discrete-event loop over a monotonic CPU-cycle clock.
package sim

import (
	"fmt"
	"io"
	"math"

	"github.com/ewerd/memsim/pkg/config"
	"github.com/ewerd/memsim/pkg/dram"
	"github.com/ewerd/memsim/pkg/emit"
	"github.com/ewerd/memsim/pkg/queue"
	"github.com/ewerd/memsim/pkg/sched"
	"github.com/ewerd/memsim/pkg/stats"
	"github.com/ewerd/memsim/pkg/trace"
)

// Options selects the scheduling policy and output shape of a run.
type Options struct {
	Policy  sched.Policy
	Stats   bool
	Verbose bool
	Config  config.Config
}

// Simulator packs all simulation state into one value so tests can run
// many simulations side by side.
type Simulator struct {
	now    uint64
	reader *trace.Reader
	q      *queue.Queue
	d      *dram.Dimm
	sch    *sched.Scheduler
	em     emit.Emitter
	st     *stats.Collector
}

// New builds a simulator reading the trace from in and writing the command
// log (or verbose event log) to out.
func New(in io.Reader, out io.Writer, opts Options) (*Simulator, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := dram.New(cfg.Geometry.Groups, cfg.Geometry.BanksPerGroup, cfg.Geometry.RowsPerBank, cfg.Timing)
	if err != nil {
		return nil, err
	}

	var st *stats.Collector
	if opts.Stats {
		st = stats.New()
	}
	q := queue.New(cfg.QueueCapacity)
	em := emit.New(out, opts.Verbose)
	thr := sched.Thresholds{
		Fetch: cfg.Thresholds.Fetch,
		Read:  cfg.Thresholds.Read,
		Write: cfg.Thresholds.Write,
	}
	return &Simulator{
		reader: trace.NewReader(in),
		q:      q,
		d:      d,
		sch:    sched.New(d, q, em, st, opts.Policy, thr),
		em:     em,
		st:     st,
	}, nil
}

// Now returns the current CPU cycle.
func (s *Simulator) Now() uint64 { return s.now }

// Stats returns the collector, nil when statistics were not requested.
func (s *Simulator) Stats() *stats.Collector { return s.st }

// Run drives the event loop until the trace is exhausted and the queue
// drains, or the clock would overflow.
func (s *Simulator) Run() error {
	for {
		s.refill()

		if s.now%2 == 0 {
			if err := s.sch.Tick(s.now); err != nil {
				return err
			}
		}
		s.em.Drain(s.now)
		if err := s.em.Err(); err != nil {
			return fmt.Errorf("sim: write output: %w", err)
		}

		if s.q.Empty() && s.reader.EOF() {
			break
		}

		step := s.timeToNextEvent()
		if s.now+step < s.now {
			s.em.Drain(math.MaxUint64)
			return fmt.Errorf("%w at cycle %d", ErrOverflow, s.now)
		}
		s.now += step
		s.q.Age(min(step, queue.MaxAge))
	}
	s.em.Drain(math.MaxUint64)
	if err := s.em.Err(); err != nil {
		return fmt.Errorf("sim: write output: %w", err)
	}
	return nil
}

// refill admits at most one arrived request per loop pass; a full queue
// leaves it with the reader, throttling ingest.
func (s *Simulator) refill() {
	if s.q.Full() {
		return
	}
	req := s.reader.TakeIfReady(s.now)
	if req == nil {
		return
	}
	_ = s.q.Push(req)
	s.em.Note(s.now, 0, "Added new request to queue: cycle %d %s address %#010x group %d bank %d row %d column %d",
		req.Arrive, req.Kind, req.Addr, req.Group, req.Bank, req.Row, req.Column())
}

// timeToNextEvent returns how far the clock jumps: to the first of the
// next request age expiring, the next buffered output message, or the
// next trace arrival, and at least one cycle. A trace backlog forces
// single-cycle steps so arrivals stay ordered.
func (s *Simulator) timeToNextEvent() uint64 {
	step := uint64(math.MaxUint64)

	if !s.q.Empty() {
		for i := 1; i <= s.q.Len(); i++ {
			if a := uint64(s.q.AgeOf(i)); a < step {
				step = a
			}
		}
		if step < 1 {
			step = 1
		}
	}

	if at, ok := s.em.NextAt(); ok && at > s.now {
		if d := at - s.now; d < step {
			step = d
		}
	}

	if !s.reader.EOF() && !s.q.Full() {
		if arrive, ok := s.reader.PeekTime(); ok {
			if arrive <= s.now {
				step = 1
			} else if d := arrive - s.now; d < step {
				step = d
			}
		}
	}
	return step
}
