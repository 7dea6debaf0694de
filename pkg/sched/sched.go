// Package sched advances pending memory requests by one DRAM command at a
// time. On every even CPU cycle it re-derives each queued request's next
// required command from the DRAM core's state, retires completed requests,
// and lets the selected policy issue at most one command to the bus.
package sched

import (
	"fmt"
	"sort"

	"github.com/ewerd/memsim/pkg/dram"
	"github.com/ewerd/memsim/pkg/emit"
	"github.com/ewerd/memsim/pkg/queue"
	"github.com/ewerd/memsim/pkg/stats"
	"github.com/ewerd/memsim/pkg/trace"
)

// Thresholds are the optimized policy's per-kind starvation limits: a
// request whose time in queue exceeds its kind's limit is serviced before
// any locality preference.
type Thresholds struct {
	Fetch uint16
	Read  uint16
	Write uint16
}

// DefaultThresholds matches the modeled controller.
func DefaultThresholds() Thresholds {
	return Thresholds{Fetch: 500, Read: 1000, Write: 2000}
}

// For returns the threshold for a request kind.
func (t Thresholds) For(k trace.Kind) uint16 {
	switch k {
	case trace.KindFetch:
		return t.Fetch
	case trace.KindWrite:
		return t.Write
	default:
		return t.Read
	}
}

// Scheduler owns the policy state. The queue and the DRAM core are shared
// with the simulation driver; the scheduler is their only mutator during a
// tick.
type Scheduler struct {
	d   *dram.Dimm
	q   *queue.Queue
	em  emit.Emitter
	st  *stats.Collector // nil when statistics are disabled
	pol Policy
	thr Thresholds
}

// New wires a scheduler. st may be nil.
func New(d *dram.Dimm, q *queue.Queue, em emit.Emitter, st *stats.Collector, pol Policy, thr Thresholds) *Scheduler {
	return &Scheduler{d: d, q: q, em: em, st: st, pol: pol, thr: thr}
}

// Tick runs one bus-eligible cycle: refresh every request's next command
// and age, retire finished requests, then let the policy issue at most one
// DRAM command.
func (s *Scheduler) Tick(now uint64) error {
	if err := s.scan(now); err != nil {
		return err
	}
	if s.q.Empty() {
		return nil
	}
	switch s.pol {
	case Strict:
		return s.tickStrict(now)
	case Optimized:
		return s.tickOptimized(now)
	default:
		return s.tickLoose(now)
	}
}

// scan retires requests whose final command has completed, then re-decodes
// every remaining request's next command and wait.
func (s *Scheduler) scan(now uint64) error {
	for i := 1; i <= s.q.Len(); i++ {
		req := s.q.Peek(i)
		if !req.Done || s.q.AgeOf(i) != 0 {
			continue
		}
		tiq := s.q.TIQ(i)
		s.q.Remove(i)
		i--
		if s.st != nil {
			s.st.Record(req.Kind, tiq)
		}
		s.em.Note(now, 0, "Completed %s request from cycle %d to group %d, bank %d, row %d",
			req.Kind, req.Arrive, req.Group, req.Bank, req.Row)
	}

	for i := 1; i <= s.q.Len(); i++ {
		req := s.q.Peek(i)
		if req.Done {
			continue
		}
		wait, err := s.decode(req, now)
		if err != nil {
			return err
		}
		s.q.SetAge(i, wait)
	}
	return nil
}

// decode fixes a request's next DRAM command: the first of access,
// activate, precharge that the bank's state admits. The returned wait is
// the cycles until that command's timing is satisfied.
func (s *Scheduler) decode(req *trace.Request, now uint64) (uint64, error) {
	res := s.can(req.Kind.Access(), req, now)
	if res.Legal() {
		req.Next = req.Kind.Access()
		return res.Cycles, nil
	}
	if res.Verdict == dram.Illegal {
		res = s.d.CanActivate(req.Group, req.Bank, now)
		if res.Legal() {
			req.Next = dram.Activate
			return res.Cycles, nil
		}
	}
	if res.Verdict == dram.Illegal {
		res = s.d.CanPrecharge(req.Group, req.Bank, now)
		if res.Legal() {
			req.Next = dram.Precharge
			return res.Cycles, nil
		}
	}
	if res.Verdict == dram.BadArgs {
		return 0, fmt.Errorf("%w: %s", ErrBadArgs, req)
	}
	return 0, fmt.Errorf("%w: no admissible command for %s", ErrIllegal, req)
}

// can queries the DRAM core for one specific command on the request's
// coordinates.
func (s *Scheduler) can(cmd dram.Command, req *trace.Request, now uint64) dram.Result {
	switch cmd {
	case dram.Read:
		return s.d.CanRead(req.Group, req.Bank, req.Row, now)
	case dram.Write:
		return s.d.CanWrite(req.Group, req.Bank, req.Row, now)
	case dram.Activate:
		return s.d.CanActivate(req.Group, req.Bank, now)
	default:
		return s.d.CanPrecharge(req.Group, req.Bank, now)
	}
}

// issue sends the request's next command to the DRAM core, logs it, and
// advances the request's command sequence. It returns the command's
// completion time, which becomes the request's age.
func (s *Scheduler) issue(req *trace.Request, now uint64) (uint64, error) {
	var res dram.Result
	switch req.Next {
	case dram.Precharge:
		closed, _ := s.d.OpenRow(req.Group, req.Bank)
		res = s.d.Precharge(req.Group, req.Bank, now)
		if res.Verdict == dram.Ready {
			s.em.Precharge(now, res.Cycles, req.Group, req.Bank, closed)
			req.Next = dram.Activate
		}
	case dram.Activate:
		res = s.d.Activate(req.Group, req.Bank, req.Row, now)
		if res.Verdict == dram.Ready {
			s.em.Activate(now, res.Cycles, req.Group, req.Bank, req.Row)
			req.Next = req.Kind.Access()
		}
	case dram.Read:
		res = s.d.Read(req.Group, req.Bank, req.Row, now)
		if res.Verdict == dram.Ready {
			s.em.Read(now, res.Cycles, req.Group, req.Bank, req.Row, req.Column())
			req.Done = true
		}
	case dram.Write:
		res = s.d.Write(req.Group, req.Bank, req.Row, now)
		if res.Verdict == dram.Ready {
			s.em.Write(now, res.Cycles, req.Group, req.Bank, req.Row, req.Column())
			req.Done = true
		}
	}
	switch res.Verdict {
	case dram.Ready:
		return res.Cycles, nil
	case dram.BadArgs:
		return 0, fmt.Errorf("%w: %s", ErrBadArgs, req)
	default:
		return 0, fmt.Errorf("%w: %s %s at cycle %d (%s)", ErrIllegal, req.Next, req, now, res.Verdict)
	}
}

// tickStrict scans oldest first and issues the first ready request whose
// bank group no blocked older request has claimed. Every request passed
// over fences its group off for younger ones.
func (s *Scheduler) tickStrict(now uint64) error {
	touched := make([]bool, s.d.Groups())
	for i := 1; i <= s.q.Len(); i++ {
		req := s.q.Peek(i)
		if req.Done {
			continue
		}
		if !touched[req.Group] && s.q.AgeOf(i) == 0 {
			done, err := s.issue(req, now)
			if err != nil {
				return err
			}
			s.q.SetAge(i, done)
			return nil
		}
		touched[req.Group] = true
	}
	return nil
}

// tickLoose scans oldest first with a reservation schedule: each blocked
// request claims its future slot, and a younger request issues only when
// its command provably delays no claim.
func (s *Scheduler) tickLoose(now uint64) error {
	sch := newSchedule(s.d)
	for i := 1; i <= s.q.Len(); i++ {
		req := s.q.Peek(i)
		if req.Done {
			continue
		}
		issued, err := s.processOne(sch, i, req, now)
		if err != nil || issued {
			return err
		}
	}
	return nil
}

// processOne is the shared loose/optimized per-request step: compute the
// earliest non-delaying issue offset for the request's next command;
// issue at zero, otherwise reserve the slot and park the request.
func (s *Scheduler) processOne(sch *schedule, i int, req *trace.Request, now uint64) (bool, error) {
	res := s.can(req.Next, req, now)
	if !res.Legal() {
		if res.Verdict == dram.BadArgs {
			return false, fmt.Errorf("%w: %s", ErrBadArgs, req)
		}
		return false, fmt.Errorf("%w: stale decode for %s", ErrIllegal, req)
	}

	tt := sch.earliest(req.Next, req.Group, req.Bank, res.Cycles)
	if tt == 0 {
		done, err := s.issue(req, now)
		if err != nil {
			return false, err
		}
		s.q.SetAge(i, done)
		return true, nil
	}

	if blockedAt, ok := sch.reserve(req.Next, req.Group, req.Bank, tt); !ok {
		// Could not claim a slot without delaying a better one: retry on
		// the next bus-eligible cycle after the blocking claim fires.
		s.q.SetAge(i, blockedAt+dram.ScaleFactor)
		return false, nil
	}
	s.q.SetAge(i, tt)
	return false, nil
}

// tickOptimized walks requests in starvation-then-locality priority order
// and runs the loose per-request step on each until one issues.
func (s *Scheduler) tickOptimized(now uint64) error {
	sch := newSchedule(s.d)
	for _, i := range s.priorityOrder() {
		req := s.q.Peek(i)
		issued, err := s.processOne(sch, i, req, now)
		if err != nil || issued {
			return err
		}
	}
	return nil
}

// priorityOrder ranks the queue for the optimized policy:
//
//  1. requests past their kind's time-in-queue threshold, most overdue
//     first;
//  2. instruction fetches, reads, then writes whose row is already open,
//     each oldest first;
//  3. instruction fetches, reads, then writes, each oldest first.
//
// A touched bitmap keeps every index to a single visit.
func (s *Scheduler) priorityOrder() []int {
	n := s.q.Len()
	touched := make([]bool, n+1)
	order := make([]int, 0, n)
	add := func(i int) {
		if !touched[i] {
			touched[i] = true
			order = append(order, i)
		}
	}

	type overdue struct {
		index int
		by    uint64
	}
	var late []overdue
	for i := 1; i <= n; i++ {
		req := s.q.Peek(i)
		if req.Done {
			touched[i] = true
			continue
		}
		if limit := s.thr.For(req.Kind); s.q.TIQ(i) > limit {
			late = append(late, overdue{index: i, by: uint64(s.q.TIQ(i)) - uint64(limit)})
		}
	}
	sort.SliceStable(late, func(a, b int) bool { return late[a].by > late[b].by })
	for _, o := range late {
		add(o.index)
	}

	kinds := [...]trace.Kind{trace.KindFetch, trace.KindRead, trace.KindWrite}
	for _, k := range kinds {
		for i := 1; i <= n; i++ {
			req := s.q.Peek(i)
			if req.Kind != k {
				continue
			}
			if row, open := s.d.OpenRow(req.Group, req.Bank); open && row == req.Row {
				add(i)
			}
		}
	}
	for _, k := range kinds {
		for i := 1; i <= n; i++ {
			if s.q.Peek(i).Kind == k {
				add(i)
			}
		}
	}
	return order
}
