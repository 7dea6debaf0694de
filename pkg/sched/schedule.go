package sched

import "github.com/ewerd/memsim/pkg/dram"

// reservation records one future command claim on a resource: what will
// issue and how many cycles from now it fires.
type reservation struct {
	cmd dram.Command
	at  uint64
}

// levelSlot pairs a reservation slot with the recovery level that governs
// it.
type levelSlot struct {
	slot  **reservation
	level dram.Level
}

// schedule is the per-tick scratch record of reserved bus, group and bank
// slots. It is rebuilt at the top of every scheduling pass and guarantees
// that a lower-priority request never pushes a higher-priority request's
// reserved command later.
type schedule struct {
	d     *dram.Dimm
	dimm  *reservation
	group []*reservation
	bank  [][]*reservation
}

func newSchedule(d *dram.Dimm) *schedule {
	s := &schedule{
		d:     d,
		group: make([]*reservation, d.Groups()),
		bank:  make([][]*reservation, d.Groups()),
	}
	for g := range s.bank {
		s.bank[g] = make([]*reservation, d.BanksPerGroup())
	}
	return s
}

// levels yields the reservation slots constraining a command at
// (group, bank), innermost first.
func (s *schedule) levels(group, bank int) [3]levelSlot {
	return [3]levelSlot{
		{&s.bank[group][bank], dram.LevelBank},
		{&s.group[group], dram.LevelGroup},
		{&s.dimm, dram.LevelDimm},
	}
}

// earliest returns the first cycle offset at which cmd can issue to
// (group, bank) without delaying any reserved command, given that the
// DRAM timing alone allows it after wait cycles.
func (s *schedule) earliest(cmd dram.Command, group, bank int, wait uint64) uint64 {
	tt := wait
	for _, l := range s.levels(group, bank) {
		r := *l.slot
		if r == nil {
			continue
		}
		// Issuing at tt must leave the reservation intact; otherwise the
		// command goes after the reservation plus its recovery.
		if tt+s.d.Recovery(l.level, cmd, r.cmd) > r.at {
			if behind := r.at + s.d.Recovery(l.level, r.cmd, cmd); behind > tt {
				tt = behind
			}
		}
	}
	return tt
}

// reserve claims (cmd, at) on every level for the request, innermost
// first. A level already holding an earlier or conflicting claim refuses;
// reserve then reports the blocking offset and claims nothing further.
func (s *schedule) reserve(cmd dram.Command, group, bank int, at uint64) (blockedAt uint64, ok bool) {
	for _, l := range s.levels(group, bank) {
		r := *l.slot
		switch {
		case r == nil:
			*l.slot = &reservation{cmd: cmd, at: at}
		case at <= r.at && at+s.d.Recovery(l.level, cmd, r.cmd) <= r.at:
			// Earlier and provably out of the way: this becomes the
			// slot's front reservation.
			*l.slot = &reservation{cmd: cmd, at: at}
		default:
			return r.at, false
		}
	}
	return 0, true
}
