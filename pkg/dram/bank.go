package dram

// BankState is the two-state bank machine: PRECHARGE moves ACTIVE to
// PRECHARGED, ACTIVATE moves PRECHARGED to ACTIVE, reads and writes are
// self-loops on ACTIVE.
type BankState uint8

const (
	Precharged BankState = iota
	Active
)

func (s BankState) String() string {
	if s == Active {
		return "active"
	}
	return "precharged"
}

// bank tracks one bank's open row and the earliest CPU cycle at which each
// command becomes permissible. All timestamps are absolute and only move
// forward.
type bank struct {
	state   BankState
	row     uint32
	maxRows uint32

	nextPrecharge uint64
	nextActivate  uint64
	nextRead      uint64
	nextWrite     uint64
}

func newBank(rows uint32) bank {
	return bank{maxRows: rows}
}

// raise advances an absolute timestamp, never retreating it.
func raise(ts *uint64, to uint64) {
	if to > *ts {
		*ts = to
	}
}

func (b *bank) canActivate(now uint64) Result {
	if b.state != Precharged {
		return illegal
	}
	return after(b.nextActivate, now)
}

func (b *bank) activate(row uint32, now uint64, t *Timing) Result {
	if row >= b.maxRows {
		return badArgs
	}
	if r := b.canActivate(now); r.Verdict != Ready {
		return r
	}
	b.state = Active
	b.row = row
	raise(&b.nextRead, now+t.TRCD)
	raise(&b.nextWrite, now+t.TRCD)
	raise(&b.nextPrecharge, now+t.TRAS)
	return ready(t.TRCD)
}

func (b *bank) canPrecharge(now uint64) Result {
	if b.state != Active {
		return illegal
	}
	return after(b.nextPrecharge, now)
}

func (b *bank) precharge(now uint64, t *Timing) Result {
	if r := b.canPrecharge(now); r.Verdict != Ready {
		return r
	}
	b.state = Precharged
	raise(&b.nextActivate, now+t.TRP)
	return ready(t.TRP)
}

func (b *bank) canRead(row uint32, now uint64) Result {
	if row >= b.maxRows {
		return badArgs
	}
	if b.state != Active || b.row != row {
		return illegal
	}
	return after(b.nextRead, now)
}

func (b *bank) read(row uint32, now uint64, t *Timing) Result {
	if r := b.canRead(row, now); r.Verdict != Ready {
		return r
	}
	raise(&b.nextWrite, now+t.readToWrite())
	raise(&b.nextPrecharge, now+t.TRTP)
	return ready(t.TCAS + t.TBurst)
}

func (b *bank) canWrite(row uint32, now uint64) Result {
	if row >= b.maxRows {
		return badArgs
	}
	if b.state != Active || b.row != row {
		return illegal
	}
	return after(b.nextWrite, now)
}

func (b *bank) write(row uint32, now uint64, t *Timing) Result {
	if r := b.canWrite(row, now); r.Verdict != Ready {
		return r
	}
	raise(&b.nextPrecharge, now+t.writeRecovery())
	return ready(t.CWL + t.TBurst)
}

// bankRecovery returns the minimum issue-to-issue spacing a bank imposes
// between two commands addressed to it.
func bankRecovery(first, second Command, t *Timing) uint64 {
	switch first {
	case Precharge:
		switch second {
		case Activate:
			return t.TRP
		case Read, Write:
			return t.TRP + t.TRCD
		case Precharge:
			return t.TRP + t.TRAS
		}
	case Activate:
		switch second {
		case Precharge:
			return t.TRAS
		case Activate:
			return t.TRAS + t.TRP
		case Read, Write:
			return t.TRCD
		}
	case Read:
		switch second {
		case Precharge:
			return t.TRTP
		case Activate:
			return t.TRTP + t.TRP
		case Read:
			return t.TCCDL
		case Write:
			return t.readToWrite()
		}
	case Write:
		switch second {
		case Precharge:
			return t.writeRecovery()
		case Activate:
			return t.writeRecovery() + t.TRP
		case Read:
			return t.writeToRead(t.TWTRL)
		case Write:
			return t.TCCDL
		}
	}
	return 0
}
