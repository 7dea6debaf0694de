package dram

// bankGroup owns its banks and the same-group spacing constraints. A group
// query combines the addressed bank's answer with the group's own
// next-command timestamps; a group issue updates both.
type bankGroup struct {
	banks []bank

	nextActivate uint64
	nextRead     uint64
	nextWrite    uint64
}

func newGroup(banks int, rows uint32) bankGroup {
	g := bankGroup{banks: make([]bank, banks)}
	for i := range g.banks {
		g.banks[i] = newBank(rows)
	}
	return g
}

func (g *bankGroup) canActivate(bank int, now uint64) Result {
	return merge(g.banks[bank].canActivate(now), after(g.nextActivate, now))
}

func (g *bankGroup) activate(bank int, row uint32, now uint64, t *Timing) Result {
	if now < g.nextActivate {
		return waiting(g.nextActivate - now)
	}
	r := g.banks[bank].activate(row, now, t)
	if r.Verdict == Ready {
		raise(&g.nextActivate, now+t.TRRDL)
	}
	return r
}

func (g *bankGroup) canPrecharge(bank int, now uint64) Result {
	// Precharge is a bank-local affair; the group imposes no spacing.
	return g.banks[bank].canPrecharge(now)
}

func (g *bankGroup) precharge(bank int, now uint64, t *Timing) Result {
	return g.banks[bank].precharge(now, t)
}

func (g *bankGroup) canRead(bank int, row uint32, now uint64) Result {
	return merge(g.banks[bank].canRead(row, now), after(g.nextRead, now))
}

func (g *bankGroup) read(bank int, row uint32, now uint64, t *Timing) Result {
	if now < g.nextRead {
		return waiting(g.nextRead - now)
	}
	r := g.banks[bank].read(row, now, t)
	if r.Verdict == Ready {
		raise(&g.nextRead, now+t.TCCDL)
		raise(&g.nextWrite, now+t.TCCDL)
	}
	return r
}

func (g *bankGroup) canWrite(bank int, row uint32, now uint64) Result {
	return merge(g.banks[bank].canWrite(row, now), after(g.nextWrite, now))
}

func (g *bankGroup) write(bank int, row uint32, now uint64, t *Timing) Result {
	if now < g.nextWrite {
		return waiting(g.nextWrite - now)
	}
	r := g.banks[bank].write(row, now, t)
	if r.Verdict == Ready {
		raise(&g.nextWrite, now+t.TCCDL)
		raise(&g.nextRead, now+t.writeToRead(t.TWTRL))
	}
	return r
}

// groupRecovery returns the minimum issue-to-issue spacing the group level
// imposes between two commands landing anywhere in the group.
func groupRecovery(first, second Command, t *Timing) uint64 {
	switch first {
	case Activate:
		if second == Activate {
			return t.TRRDL
		}
	case Read:
		if second == Read || second == Write {
			return t.TCCDL
		}
	case Write:
		switch second {
		case Write:
			return t.TCCDL
		case Read:
			return t.writeToRead(t.TWTRL)
		}
	}
	return 0
}
