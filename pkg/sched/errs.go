package sched

import "errors"

var (
	// ErrIllegal means the DRAM core rejected a command the decoder
	// believed legal; the timing state machine and the decoder disagree,
	// which is a bug that must surface.
	ErrIllegal = errors.New("sched: illegal command issued")

	// ErrBadArgs means a request carried out-of-range coordinates into
	// the DRAM core.
	ErrBadArgs = errors.New("sched: bad request coordinates")
)
