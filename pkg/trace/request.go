package trace

import (
	"fmt"

	"github.com/ewerd/memsim/pkg/dram"
)

// Kind is the CPU-side operation a trace line requests.
type Kind uint8

const (
	KindRead Kind = iota
	KindWrite
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "READ"
	case KindWrite:
		return "WRITE"
	case KindFetch:
		return "IFETCH"
	}
	return "ERROR"
}

// Access returns the DRAM column command that services the request: writes
// store, reads and instruction fetches burst out.
func (k Kind) Access() dram.Command {
	if k == KindWrite {
		return dram.Write
	}
	return dram.Read
}

// Request is one decoded trace line. The reader creates it, the scheduler
// mutates Next/Done as DRAM commands issue, and it leaves the system when
// Done and its last command's effect has completed.
type Request struct {
	Arrive uint64 // CPU cycle the reference reached the controller
	Kind   Kind
	Addr   uint64

	Group    int
	Bank     int
	Row      uint32
	UpperCol uint8
	LowerCol uint8
	ByteSel  uint8

	// Next is the DRAM command required for the request to make progress.
	// Once the column access has issued, Done is set and Next is ignored.
	Next dram.Command
	Done bool
}

// Column is the full column index, upper column bits above the three
// lower (burst-offset) bits.
func (r *Request) Column() uint16 {
	return uint16(r.UpperCol)<<3 | uint16(r.LowerCol)
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %#010x g%d b%d row %d col %d @%d",
		r.Kind, r.Addr, r.Group, r.Bank, r.Row, r.Column(), r.Arrive)
}

// Address bit fields: [2:0] byte select, [5:3] lower column, [7:6] bank
// group, [9:8] bank, [17:10] upper column, [32:18] row.
const (
	rowShift  = 18
	maxRow    = 1<<15 - 1
	upColMask = 0x3FC00
	bankMask  = 0x300
	groupMask = 0xC0
	loColMask = 0x38
	byteMask  = 0x7
)

// decode splits an address into its DIMM coordinates. Rows above the
// 15-bit geometry are rejected.
func decode(addr uint64) (group, bank int, row uint32, upper, lower, bsel uint8, err error) {
	r := addr >> rowShift
	if r > maxRow {
		return 0, 0, 0, 0, 0, 0, fmt.Errorf("%w: row %d for address %#x", ErrAddrRange, r, addr)
	}
	return int((addr & groupMask) >> 6),
		int((addr & bankMask) >> 8),
		uint32(r),
		uint8((addr & upColMask) >> 10),
		uint8((addr & loColMask) >> 3),
		uint8(addr & byteMask),
		nil
}
