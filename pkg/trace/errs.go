package trace

import "errors"

var (
	// ErrParse indicates a trace line with the wrong number of fields or a
	// field that is not a number.
	ErrParse = errors.New("trace: malformed line")

	// ErrAddrRange indicates an address whose row field exceeds the DIMM
	// geometry.
	ErrAddrRange = errors.New("trace: address out of range")
)
