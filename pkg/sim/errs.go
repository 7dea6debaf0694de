package sim

import "errors"

// ErrOverflow means the CPU-cycle clock would wrap. The simulation stops;
// statistics gathered so far remain valid.
var ErrOverflow = errors.New("sim: cycle counter overflow")
