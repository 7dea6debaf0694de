// Package dram models a single DDR4 DIMM as a three-level timing state
// machine: the DIMM enforces cross-group bus spacing, each bank group
// enforces same-group spacing, and each bank tracks its open row and the
// earliest cycle at which every command becomes permissible.
//
// The surface is a uniform pair per DRAM command C:
//
//	CanC(target, now) Result   queries legality and the remaining wait
//	C(target, ..., now) Result issues the command and updates all levels
//
// A query walks DIMM → group → bank and combines the levels: any Illegal
// wins, otherwise the wait is the maximum of the three. An issue mutates
// the next-command timestamps of all three levels at once; timestamps only
// ever move forward.
//
// All durations are CPU cycles. Timing parameters are supplied in
// memory-clock cycles and scaled by ScaleFactor (the CPU runs at twice the
// memory clock) when a Dimm is constructed.
//
// No data moves: addresses select rows and columns, byte contents are never
// stored. Refresh, multiple ranks and power are out of scope.
package dram
