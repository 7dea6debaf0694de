package emit

import (
	"fmt"
	"io"
)

// terse prints one line per DRAM command as it issues: the CPU cycle
// right-aligned in a 26-character field, a tab, the mnemonic, then the
// coordinates in uppercase hex.
type terse struct {
	w   io.Writer
	err error
}

func newTerse(w io.Writer) *terse {
	return &terse{w: w}
}

func (t *terse) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *terse) Precharge(now, _ uint64, group, bank int, _ uint32) {
	t.printf("%26d\tPRE %X %X\n", now, group, bank)
}

func (t *terse) Activate(now, _ uint64, group, bank int, row uint32) {
	t.printf("%26d\tACT %X %X %X\n", now, group, bank, row)
}

func (t *terse) Read(now, _ uint64, group, bank int, _ uint32, col uint16) {
	t.printf("%26d\tRD  %X %X %X\n", now, group, bank, col)
}

func (t *terse) Write(now, _ uint64, group, bank int, _ uint32, col uint16) {
	t.printf("%26d\tWR  %X %X %X\n", now, group, bank, col)
}

func (t *terse) Note(_, _ uint64, _ string, _ ...any) {}

func (t *terse) Drain(uint64) {}

func (t *terse) NextAt() (uint64, bool) { return 0, false }

func (t *terse) Err() error { return t.err }
