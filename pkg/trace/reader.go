package trace

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Reader parses a memory trace one line at a time, holding a single parsed
// request until the simulation clock catches up to its arrival time.
//
// Lines have the form
//
//	<cpu_cycle_decimal> <op_code 0|1|2> <address_hex>
//
// Blank and malformed lines are reported and skipped. Once the input is
// exhausted the reader is terminally at EOF.
type Reader struct {
	sc   *bufio.Scanner
	next *Request
	line int
	eof  bool
}

// NewReader wraps an input stream. The first line is parsed eagerly so the
// arrival time of the next request is always known.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{sc: bufio.NewScanner(r)}
	rd.advance()
	return rd
}

// EOF reports whether the input is exhausted and no request is pending.
func (r *Reader) EOF() bool {
	return r.eof && r.next == nil
}

// PeekTime returns the arrival cycle of the parsed-but-unread request.
// The second return is false at EOF.
func (r *Reader) PeekTime() (uint64, bool) {
	if r.next == nil {
		return 0, false
	}
	return r.next.Arrive, true
}

// TakeIfReady hands over the pending request iff it has arrived by now,
// and parses ahead to the next one. It returns nil when the pending
// request is still in the future or the trace is exhausted.
func (r *Reader) TakeIfReady(now uint64) *Request {
	if r.next == nil || r.next.Arrive > now {
		return nil
	}
	req := r.next
	r.advance()
	return req
}

// advance scans forward to the next parseable line, skipping and reporting
// bad ones.
func (r *Reader) advance() {
	r.next = nil
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" {
			continue
		}
		req, err := ParseLine(text)
		if err != nil {
			slog.Warn("skipping trace line", "line", r.line, "err", err)
			continue
		}
		r.next = req
		return
	}
	r.eof = true
}

// ParseLine decodes a single trace line into a Request.
func ParseLine(text string) (*Request, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: %d fields in %q", ErrParse, len(fields), text)
	}
	arrive, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: cycle %q", ErrParse, fields[0])
	}
	op, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil || op > uint64(KindFetch) {
		return nil, fmt.Errorf("%w: op code %q", ErrParse, fields[1])
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "0x"), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: address %q", ErrParse, fields[2])
	}

	group, bank, row, upper, lower, bsel, err := decode(addr)
	if err != nil {
		return nil, err
	}

	kind := Kind(op)
	return &Request{
		Arrive:   arrive,
		Kind:     kind,
		Addr:     addr,
		Group:    group,
		Bank:     bank,
		Row:      row,
		UpperCol: upper,
		LowerCol: lower,
		ByteSel:  bsel,
		Next:     kind.Access(),
	}, nil
}
