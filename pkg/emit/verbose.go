package emit

import (
	"container/heap"
	"fmt"
	"io"
)

// burstLead is how many cycles before a data transfer completes that the
// burst itself begins on the data bus.
const burstLead = 8

// message is one buffered line, keyed by its absolute emission cycle.
// Messages due on the same cycle drain in insertion order.
type message struct {
	at   uint64
	seq  uint64
	text string
}

type messageHeap []message

func (h messageHeap) Len() int { return len(h) }
func (h messageHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h messageHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *messageHeap) Push(x any)        { *h = append(*h, x.(message)) }
func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	m := old[n-1]
	*h = old[:n-1]
	return m
}

// verbose buffers human-readable begin/end messages for every command and
// drains them in emission-time order.
type verbose struct {
	w    io.Writer
	msgs messageHeap
	seq  uint64
	err  error
}

func newVerbose(w io.Writer) *verbose {
	return &verbose{w: w}
}

func (v *verbose) push(at uint64, format string, args ...any) {
	heap.Push(&v.msgs, message{at: at, seq: v.seq, text: fmt.Sprintf(format, args...)})
	v.seq++
}

func (v *verbose) Precharge(now, done uint64, group, bank int, closedRow uint32) {
	v.push(now, "Group %d, Bank %d has closed row %d and begun precharging", group, bank, closedRow)
	v.push(now+done, "Group %d, Bank %d has completed precharging and is ready to activate a row", group, bank)
}

func (v *verbose) Activate(now, done uint64, group, bank int, row uint32) {
	v.push(now, "Group %d, Bank %d has begun activating row %d", group, bank, row)
	v.push(now+done, "Group %d, Bank %d has completed activating row %d", group, bank, row)
}

func (v *verbose) Read(now, done uint64, group, bank int, row uint32, col uint16) {
	v.push(now, "Group %d, Bank %d received read command to row %d, column %d", group, bank, row, col)
	if done > burstLead {
		v.push(now+done-burstLead, "Group %d, Bank %d has begun bursting data from row %d, column %d", group, bank, row, col)
	}
	v.push(now+done, "Group %d, Bank %d has completed burst from row %d, column %d", group, bank, row, col)
}

func (v *verbose) Write(now, done uint64, group, bank int, row uint32, col uint16) {
	v.push(now, "Group %d, Bank %d received write command to row %d, column %d", group, bank, row, col)
	if done > burstLead {
		v.push(now+done-burstLead, "Group %d, Bank %d has begun latching data and storing in row %d, column %d", group, bank, row, col)
	}
	v.push(now+done, "Group %d, Bank %d has completed writing to row %d, column %d", group, bank, row, col)
}

func (v *verbose) Note(now, delay uint64, format string, args ...any) {
	v.push(now+delay, format, args...)
}

func (v *verbose) Drain(now uint64) {
	for len(v.msgs) > 0 && v.msgs[0].at <= now {
		m := heap.Pop(&v.msgs).(message)
		if v.err == nil {
			_, v.err = fmt.Fprintf(v.w, "%d : %s\n", m.at, m.text)
		}
	}
}

func (v *verbose) NextAt() (uint64, bool) {
	if len(v.msgs) == 0 {
		return 0, false
	}
	return v.msgs[0].at, true
}

func (v *verbose) Err() error { return v.err }
