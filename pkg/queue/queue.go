// Package queue holds the controller's pending memory requests in arrival
// order. Each entry carries two saturating counters alongside its request:
// an 8-bit age (CPU cycles until the request's next scheduling
// opportunity, 0 meaning ready now) and a 16-bit time-in-queue.
//
// Indices are 1-based, front of the queue (oldest request) first. Index
// misuse is a programmer error and panics.
package queue

import (
	"fmt"
	"math"

	"github.com/ewerd/memsim/pkg/trace"
)

// MaxAge is the saturation bound of a request's age counter. Age is a
// short-horizon relative counter, not an absolute time.
const MaxAge = math.MaxUint8

// MaxTIQ is the saturation bound of the time-in-queue counter.
const MaxTIQ = math.MaxUint16

type entry struct {
	req *trace.Request
	age uint8
	tiq uint16
}

// Queue is a bounded FIFO of pending requests.
type Queue struct {
	entries []entry
	cap     int
}

// New creates a queue bounded at capacity requests.
func New(capacity int) *Queue {
	return &Queue{entries: make([]entry, 0, capacity), cap: capacity}
}

// Push appends a request with age 0 and a fresh time-in-queue.
func (q *Queue) Push(req *trace.Request) error {
	if q.Full() {
		return ErrFull
	}
	q.entries = append(q.entries, entry{req: req})
	return nil
}

// Peek borrows the request at the 1-based index.
func (q *Queue) Peek(i int) *trace.Request {
	return q.entries[q.check(i)].req
}

// Remove takes the request at the 1-based index out of the queue; later
// entries shift up.
func (q *Queue) Remove(i int) *trace.Request {
	n := q.check(i)
	req := q.entries[n].req
	q.entries = append(q.entries[:n], q.entries[n+1:]...)
	return req
}

// Age advances every entry by delta cycles: ages count down saturating at
// zero, time-in-queue counts up saturating at MaxTIQ.
func (q *Queue) Age(delta uint64) {
	for i := range q.entries {
		e := &q.entries[i]
		if uint64(e.age) > delta {
			e.age -= uint8(delta)
		} else {
			e.age = 0
		}
		if tiq := uint64(e.tiq) + delta; tiq < MaxTIQ {
			e.tiq = uint16(tiq)
		} else {
			e.tiq = MaxTIQ
		}
	}
}

// SetAge sets an entry's age, clamped to the 8-bit range.
func (q *Queue) SetAge(i int, age uint64) {
	n := q.check(i)
	if age > MaxAge {
		age = MaxAge
	}
	q.entries[n].age = uint8(age)
}

// AgeOf returns the entry's remaining age.
func (q *Queue) AgeOf(i int) uint8 {
	return q.entries[q.check(i)].age
}

// TIQ returns the entry's time in queue.
func (q *Queue) TIQ(i int) uint16 {
	return q.entries[q.check(i)].tiq
}

// Len returns the number of queued requests.
func (q *Queue) Len() int { return len(q.entries) }

// Empty reports whether no requests are queued.
func (q *Queue) Empty() bool { return len(q.entries) == 0 }

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool { return len(q.entries) >= q.cap }

func (q *Queue) check(i int) int {
	if i < 1 || i > len(q.entries) {
		panic(fmt.Sprintf("queue: index %d out of range 1..%d", i, len(q.entries)))
	}
	return i - 1
}
