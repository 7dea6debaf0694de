// Package stats accumulates per-request time-in-queue samples and renders
// the end-of-run report: min, max, mean and median per operation kind and
// over all requests.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/ewerd/memsim/pkg/trace"
)

// Collector keeps every completed request's time in queue, bucketed by
// operation kind.
type Collector struct {
	samples map[trace.Kind][]uint16
	total   int
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{samples: make(map[trace.Kind][]uint16)}
}

// Record adds one completed request.
func (c *Collector) Record(kind trace.Kind, tiq uint16) {
	c.samples[kind] = append(c.samples[kind], tiq)
	c.total++
}

// Count returns the number of recorded requests.
func (c *Collector) Count() int { return c.total }

// summary is the min/max/mean/median of one sample set.
type summary struct {
	min, max uint16
	mean     float64
	median   float64
}

func summarize(xs []uint16) summary {
	s := summary{min: xs[0], max: xs[0]}
	var sum float64
	for _, x := range xs {
		if x < s.min {
			s.min = x
		}
		if x > s.max {
			s.max = x
		}
		sum += float64(x)
	}
	s.mean = sum / float64(len(xs))

	sorted := make([]uint16, len(xs))
	copy(sorted, xs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.median = float64(sorted[mid])
	} else {
		s.median = (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
	}
	return s
}

const rule = "-------------------------------------------------"

// Report writes the statistics sections: one per kind with recorded
// samples, then the totals over every request.
func (c *Collector) Report(w io.Writer) error {
	if c.total == 0 {
		_, err := fmt.Fprintln(w, "No statistics to calculate.")
		return err
	}

	if _, err := fmt.Fprintln(w, "--------------------STATISTICS--------------------"); err != nil {
		return err
	}

	sections := []struct {
		name string
		kind trace.Kind
	}{
		{"--IFETCHES:", trace.KindFetch},
		{"--READS:", trace.KindRead},
		{"--WRITES:", trace.KindWrite},
	}
	var all []uint16
	for _, sec := range sections {
		xs := c.samples[sec.kind]
		all = append(all, xs...)
		if len(xs) == 0 {
			continue
		}
		if err := writeSection(w, sec.name, summarize(xs)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "----------------------TOTALS----------------------"); err != nil {
		return err
	}
	return writeSummary(w, summarize(all))
}

func writeSection(w io.Writer, name string, s summary) error {
	if _, err := fmt.Fprintln(w, name); err != nil {
		return err
	}
	return writeSummary(w, s)
}

func writeSummary(w io.Writer, s summary) error {
	_, err := fmt.Fprintf(w, "Min:%d\nMax:%d\nAverage:%.3f\nMedian:%.1f\n%s\n",
		s.min, s.max, s.mean, s.median, rule)
	return err
}
