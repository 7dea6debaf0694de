// tracegen writes synthetic memory traces for exercising the simulator:
// one or more requests per time slot, stepped to an end time, with a
// selectable address pattern.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
)

type opts struct {
	step    uint64
	mult    int
	end     uint64
	pattern string
	seed    int64
	output  string
}

const (
	rowShift = 18
	maxRow   = 1 << 15
)

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "tracegen",
		Short: "Write a synthetic memory trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().Uint64Var(&o.step, "step", 1, "time step between request slots")
	root.Flags().IntVar(&o.mult, "mult", 1, "requests per time slot")
	root.Flags().Uint64Var(&o.end, "end", 1, "last slot time")
	root.Flags().StringVar(&o.pattern, "pattern", "alternate",
		"address pattern: alternate (two rows, one bank), rows (successive rows), random")
	root.Flags().Int64Var(&o.seed, "seed", 1, "seed for the random pattern")
	root.Flags().StringVarP(&o.output, "output", "o", "", "trace file (default stdout)")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	if o.step == 0 || o.mult < 1 {
		return fmt.Errorf("step and mult must be positive")
	}

	out := os.Stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	next, err := addresser(o)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for t := uint64(0); t <= o.end; t += o.step {
		for i := 0; i < o.mult; i++ {
			op, addr := next(t)
			fmt.Fprintf(w, "%d %d 0x%09X\n", t, op, addr)
		}
		if o.end-t < o.step {
			break
		}
	}
	return w.Flush()
}

// addresser returns a generator producing (op, address) per request.
func addresser(o opts) (func(t uint64) (int, uint64), error) {
	switch o.pattern {
	case "alternate":
		// Ping-pong between two rows of one bank: every other request
		// forces a row conflict.
		var odd bool
		return func(uint64) (int, uint64) {
			odd = !odd
			if odd {
				return 0, 0x000000000
			}
			return 0, 0x000080000
		}, nil
	case "rows":
		// March through successive rows of bank 0.
		var count uint64
		return func(uint64) (int, uint64) {
			addr := count << rowShift
			count = (count + 1) % maxRow
			return 0, addr
		}, nil
	case "random":
		rng := rand.New(rand.NewSource(o.seed))
		return func(uint64) (int, uint64) {
			return rng.Intn(3), rng.Uint64() & (1<<33 - 1)
		}, nil
	default:
		return nil, fmt.Errorf("unknown pattern %q", o.pattern)
	}
}
