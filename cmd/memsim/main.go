package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewerd/memsim/pkg/config"
	"github.com/ewerd/memsim/pkg/sched"
	"github.com/ewerd/memsim/pkg/sim"
)

type opts struct {
	output     string
	strict     bool
	optimized  bool
	stats      bool
	verbose    bool
	configPath string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "memsim TRACE",
		Short: "Trace-driven DDR4 memory controller simulator",
		Long: `memsim replays a trace of CPU memory references against a single DDR4
DIMM, scheduling PRECHARGE/ACTIVATE/READ/WRITE commands that honor the full
DRAM timing matrix, and logs every command with its issue cycle.

The trace has one reference per line:

  <cpu_cycle_decimal> <op_code 0|1|2> <address_hex>

with op codes 0=read, 1=write, 2=instruction fetch. Malformed lines are
reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, args[0])
		},
	}

	root.Flags().StringVarP(&o.output, "output", "o", "", "write the command log to a .txt file instead of stdout")
	root.Flags().Lookup("output").NoOptDefVal = "output.txt"
	root.Flags().BoolVar(&o.strict, "strict", false, "strict in-order scheduling")
	root.Flags().BoolVar(&o.optimized, "opt", false, "optimized scheduling (starvation thresholds, open-row preference)")
	root.MarkFlagsMutuallyExclusive("strict", "opt")
	root.Flags().BoolVar(&o.stats, "stat", false, "report per-kind time-in-queue statistics after the run")
	root.Flags().BoolVar(&o.verbose, "verbose", false, "human-readable event log instead of the command log")
	root.Flags().StringVarP(&o.configPath, "config", "c", "", "YAML file overriding timing, geometry and thresholds")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts, tracePath string) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	policy := sched.Loose
	switch {
	case o.strict:
		policy = sched.Strict
	case o.optimized:
		policy = sched.Optimized
	}

	in, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer in.Close()

	out := os.Stdout
	if o.output != "" {
		path := o.output
		if !strings.HasSuffix(path, ".txt") {
			slog.Warn("output file must end in .txt, using default", "given", path, "using", "output.txt")
			path = "output.txt"
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	s, err := sim.New(in, out, sim.Options{
		Policy:  policy,
		Stats:   o.stats,
		Verbose: o.verbose,
		Config:  cfg,
	})
	if err != nil {
		return err
	}

	runErr := s.Run()
	if runErr != nil && !errors.Is(runErr, sim.ErrOverflow) {
		return runErr
	}

	// Statistics survive an overflow; the run still exits nonzero.
	if st := s.Stats(); st != nil {
		if err := st.Report(out); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}
	return runErr
}
