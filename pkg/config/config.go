// Package config carries the simulator's tunables: DIMM geometry, the DDR4
// timing table, the pending-queue capacity and the optimized scheduler's
// starvation thresholds. Defaults model the simulated part; a YAML file
// overlays individual values.
package config

import (
	"fmt"
	"os"

	"github.com/ewerd/memsim/pkg/dram"
	"gopkg.in/yaml.v3"
)

// Geometry fixes the addressable shape of the DIMM.
type Geometry struct {
	Groups        int    `yaml:"groups"`
	BanksPerGroup int    `yaml:"banks_per_group"`
	RowsPerBank   uint32 `yaml:"rows_per_bank"`
}

// Thresholds are the optimized policy's per-kind time-in-queue limits, in
// CPU cycles. A request older than its kind's threshold is serviced ahead
// of every row-locality preference.
type Thresholds struct {
	Fetch uint16 `yaml:"ifetch"`
	Read  uint16 `yaml:"read"`
	Write uint16 `yaml:"write"`
}

// Config is the full parameter set.
type Config struct {
	Geometry      Geometry    `yaml:"geometry"`
	Timing        dram.Timing `yaml:"timing"`
	QueueCapacity int         `yaml:"queue_capacity"`
	Thresholds    Thresholds  `yaml:"thresholds"`
}

// Default returns the modeled part: 4 bank groups of 4 banks, 32768 rows,
// a 16-entry queue and the DDR4 timing table.
func Default() Config {
	return Config{
		Geometry: Geometry{
			Groups:        4,
			BanksPerGroup: 4,
			RowsPerBank:   1 << 15,
		},
		Timing:        dram.DefaultTiming(),
		QueueCapacity: 16,
		Thresholds: Thresholds{
			Fetch: 500,
			Read:  1000,
			Write: 2000,
		},
	}
}

// Load overlays a YAML file on the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects geometries and timing tables the simulator cannot run.
func (c Config) Validate() error {
	g := c.Geometry
	if g.Groups < 1 || g.BanksPerGroup < 1 || g.RowsPerBank < 1 {
		return fmt.Errorf("config: bad geometry %dx%dx%d", g.Groups, g.BanksPerGroup, g.RowsPerBank)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("config: queue capacity %d", c.QueueCapacity)
	}
	t := c.Timing
	if t.TCAS+t.TBurst < t.CWL {
		return fmt.Errorf("config: CWL %d exceeds tCAS+tBURST %d", t.CWL, t.TCAS+t.TBurst)
	}
	if t.TRCD == 0 || t.TRP == 0 || t.TRAS == 0 || t.TBurst == 0 {
		return fmt.Errorf("config: zero core timing parameter")
	}
	return nil
}
