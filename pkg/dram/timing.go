package dram

// ScaleFactor is the ratio of the CPU clock to the memory clock. Timing
// parameters are given in memory cycles and converted to CPU cycles when a
// Dimm is built.
const ScaleFactor = 2

// Timing holds the DDR4 timing parameters in memory-clock cycles.
type Timing struct {
	TRCD   uint64 `yaml:"trcd"`   // activate to read/write
	TRAS   uint64 `yaml:"tras"`   // activate to precharge
	TCAS   uint64 `yaml:"tcas"`   // read to data
	TRTP   uint64 `yaml:"trtp"`   // read to precharge
	TRP    uint64 `yaml:"trp"`    // precharge to activate
	TBurst uint64 `yaml:"tburst"` // data burst length
	CWL    uint64 `yaml:"cwl"`    // write to data
	TWR    uint64 `yaml:"twr"`    // write recovery
	TRRDS  uint64 `yaml:"trrd_s"` // activate to activate, different group
	TRRDL  uint64 `yaml:"trrd_l"` // activate to activate, same group
	TCCDS  uint64 `yaml:"tccd_s"` // access to access, different group
	TCCDL  uint64 `yaml:"tccd_l"` // access to access, same group
	TWTRS  uint64 `yaml:"twtr_s"` // write to read, different group
	TWTRL  uint64 `yaml:"twtr_l"` // write to read, same group
	TRTW   uint64 `yaml:"trtw"`   // read to write turnaround
}

// DefaultTiming returns the DDR4 parameter set the simulator models.
func DefaultTiming() Timing {
	return Timing{
		TRCD:   24,
		TRAS:   52,
		TCAS:   24,
		TRTP:   12,
		TRP:    24,
		TBurst: 4,
		CWL:    20,
		TWR:    20,
		TRRDS:  4,
		TRRDL:  6,
		TCCDS:  4,
		TCCDL:  8,
		TWTRS:  4,
		TWTRL:  12,
		TRTW:   4,
	}
}

// scaled returns the parameter set converted to CPU cycles.
func (t Timing) scaled() Timing {
	return Timing{
		TRCD:   t.TRCD * ScaleFactor,
		TRAS:   t.TRAS * ScaleFactor,
		TCAS:   t.TCAS * ScaleFactor,
		TRTP:   t.TRTP * ScaleFactor,
		TRP:    t.TRP * ScaleFactor,
		TBurst: t.TBurst * ScaleFactor,
		CWL:    t.CWL * ScaleFactor,
		TWR:    t.TWR * ScaleFactor,
		TRRDS:  t.TRRDS * ScaleFactor,
		TRRDL:  t.TRRDL * ScaleFactor,
		TCCDS:  t.TCCDS * ScaleFactor,
		TCCDL:  t.TCCDL * ScaleFactor,
		TWTRS:  t.TWTRS * ScaleFactor,
		TWTRL:  t.TWTRL * ScaleFactor,
		TRTW:   t.TRTW * ScaleFactor,
	}
}

// readToWrite is the bus turnaround from a read issue to the next write
// issue. With the default parameters it equals TCCDS+TRTW.
func (t Timing) readToWrite() uint64 {
	return t.TCAS + t.TBurst - t.CWL
}

// writeToRead returns the write-to-read spacing for the given
// write-to-read turnaround parameter (TWTRL same group, TWTRS cross group).
func (t Timing) writeToRead(twtr uint64) uint64 {
	return t.CWL + t.TBurst + twtr
}

// writeRecovery is the spacing from a write issue to a precharge on the
// same bank.
func (t Timing) writeRecovery() uint64 {
	return t.CWL + t.TBurst + t.TWR
}
