package tiertrace

import (
	"errors"
	"math"
)

// Basis says how a timeline's timestamps were produced.
type Basis int

const (
	// BasisTicks scales native ticks to seconds using the nominal scan
	// interval and the width of the first interval.
	BasisTicks Basis = iota
	// BasisScanInterval spaces records one scan interval apart. Used when the
	// first interval has zero width.
	BasisScanInterval
	// BasisIndex spaces records one unit apart. Used when the trace identifier
	// carries no scan interval. Timestamps are not seconds.
	BasisIndex
)

func (b Basis) String() string {
	switch b {
	case BasisTicks:
		return "ticks"
	case BasisScanInterval:
		return "scan-interval"
	case BasisIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Seconds reports whether timestamps on this basis are in seconds.
func (b Basis) Seconds() bool {
	return b != BasisIndex
}

// TimedRecord is an interval record placed on its trace's timeline.
type TimedRecord struct {
	IntervalRecord
	Timestamp float64 `json:"timestamp_seconds"`
}

// Normalize places every record of a trace on a zero-based timeline.
//
// When the config carries a scan interval and the first interval has nonzero
// width, the first interval's tick width is taken to span one scan interval
// and all start ticks are scaled accordingly. Otherwise records are spaced by
// index, one scan interval (or one unit without a scan interval) apart.
// The returned slice has the same length and order as records.
func Normalize(records []IntervalRecord, cfg WorkloadConfig) ([]TimedRecord, Basis) {
	scanMs, haveScan := cfg.ScanInterval()
	out := make([]TimedRecord, len(records))
	if len(records) == 0 {
		if haveScan {
			return out, BasisTicks
		}
		return out, BasisIndex
	}

	u0 := records[0].StartTick
	d0 := records[0].EndTick - records[0].StartTick
	if haveScan && d0 != 0 {
		secondsPerTick := (scanMs / 1000) / float64(d0)
		for i, r := range records {
			out[i] = TimedRecord{IntervalRecord: r, Timestamp: float64(r.StartTick-u0) * secondsPerTick}
		}
		return out, BasisTicks
	}

	step, basis := 1.0, BasisIndex
	if haveScan {
		step, basis = scanMs/1000, BasisScanInterval
	}
	for i, r := range records {
		out[i] = TimedRecord{IntervalRecord: r, Timestamp: float64(i) * step}
	}
	return out, basis
}

// ErrIncomparableTimelines is returned by Dataset.Align when a timeline is
// not measured in seconds.
var ErrIncomparableTimelines = errors.New("timelines are not all in seconds")

// alignShift returns the smallest first timestamp among the timelines
// starting at firsts, or zero when there are none.
func alignShift(firsts []float64) float64 {
	shift := math.Inf(1)
	for _, t := range firsts {
		if t < shift {
			shift = t
		}
	}
	if math.IsInf(shift, 1) {
		return 0
	}
	return shift
}
