package tiertrace

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the whole-run reduction of one workload's intervals.
type Summary struct {
	Intervals     int     `json:"intervals"`
	Duration      float64 `json:"duration"` // largest timestamp, 0 when there are none
	TotalAccesses int64   `json:"total_accesses"`
	TotalPages    int64   `json:"total_pages"`

	TotalHits [numMethods]float64 `json:"total_hits"`

	// Access-weighted mean and standard deviation of each method's
	// per-interval hit ratio. Only meaningful when TotalAccesses > 1.
	MeanRatio   [numMethods]float64 `json:"mean_ratio"`
	RatioStdDev [numMethods]float64 `json:"ratio_stddev"`

	// Unweighted mean of actual - estimated over all intervals.
	MeanDifference float64 `json:"mean_difference"`
}

// OverallHitRatio returns total hits over total accesses for the method.
// The second result is false when the workload has no accesses, in which
// case the ratio is undefined.
func (s Summary) OverallHitRatio(m Method) (float64, bool) {
	if s.TotalAccesses == 0 {
		return 0, false
	}
	return s.TotalHits[m] / float64(s.TotalAccesses), true
}

// Spread returns the access-weighted stddev of the method's ratio.
func (s Summary) Spread(m Method) (float64, bool) {
	if s.TotalAccesses <= 1 {
		return 0, false
	}
	return s.RatioStdDev[m], true
}

// Summarize reduces normalized records to a Summary. The totals don't depend
// on record order.
func Summarize(records []NormalizedRecord) Summary {
	s := Summary{Intervals: len(records)}
	if len(records) == 0 {
		return s
	}
	var (
		weights = make([]float64, len(records))
		diffs   = make([]float64, len(records))
		ratios  = make([]float64, len(records))
		hits    = make([]float64, len(records))
	)
	for i, r := range records {
		s.TotalAccesses += r.TotalAccessCount
		s.TotalPages += r.PagesAccessed
		if r.Timestamp > s.Duration {
			s.Duration = r.Timestamp
		}
		weights[i] = float64(r.TotalAccessCount)
		diffs[i] = r.HitRatioDifference
	}
	s.MeanDifference = stat.Mean(diffs, nil)

	for _, m := range Methods {
		for i, r := range records {
			hits[i] = r.Hits(m)
			ratios[i] = m.Ratio(r.IntervalRecord)
		}
		s.TotalHits[m] = orderedSum(hits)
		if s.TotalAccesses > 1 {
			s.MeanRatio[m], s.RatioStdDev[m] = stat.MeanStdDev(ratios, weights)
		}
	}
	return s
}

// orderedSum adds values in ascending order so that the result is the same
// for every permutation of the input. It sorts a copy.
func orderedSum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return floats.Sum(sorted)
}
