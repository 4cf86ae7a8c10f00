package tiertrace

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(counts []int64, actual, estimated, pts []float64) []NormalizedRecord {
	timed := make([]TimedRecord, len(counts))
	for i := range counts {
		timed[i] = TimedRecord{
			IntervalRecord: IntervalRecord{
				TotalAccessCount:  counts[i],
				ActualHitRatio:    actual[i],
				EstimatedHitRatio: estimated[i],
				PTSHitRatio:       pts[i],
				PagesAccessed:     int64(i + 1),
			},
			Timestamp: float64(i) * 0.1,
		}
	}
	return DeriveAll(timed)
}

func TestSummarizeTwoRows(t *testing.T) {
	s := Summarize(normalized(
		[]int64{100, 200},
		[]float64{0.5, 0.25},
		[]float64{0.4, 0.4},
		[]float64{0, 1},
	))
	assert.Equal(t, int64(300), s.TotalAccesses)
	assert.Equal(t, 100.0, s.TotalHits[MethodActual])
	assert.InDelta(t, 120.0, s.TotalHits[MethodEstimated], 1e-9)
	assert.Equal(t, 200.0, s.TotalHits[MethodPTS])

	r, ok := s.OverallHitRatio(MethodActual)
	require.True(t, ok)
	assert.InDelta(t, 0.3333, r, 1e-4)
	assert.Equal(t, 100.0/300.0, r)

	assert.Equal(t, 2, s.Intervals)
	assert.Equal(t, int64(3), s.TotalPages)
	assert.InDelta(t, 0.1, s.Duration, 1e-12)
	// weighted mean of per-interval ratios equals the overall ratio
	assert.InDelta(t, r, s.MeanRatio[MethodActual], 1e-12)
	assert.InDelta(t, ((0.5-0.4)+(0.25-0.4))/2, s.MeanDifference, 1e-12)
}

func TestSummarizeDurationIsLargestTimestamp(t *testing.T) {
	rs := normalized([]int64{1, 1, 1}, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{0, 0, 0})
	rs[0], rs[2] = rs[2], rs[0]
	assert.InDelta(t, 0.2, Summarize(rs).Duration, 1e-12)
}

func TestSummarizeZeroAccesses(t *testing.T) {
	s := Summarize(normalized(
		[]int64{0, 0},
		[]float64{0.5, 0.25},
		[]float64{0.4, 0.4},
		[]float64{0, 1},
	))
	assert.Equal(t, int64(0), s.TotalAccesses)
	for _, m := range Methods {
		_, ok := s.OverallHitRatio(m)
		assert.False(t, ok, m.String())
		_, ok = s.Spread(m)
		assert.False(t, ok, m.String())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Intervals)
	_, ok := s.OverallHitRatio(MethodPTS)
	assert.False(t, ok)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x1334))
	n := 500
	counts := make([]int64, n)
	actual, estimated, pts := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		counts[i] = rnd.Int63n(1 << 20)
		actual[i], estimated[i], pts[i] = rnd.Float64(), rnd.Float64(), rnd.Float64()
	}
	records := normalized(counts, actual, estimated, pts)
	want := Summarize(records)

	for round := 0; round < 5; round++ {
		shuffled := append([]NormalizedRecord(nil), records...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := Summarize(shuffled)
		assert.Equal(t, want.TotalAccesses, got.TotalAccesses)
		assert.Equal(t, want.TotalHits, got.TotalHits)
	}
}

func TestSummarizeSpread(t *testing.T) {
	s := Summarize(normalized(
		[]int64{10, 10},
		[]float64{0.2, 0.4},
		[]float64{0.3, 0.3},
		[]float64{0.5, 0.5},
	))
	spread, ok := s.Spread(MethodActual)
	require.True(t, ok)
	assert.Greater(t, spread, 0.0)
	spread, ok = s.Spread(MethodEstimated)
	require.True(t, ok)
	assert.InDelta(t, 0, spread, 1e-12)
}

func TestOrderedSum(t *testing.T) {
	in := []float64{3, 1, 2}
	assert.Equal(t, 6.0, orderedSum(in))
	assert.Equal(t, []float64{3, 1, 2}, in)
}
