package tiertrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticks(spans ...[2]int64) []IntervalRecord {
	rs := make([]IntervalRecord, len(spans))
	for i, s := range spans {
		rs[i] = IntervalRecord{StartTick: s[0], EndTick: s[1], TotalAccessCount: 1}
	}
	return rs
}

func timestamps(tl []TimedRecord) []float64 {
	ts := make([]float64, len(tl))
	for i, r := range tl {
		ts[i] = r.Timestamp
	}
	return ts
}

func TestNormalizeTicks(t *testing.T) {
	cfg := DecodeConfig("bwaves-100-20-0.1")
	records := ticks([2]int64{5000, 6000}, [2]int64{6000, 7000}, [2]int64{7000, 8000}, [2]int64{9000, 10000})

	tl, basis := Normalize(records, cfg)
	assert.Equal(t, BasisTicks, basis)
	require.Len(t, tl, len(records))
	assert.Equal(t, 0.0, tl[0].Timestamp)
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2, 0.4}, timestamps(tl), 1e-12)
	for i := range records {
		assert.Equal(t, records[i], tl[i].IntervalRecord)
	}
}

func TestNormalizeTicksNonUniformWidth(t *testing.T) {
	// Only the first interval defines the tick scale.
	cfg := DecodeConfig("w-10-1-0.5")
	records := ticks([2]int64{0, 50}, [2]int64{50, 500}, [2]int64{500, 510})
	tl, basis := Normalize(records, cfg)
	assert.Equal(t, BasisTicks, basis)
	assert.InDeltaSlice(t, []float64{0, 0.01, 0.1}, timestamps(tl), 1e-12)
}

func TestNormalizeZeroWidthFirstInterval(t *testing.T) {
	cfg := DecodeConfig("bwaves-250-20-0.1")
	records := ticks([2]int64{100, 100}, [2]int64{100, 900}, [2]int64{900, 5000})
	tl, basis := Normalize(records, cfg)
	assert.Equal(t, BasisScanInterval, basis)
	require.Len(t, tl, 3)
	for i, r := range tl {
		assert.Equal(t, float64(i)*(250.0/1000), r.Timestamp)
	}
}

func TestNormalizeUndecodedIdentifier(t *testing.T) {
	cfg := DecodeConfig("legacy_trace")
	records := ticks([2]int64{0, 1000}, [2]int64{1000, 2000}, [2]int64{2000, 3000})
	tl, basis := Normalize(records, cfg)
	assert.Equal(t, BasisIndex, basis)
	assert.False(t, basis.Seconds())
	assert.Equal(t, []float64{0, 1, 2}, timestamps(tl))
}

func TestNormalizeUndecodedZeroWidth(t *testing.T) {
	tl, basis := Normalize(ticks([2]int64{7, 7}, [2]int64{7, 9}), DecodeConfig("x"))
	assert.Equal(t, BasisIndex, basis)
	assert.Equal(t, []float64{0, 1}, timestamps(tl))
}

func TestNormalizeEmpty(t *testing.T) {
	tl, _ := Normalize(nil, DecodeConfig("bwaves-100-20-0.1"))
	assert.Len(t, tl, 0)
}

func TestNormalizeNonDecreasing(t *testing.T) {
	cfg := DecodeConfig("lbm-3-1-0.25")
	records := ticks([2]int64{10, 13}, [2]int64{13, 13}, [2]int64{13, 20}, [2]int64{20, 21}, [2]int64{40, 41})
	tl, _ := Normalize(records, cfg)
	for i := 1; i < len(tl); i++ {
		assert.GreaterOrEqual(t, tl[i].Timestamp, tl[i-1].Timestamp)
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	records := ticks([2]int64{0, 10}, [2]int64{10, 20})
	orig := append([]IntervalRecord(nil), records...)
	Normalize(records, DecodeConfig("a-1-1-1"))
	assert.Equal(t, orig, records)
}

func TestBasisString(t *testing.T) {
	assert.Equal(t, "ticks", BasisTicks.String())
	assert.Equal(t, "scan-interval", BasisScanInterval.String())
	assert.Equal(t, "index", BasisIndex.String())
	assert.True(t, BasisScanInterval.Seconds())
}

func TestAlignShift(t *testing.T) {
	assert.Equal(t, 0.0, alignShift(nil))
	assert.Equal(t, 1.5, alignShift([]float64{3, 1.5, 2}))
}
