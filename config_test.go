package tiertrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		in              string
		base            string
		scan, sub, frac float64
	}{
		{"603_bwaves_s-100-20.00-0.10", "603_bwaves_s", 100, 20, 0.10},
		{"mcf-10-2-0.5", "mcf", 10, 2, 0.5},
		{"xz-r-7-1000-3.125-1", "xz-r-7", 1000, 3.125, 1},
		{"a-b-c-1-0-0", "a-b-c", 1, 0, 0},
		{"505.mcf_r-5-1.5-.25", "505.mcf_r", 5, 1.5, .25},
		{"1-2-3-4", "1", 2, 3, 4},
	}
	for _, test := range tests {
		cfg := DecodeConfig(test.in)
		if !assert.True(t, cfg.Decoded(), "%q should decode", test.in) {
			continue
		}
		assert.Equal(t, test.base, cfg.BaseName, test.in)
		assert.Equal(t, test.scan, cfg.Params.ScanIntervalMs, test.in)
		assert.Equal(t, test.sub, cfg.Params.SubIntervalMs, test.in)
		assert.Equal(t, test.frac, cfg.Params.CapacityFraction, test.in)
		assert.Equal(t, test.frac*100, cfg.Params.CapacityPercent, test.in)
	}
}

func TestDecodeConfigExample(t *testing.T) {
	cfg := DecodeConfig("603_bwaves_s-100-20.00-0.10")
	require.NotNil(t, cfg.Params)
	assert.Equal(t, "603_bwaves_s", cfg.BaseName)
	assert.Equal(t, 100.0, cfg.Params.ScanIntervalMs)
	assert.Equal(t, 20.0, cfg.Params.SubIntervalMs)
	assert.InDelta(t, 10.0, cfg.Params.CapacityPercent, 1e-12)

	scan, ok := cfg.ScanInterval()
	assert.True(t, ok)
	assert.Equal(t, 100.0, scan)
}

func TestDecodeConfigMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"bwaves",
		"bwaves-100",
		"bwaves-100-20",
		"-100-20-0.1",
		"bwaves-1.5-20-0.1", // scan interval must be integral
		"bwaves-100-20-0.1.2",
		"bwaves-100-20-0.1-x",
		"bwaves_100_20_0.1",
		"bwaves-100-20-0.1.csv",
	} {
		cfg := DecodeConfig(in)
		assert.Equal(t, in, cfg.BaseName, "%q", in)
		assert.False(t, cfg.Decoded(), "%q", in)
		assert.Nil(t, cfg.Params, "%q", in)
		_, ok := cfg.ScanInterval()
		assert.False(t, ok, "%q", in)
	}
}

func TestDecodeConfigZeroIsNotAbsent(t *testing.T) {
	cfg := DecodeConfig("idle-0-0-0")
	require.True(t, cfg.Decoded())
	scan, ok := cfg.ScanInterval()
	assert.True(t, ok)
	assert.Zero(t, scan)
	assert.Zero(t, cfg.Params.CapacityPercent)
}

func TestWorkloadID(t *testing.T) {
	assert.Equal(t, "603_bwaves_s-100-20.00-0.10", WorkloadID("out/603_bwaves_s-100-20.00-0.10.csv"))
	assert.Equal(t, "trace", WorkloadID("/tmp/x/trace.jsonl"))
	assert.Equal(t, "noext", WorkloadID("noext"))
}
