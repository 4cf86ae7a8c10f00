package tiertrace

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// configRE matches <base>-<scan ms>-<sub-interval ms>-<capacity fraction>.
// The lazy base capture together with the end anchor makes the three numeric
// segments bind from the right, so base names may contain hyphens and digits.
var configRE = regexp.MustCompile(`^(.+?)-(\d+)-([\d.]+)-([\d.]+)$`)

// TierParams are the simulation parameters encoded in a trace identifier.
type TierParams struct {
	ScanIntervalMs   float64 `json:"scan_interval_ms" yaml:"scan_interval_ms"`
	SubIntervalMs    float64 `json:"sub_interval_ms" yaml:"sub_interval_ms"`
	CapacityFraction float64 `json:"capacity_fraction" yaml:"capacity_fraction"`
	CapacityPercent  float64 `json:"capacity_percent" yaml:"capacity_percent"`
}

// WorkloadConfig is the decoded identity of a trace. Params is nil when the
// identifier could not be decoded; BaseName then holds the whole identifier.
type WorkloadConfig struct {
	BaseName string      `json:"base_name"`
	Params   *TierParams `json:"params,omitempty"`
}

// Decoded reports whether the numeric parameters are present.
func (c WorkloadConfig) Decoded() bool {
	return c.Params != nil
}

// ScanInterval returns the nominal sampling interval in milliseconds.
func (c WorkloadConfig) ScanInterval() (float64, bool) {
	if c.Params == nil {
		return 0, false
	}
	return c.Params.ScanIntervalMs, true
}

// DecodeConfig parses a trace identifier. It never fails: identifiers that
// don't have the expected shape decode to a config without parameters.
func DecodeConfig(id string) WorkloadConfig {
	m := configRE.FindStringSubmatch(id)
	if m == nil {
		return WorkloadConfig{BaseName: id}
	}
	scan, err1 := strconv.ParseFloat(m[2], 64)
	sub, err2 := strconv.ParseFloat(m[3], 64)
	frac, err3 := strconv.ParseFloat(m[4], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		// e.g. "1.2.3" satisfies [\d.]+ but is not a number.
		return WorkloadConfig{BaseName: id}
	}
	return WorkloadConfig{
		BaseName: m[1],
		Params: &TierParams{
			ScanIntervalMs:   scan,
			SubIntervalMs:    sub,
			CapacityFraction: frac,
			CapacityPercent:  frac * 100,
		},
	}
}

// WorkloadID returns the identifier of the trace stored at path: its file
// name without directory and extension.
func WorkloadID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
