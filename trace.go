package tiertrace

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column names of the per-interval trace format.
const (
	ColIntervalStart     = "interval_start_timestamp"
	ColIntervalEnd       = "interval_end_timestamp"
	ColTotalAccessCount  = "total_access_count"
	ColActualHitRatio    = "actual_accesses_dram_hit_ratio"
	ColEstimatedHitRatio = "estimated_dram_hit_ratio"
	ColPTSHitRatio       = "pts_dram_hit_ratio"
	ColPagesAccessed     = "number_of_pages_accessed"
)

// RequiredColumns lists every column a trace source must provide.
var RequiredColumns = []string{
	ColIntervalStart,
	ColIntervalEnd,
	ColTotalAccessCount,
	ColActualHitRatio,
	ColEstimatedHitRatio,
	ColPTSHitRatio,
	ColPagesAccessed,
}

// IntervalRecord is one sampling interval of a trace. Ticks are in the
// trace's native time unit. Hit ratios are kept exactly as read, even when
// they fall outside [0,1].
type IntervalRecord struct {
	StartTick         int64   `json:"interval_start_timestamp"`
	EndTick           int64   `json:"interval_end_timestamp"`
	TotalAccessCount  int64   `json:"total_access_count"`
	ActualHitRatio    float64 `json:"actual_accesses_dram_hit_ratio"`
	EstimatedHitRatio float64 `json:"estimated_dram_hit_ratio"`
	PTSHitRatio       float64 `json:"pts_dram_hit_ratio"`
	PagesAccessed     int64   `json:"number_of_pages_accessed"`
}

// SchemaError is returned when a trace source lacks required columns.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	where := e.Path
	if where == "" {
		where = "trace"
	}
	return fmt.Sprintf("%s: missing required column(s) %s", where, strings.Join(e.Missing, ", "))
}

// ParseError is returned when a cell can't be read as a number.
type ParseError struct {
	Path   string
	Row    int // 1-based data row
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "trace"
	}
	return fmt.Sprintf("%s: row %d: column %s: invalid value %q: %v", where, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadTrace reads the trace file at path. Files ending in .json or .jsonl
// are read as JSON lines, everything else as CSV with a header row.
func LoadTrace(path string) ([]IntervalRecord, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var records []IntervalRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl":
		records, err = ReadTraceJSON(fd)
	default:
		records, err = ReadTraceCSV(fd)
	}
	switch e := err.(type) {
	case *SchemaError:
		e.Path = path
	case *ParseError:
		e.Path = path
	case nil:
	default:
		err = fmt.Errorf("%s: %w", path, err)
	}
	return records, err
}

// ReadTraceCSV reads a CSV trace. The header row must name all required
// columns; extra columns are ignored. Row order is preserved.
func ReadTraceCSV(r io.Reader) ([]IntervalRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Missing: RequiredColumns}
	} else if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var records []IntervalRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return records, err
		}
		cell := func(name string) string { return strings.TrimSpace(fields[index[name]]) }
		rec, err := parseRecord(row, cell)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadTraceJSON reads a trace of JSON objects, one per interval. Values may
// be JSON numbers or numeric strings.
func ReadTraceJSON(r io.Reader) ([]IntervalRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []IntervalRecord
	for row := 1; ; row++ {
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err == io.EOF {
			if row == 1 {
				return nil, &SchemaError{Missing: RequiredColumns}
			}
			break
		} else if err != nil {
			return records, err
		}
		var missing []string
		for _, name := range RequiredColumns {
			if _, ok := obj[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, &SchemaError{Missing: missing}
		}
		cell := func(name string) string { return jsonScalar(obj[name]) }
		rec, err := parseRecord(row, cell)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// jsonScalar returns the text of a JSON number or string value.
func jsonScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}

func parseRecord(row int, cell func(string) string) (rec IntervalRecord, err error) {
	fail := func(col string, e error) (IntervalRecord, error) {
		return IntervalRecord{}, &ParseError{Row: row, Column: col, Value: cell(col), Err: e}
	}
	if rec.StartTick, err = ParseTick(cell(ColIntervalStart)); err != nil {
		return fail(ColIntervalStart, err)
	}
	if rec.EndTick, err = ParseTick(cell(ColIntervalEnd)); err != nil {
		return fail(ColIntervalEnd, err)
	}
	if rec.TotalAccessCount, err = parseCount(cell(ColTotalAccessCount)); err != nil {
		return fail(ColTotalAccessCount, err)
	}
	if rec.ActualHitRatio, err = parseRatio(cell(ColActualHitRatio)); err != nil {
		return fail(ColActualHitRatio, err)
	}
	if rec.EstimatedHitRatio, err = parseRatio(cell(ColEstimatedHitRatio)); err != nil {
		return fail(ColEstimatedHitRatio, err)
	}
	if rec.PTSHitRatio, err = parseRatio(cell(ColPTSHitRatio)); err != nil {
		return fail(ColPTSHitRatio, err)
	}
	if rec.PagesAccessed, err = parseCount(cell(ColPagesAccessed)); err != nil {
		return fail(ColPagesAccessed, err)
	}
	return rec, nil
}

var (
	errNotFinite = errors.New("not a finite number")
	errNegative  = errors.New("negative count")
)

// parseRatio parses a hit ratio cell. Values outside [0,1] are kept.
func parseRatio(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func parseCount(s string) (int64, error) {
	v, err := ParseTick(s)
	if err == nil && v < 0 {
		return 0, errNegative
	}
	return v, err
}

// ParseTick parses an integer cell. It accepts decimal integers, 0x-prefixed
// hexadecimal and integral floating point values such as "1.5e9".
func ParseTick(s string) (int64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return v, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, err
	}
	return int64(f), nil
}
