package tiertrace

import (
	"errors"
	"fmt"
	"time"

	"github.com/aristanetworks/goarista/monotime"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrNoInput is returned by LoadDataset when it is given no trace paths.
var ErrNoInput = errors.New("no input traces")

// Workload is one fully processed trace.
type Workload struct {
	ID       string
	Path     string
	Config   WorkloadConfig
	Basis    Basis
	Records  []NormalizedRecord
	LoadTime time.Duration
}

// Summary reduces the workload's records. It is recomputed on every call.
func (w *Workload) Summary() Summary {
	return Summarize(w.Records)
}

// Process runs a loaded trace through normalization and derivation.
func Process(id string, records []IntervalRecord) *Workload {
	cfg := DecodeConfig(id)
	timed, basis := Normalize(records, cfg)
	log := logrus.WithField("workload", id)
	if !cfg.Decoded() {
		log.Debug("identifier has no encoded parameters, using index timeline")
	} else if basis == BasisScanInterval {
		log.Debug("first interval has zero width, spacing records by scan interval")
	}
	return &Workload{
		ID:      id,
		Config:  cfg,
		Basis:   basis,
		Records: DeriveAll(timed),
	}
}

// LoadWorkload reads and processes the trace at path.
func LoadWorkload(path string) (*Workload, error) {
	start := monotime.Now()
	records, err := LoadTrace(path)
	if err != nil {
		return nil, err
	}
	w := Process(WorkloadID(path), records)
	w.Path = path
	w.LoadTime = monotime.Since(start)
	return w, nil
}

// Dataset holds the workloads of a run in input order.
type Dataset struct {
	Workloads []*Workload
	index     map[string]int
}

// NewDataset builds a dataset from workloads. Later workloads with an ID that
// is already present are rejected.
func NewDataset(workloads []*Workload) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(workloads))}
	var err error
	for _, w := range workloads {
		if _, dup := ds.index[w.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: duplicate workload id %q", w.Path, w.ID))
			continue
		}
		ds.index[w.ID] = len(ds.Workloads)
		ds.Workloads = append(ds.Workloads, w)
	}
	return ds, err
}

// Get returns the workload with the given ID.
func (ds *Dataset) Get(id string) (*Workload, bool) {
	i, ok := ds.index[id]
	if !ok {
		return nil, false
	}
	return ds.Workloads[i], true
}

// IDs returns workload IDs in input order.
func (ds *Dataset) IDs() []string {
	ids := make([]string, len(ds.Workloads))
	for i, w := range ds.Workloads {
		ids[i] = w.ID
	}
	return ids
}

// LoadDataset loads all traces, running at most parallel loads at once
// (no limit when parallel <= 0). A trace that fails to load is left out of the
// dataset and its error is combined into the returned error; the dataset is
// returned even then. Use multierr.Errors to inspect individual failures.
func LoadDataset(paths []string, parallel int) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	var (
		eg      errgroup.Group
		loaded  = make([]*Workload, len(paths))
		errs    = make([]error, len(paths))
		started = monotime.Now()
	)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i, path := range paths {
		i, path := i, path // per-iteration copies (go 1.21 loop semantics)
		eg.Go(func() error {
			w, err := LoadWorkload(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			logrus.WithFields(logrus.Fields{
				"workload":  w.ID,
				"intervals": len(w.Records),
				"basis":     w.Basis,
				"elapsed":   w.LoadTime,
			}).Debug("loaded trace")
			loaded[i] = w
			return nil
		})
	}
	eg.Wait()

	var (
		ok  []*Workload
		err = multierr.Combine(errs...)
	)
	for _, w := range loaded {
		if w != nil {
			ok = append(ok, w)
		}
	}
	ds, dupErr := NewDataset(ok)
	logrus.Debugf("loaded %d/%d traces in %v", len(ds.Workloads), len(paths), monotime.Since(started))
	return ds, multierr.Append(err, dupErr)
}

// Align returns a copy of the dataset whose timelines are shifted so that
// the earliest first timestamp among all workloads is zero. Timelines are
// translated, never rescaled, which is only valid when all of them are in
// seconds.
func (ds *Dataset) Align() (*Dataset, error) {
	var firsts []float64
	for _, w := range ds.Workloads {
		if !w.Basis.Seconds() {
			return nil, fmt.Errorf("%s: %w", w.ID, ErrIncomparableTimelines)
		}
		if len(w.Records) > 0 {
			firsts = append(firsts, w.Records[0].Timestamp)
		}
	}
	shift := alignShift(firsts)
	aligned := make([]*Workload, len(ds.Workloads))
	for i, w := range ds.Workloads {
		cp := *w
		cp.Records = make([]NormalizedRecord, len(w.Records))
		for j, r := range w.Records {
			r.Timestamp -= shift
			cp.Records[j] = r
		}
		aligned[i] = &cp
	}
	return NewDataset(aligned)
}
