package tiertrace

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var summaryPrefix = []byte("summary/")

// StoredSummary is the persisted form of a workload summary.
type StoredSummary struct {
	ID      string         `json:"id"`
	Config  WorkloadConfig `json:"config"`
	Basis   string         `json:"basis"`
	Summary Summary        `json:"summary"`
}

// Store keeps workload summaries of past runs in a LevelDB database, keyed
// by workload ID.
type Store struct {
	db *leveldb.DB
}

// OpenStore opens or creates the summary database in dir.
func OpenStore(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("can't open summary store %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func summaryKey(id string) []byte {
	return append(append([]byte(nil), summaryPrefix...), id...)
}

// Put writes the summaries of all workloads in ds, replacing earlier entries
// with the same IDs.
func (s *Store) Put(ds *Dataset) error {
	batch := new(leveldb.Batch)
	for _, w := range ds.Workloads {
		v, err := json.Marshal(StoredSummary{
			ID:      w.ID,
			Config:  w.Config,
			Basis:   w.Basis.String(),
			Summary: w.Summary(),
		})
		if err != nil {
			return err
		}
		batch.Put(summaryKey(w.ID), v)
	}
	return s.db.Write(batch, nil)
}

// Get returns the stored summary of a workload.
func (s *Store) Get(id string) (StoredSummary, bool, error) {
	var ss StoredSummary
	v, err := s.db.Get(summaryKey(id), nil)
	if err == leveldb.ErrNotFound {
		return ss, false, nil
	} else if err != nil {
		return ss, false, err
	}
	if err := json.Unmarshal(v, &ss); err != nil {
		return ss, false, fmt.Errorf("summary %q: %w", id, err)
	}
	return ss, true, nil
}

// Summaries returns all stored summaries ordered by workload ID.
func (s *Store) Summaries() ([]StoredSummary, error) {
	it := s.iterator()
	defer it.Release()
	var all []StoredSummary
	for it.Next() {
		var ss StoredSummary
		if err := json.Unmarshal(it.Value(), &ss); err != nil {
			return all, fmt.Errorf("summary %q: %w", it.Key(), err)
		}
		all = append(all, ss)
	}
	return all, it.Error()
}

func (s *Store) iterator() iterator.Iterator {
	return s.db.NewIterator(util.BytesPrefix(summaryPrefix), nil)
}

// DiffEntry compares one workload across two stores. A or B is nil when the
// workload is only present in the other store.
type DiffEntry struct {
	ID   string
	A, B *StoredSummary
}

// RatioDelta returns B's overall hit ratio minus A's for the method. It is
// undefined unless both sides exist and both ratios are defined.
func (d DiffEntry) RatioDelta(m Method) (float64, bool) {
	if d.A == nil || d.B == nil {
		return 0, false
	}
	a, okA := d.A.Summary.OverallHitRatio(m)
	b, okB := d.B.Summary.OverallHitRatio(m)
	if !okA || !okB {
		return 0, false
	}
	return b - a, true
}

// DiffStores walks both stores in key order and pairs up their entries.
func DiffStores(a, b *Store) ([]DiffEntry, error) {
	itA, itB := a.iterator(), b.iterator()
	defer itA.Release()
	defer itB.Release()

	var (
		diff     []DiffEntry
		okA, okB = itA.Next(), itB.Next()
	)
	for okA || okB {
		var c int
		switch {
		case !okA:
			c = 1
		case !okB:
			c = -1
		default:
			c = bytes.Compare(itA.Key(), itB.Key())
		}
		switch c {
		case -1:
			// only in A
			ss, err := decodeSummary(itA)
			if err != nil {
				return diff, err
			}
			diff = append(diff, DiffEntry{ID: ss.ID, A: ss})
			okA = itA.Next()
		case 1:
			// only in B
			ss, err := decodeSummary(itB)
			if err != nil {
				return diff, err
			}
			diff = append(diff, DiffEntry{ID: ss.ID, B: ss})
			okB = itB.Next()
		case 0:
			sa, err := decodeSummary(itA)
			if err != nil {
				return diff, err
			}
			sb, err := decodeSummary(itB)
			if err != nil {
				return diff, err
			}
			diff = append(diff, DiffEntry{ID: sa.ID, A: sa, B: sb})
			okA, okB = itA.Next(), itB.Next()
		}
	}
	if err := itA.Error(); err != nil {
		return diff, err
	}
	return diff, itB.Error()
}

func decodeSummary(it iterator.Iterator) (*StoredSummary, error) {
	ss := new(StoredSummary)
	if err := json.Unmarshal(it.Value(), ss); err != nil {
		return nil, fmt.Errorf("summary %q: %w", it.Key(), err)
	}
	return ss, nil
}
