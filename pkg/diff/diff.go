// Package diff partitions two runs' failures into new, common, and fixed sets.
//
// Tests are matched only by identity key (class name + "." + test name).
// A renamed test or class shows up as one fixed entry under the old key and
// one new entry under the new key.
package diff

import (
	"sort"

	"github.com/dkoosis/faildiff/pkg/failure"
)

// Index holds one run's failures keyed by identity key.
// When two records share a key, the one added last wins.
type Index struct {
	records    map[string]failure.Record
	duplicates int
}

// NewIndex builds an index from records in the order given.
func NewIndex(records []failure.Record) *Index {
	ix := &Index{records: make(map[string]failure.Record, len(records))}
	for _, r := range records {
		ix.Add(r)
	}
	return ix
}

// Add stores r under its key, replacing any earlier record with that key.
// Reports whether a record was replaced.
func (ix *Index) Add(r failure.Record) bool {
	if ix.records == nil {
		ix.records = make(map[string]failure.Record)
	}
	key := r.Key()
	_, replaced := ix.records[key]
	if replaced {
		ix.duplicates++
	}
	ix.records[key] = r
	return replaced
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// Duplicates returns how many records were replaced by a later one.
func (ix *Index) Duplicates() int {
	if ix == nil {
		return 0
	}
	return ix.duplicates
}

// Get returns the record stored under key.
func (ix *Index) Get(key string) (failure.Record, bool) {
	if ix == nil {
		return failure.Record{}, false
	}
	r, ok := ix.records[key]
	return r, ok
}

// Keys returns every key in ascending order.
func (ix *Index) Keys() []string {
	if ix == nil {
		return nil
	}
	keys := make([]string, 0, len(ix.records))
	for k := range ix.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Records returns every record ordered by key.
func (ix *Index) Records() []failure.Record {
	keys := ix.Keys()
	out := make([]failure.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, ix.records[k])
	}
	return out
}

// Result is the partition of two runs. Each slice is sorted by key.
type Result struct {
	Common []failure.Record // in both runs; records from current
	New    []failure.Record // only in current
	Fixed  []failure.Record // only in baseline; records from baseline
}

// Compare partitions baseline and current. Neither index is modified.
func Compare(baseline, current *Index) Result {
	res := Result{
		Common: []failure.Record{},
		New:    []failure.Record{},
		Fixed:  []failure.Record{},
	}

	for _, key := range current.Keys() {
		r, _ := current.Get(key)
		if _, ok := baseline.Get(key); ok {
			res.Common = append(res.Common, r)
		} else {
			res.New = append(res.New, r)
		}
	}
	for _, key := range baseline.Keys() {
		if _, ok := current.Get(key); ok {
			continue
		}
		r, _ := baseline.Get(key)
		res.Fixed = append(res.Fixed, r)
	}
	return res
}

// Records compares two plain record lists, applying last-write-wins per side.
func Records(baseline, current []failure.Record) Result {
	return Compare(NewIndex(baseline), NewIndex(current))
}

// HasRegressions reports whether any test fails now that did not before.
func (r Result) HasRegressions() bool {
	return len(r.New) > 0
}

// Total returns the number of records across all three sets.
func (r Result) Total() int {
	return len(r.Common) + len(r.New) + len(r.Fixed)
}
