// Package failure defines the canonical failed-test record shared by the
// extractor, the differencing engine, and every report writer.
package failure

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the outcome kind of a failed test case.
type Status string

const (
	StatusFailure Status = "failure"
	StatusError   Status = "error"
	StatusAborted Status = "aborted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusFailure, StatusError, StatusAborted:
		return true
	}
	return false
}

// Text field limits applied at extraction time.
const (
	MaxMessageLen    = 500
	MaxStackTraceLen = 2000
)

// Unknown is the placeholder for missing names and unclassified modules.
const Unknown = "unknown"

// Record is one failed, errored, or aborted test case.
// Records are immutable once built; copy before changing a field.
type Record struct {
	TestName   string  `json:"test_name"`
	ClassName  string  `json:"class_name"`
	SourceFile string  `json:"source_file"`
	ModuleName string  `json:"module_name"`
	Status     Status  `json:"status"`
	Message    string  `json:"message"`
	StackTrace string  `json:"stack_trace"`
	Duration   float64 `json:"duration"`
	Origin     string  `json:"origin"`
}

// Key returns the identity key used to match the same test across runs.
func (r Record) Key() string {
	return r.ClassName + "." + r.TestName
}

// Columns is the header of the tabular export, in stable order.
// The stack trace is carried only by structured formats.
var Columns = []string{
	"Test Name",
	"Class Name",
	"Source File",
	"Module",
	"Status",
	"Message",
	"Duration (s)",
	"Zip File",
}

// Row flattens r into the tabular export, one cell per entry in Columns.
func (r Record) Row() []string {
	return []string{
		r.TestName,
		r.ClassName,
		r.SourceFile,
		r.ModuleName,
		string(r.Status),
		r.Message,
		FormatDuration(r.Duration),
		r.Origin,
	}
}

// FromRow rebuilds a record from a tabular row laid out per Columns.
// Missing trailing cells read as empty strings; an unparseable duration reads as zero.
func FromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		TestName:   cell(0),
		ClassName:  cell(1),
		SourceFile: cell(2),
		ModuleName: cell(3),
		Status:     Status(cell(4)),
		Message:    cell(5),
		Duration:   ParseDuration(cell(6)),
		Origin:     cell(7),
	}
}

// FormatDuration renders seconds in the shortest form that parses back exactly.
func FormatDuration(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// ParseDuration reads a seconds value, tolerating a trailing "s" unit.
// Negative, non-finite, or malformed input yields zero.
func ParseDuration(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// String is a short human description used in logs.
func (r Record) String() string {
	return fmt.Sprintf("[%s] %s (%s)", r.Status, r.Key(), r.ModuleName)
}
