// Package mapper converts failure records and diff results into
// visualization patterns.
package mapper

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/pattern"
)

// maxModules caps the module leaderboard.
const maxModules = 10

// statusOrder is the display order for status counts.
var statusOrder = []failure.Status{failure.StatusFailure, failure.StatusError, failure.StatusAborted}

// Source describes one input of an analysis run.
type Source struct {
	Name     string
	Failures int
	Err      error // set when the source could not be read
}

// FromFailures converts one run's records into patterns.
// Returns: Summary, an Error per unreadable source, a Sparkline of failures per
// source, a module Leaderboard, a TestTable per module, and finally the full
// record set.
func FromFailures(records []failure.Record, sources []Source) []pattern.Pattern {
	patterns := []pattern.Pattern{analyzeSummary(records, sources)}

	for _, s := range sources {
		if s.Err != nil {
			patterns = append(patterns, &pattern.Error{Source: s.Name, Message: s.Err.Error()})
		}
	}

	if len(records) == 0 {
		return append(patterns, recordSet(pattern.RecordSetFailures, records))
	}

	if len(sources) > 1 {
		values := make([]float64, len(sources))
		for i, s := range sources {
			values[i] = float64(s.Failures)
		}
		patterns = append(patterns, &pattern.Sparkline{
			Label:  "Failures per archive",
			Values: values,
		})
	}

	counts := ModuleCounts(records)
	patterns = append(patterns, moduleLeaderboard(counts))

	byModule := make(map[string][]failure.Record)
	for _, r := range records {
		byModule[r.ModuleName] = append(byModule[r.ModuleName], r)
	}
	for _, mc := range counts {
		patterns = append(patterns, moduleTable(mc.Module, byModule[mc.Module]))
	}
	return append(patterns, recordSet(pattern.RecordSetFailures, records))
}

// recordSet wraps records for structured output. A nil slice becomes empty
// so the set still serializes as a list.
func recordSet(name string, records []failure.Record) *pattern.Records {
	if records == nil {
		records = []failure.Record{}
	}
	return &pattern.Records{Set: name, Records: records}
}

// ModuleCount is the number of failures attributed to one module.
type ModuleCount struct {
	Module string
	Count  int
}

// ModuleCounts tallies records by module, highest count first, ties by name.
func ModuleCounts(records []failure.Record) []ModuleCount {
	tally := make(map[string]int)
	for _, r := range records {
		tally[r.ModuleName]++
	}
	out := make([]ModuleCount, 0, len(tally))
	for m, n := range tally {
		out = append(out, ModuleCount{Module: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Module < out[j].Module
	})
	return out
}

// StatusCounts tallies records by status.
func StatusCounts(records []failure.Record) map[failure.Status]int {
	counts := make(map[failure.Status]int, len(statusOrder))
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

func analyzeSummary(records []failure.Record, sources []Source) *pattern.Summary {
	readable := 0
	for _, s := range sources {
		if s.Err == nil {
			readable++
		}
	}

	counts := StatusCounts(records)
	var metrics []pattern.SummaryItem
	for _, st := range statusOrder {
		kind := "success"
		if counts[st] > 0 {
			kind = statusKind(st)
		}
		metrics = append(metrics, pattern.SummaryItem{
			Label: StatusLabel(st), Value: fmt.Sprintf("%d", counts[st]), Kind: kind,
		})
	}
	metrics = append(metrics,
		pattern.SummaryItem{Label: "Total", Value: fmt.Sprintf("%d", len(records)), Kind: "info"},
		pattern.SummaryItem{Label: "Archives", Value: fmt.Sprintf("%d/%d readable", readable, len(sources)), Kind: archivesKind(readable, len(sources))},
	)

	label := fmt.Sprintf("PASS no test failures/errors found in %s", plural(readable, "archive"))
	if len(records) > 0 {
		label = fmt.Sprintf("FAIL %s in %s, %s affected",
			plural(len(records), "failed test"), plural(readable, "archive"), plural(len(ModuleCounts(records)), "module"))
	}

	return &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindAnalyze,
		Metrics: metrics,
	}
}

func moduleLeaderboard(counts []ModuleCount) *pattern.Leaderboard {
	top := counts
	if len(top) > maxModules {
		top = top[:maxModules]
	}
	items := make([]pattern.LeaderboardItem, 0, len(top))
	for i, mc := range top {
		items = append(items, pattern.LeaderboardItem{
			Name:   mc.Module,
			Metric: plural(mc.Count, "failure"),
			Value:  float64(mc.Count),
			Rank:   i + 1,
		})
	}
	return &pattern.Leaderboard{
		Label:      "Failures by Module",
		MetricName: "Failures",
		Items:      items,
		TotalCount: len(counts),
		ShowRank:   true,
	}
}

func moduleTable(module string, records []failure.Record) *pattern.TestTable {
	sorted := append([]failure.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if pi, pj := statusPriority(sorted[i].Status), statusPriority(sorted[j].Status); pi != pj {
			return pi < pj
		}
		return sorted[i].Key() < sorted[j].Key()
	})
	items := make([]pattern.TestTableItem, 0, len(sorted))
	for _, r := range sorted {
		items = append(items, item(r, string(r.Status)))
	}
	return &pattern.TestTable{
		Label:   fmt.Sprintf("%s (%s)", module, plural(len(sorted), "failure")),
		Source:  module,
		Results: items,
	}
}

func item(r failure.Record, status string) pattern.TestTableItem {
	return pattern.TestTableItem{
		Name:     r.Key(),
		Status:   status,
		Module:   r.ModuleName,
		Duration: FormatSeconds(r.Duration),
		Details:  truncateLines(r.Message, 3),
	}
}

// StatusLabel is the plural display label for a status, e.g. "Failures".
func StatusLabel(s failure.Status) string {
	title := cases.Title(language.English).String(string(s))
	if s == failure.StatusAborted {
		return title
	}
	return title + "s"
}

// FormatSeconds renders a duration for humans with millisecond precision.
func FormatSeconds(d float64) string {
	return fmt.Sprintf("%.3fs", d)
}

func statusKind(s failure.Status) string {
	if s == failure.StatusAborted {
		return "warning"
	}
	return "error"
}

func statusPriority(s failure.Status) int {
	switch s {
	case failure.StatusError:
		return 0
	case failure.StatusFailure:
		return 1
	default:
		return 2
	}
}

func archivesKind(readable, total int) string {
	if readable < total {
		return "warning"
	}
	return "info"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func truncateLines(s string, max int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}
