package mapper

import (
	"fmt"
	"sort"

	"github.com/dkoosis/faildiff/pkg/diff"
	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/pattern"
)

// FromDiff converts a comparison into patterns.
// Returns: Summary, a per-module Comparison, then TestTables for new, fixed,
// and common failures, then the new, common, and fixed record sets. Empty
// tables are omitted; record sets are always present.
func FromDiff(res diff.Result, baselineName, currentName string) []pattern.Pattern {
	patterns := []pattern.Pattern{compareSummary(res, baselineName, currentName)}

	if res.Total() == 0 {
		return append(patterns, diffRecordSets(res)...)
	}
	patterns = append(patterns, moduleComparison(res))

	if len(res.New) > 0 {
		items := make([]pattern.TestTableItem, 0, len(res.New))
		for _, r := range ByModule(res.New) {
			items = append(items, item(r, string(r.Status)))
		}
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("New Failures (%d)", len(res.New)),
			Source:  "new",
			Results: items,
		})
	}
	if len(res.Fixed) > 0 {
		items := make([]pattern.TestTableItem, 0, len(res.Fixed))
		for _, r := range res.Fixed {
			it := item(r, "fixed")
			it.Details = ""
			items = append(items, it)
		}
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Fixed (%d)", len(res.Fixed)),
			Source:  "fixed",
			Results: items,
		})
	}
	if len(res.Common) > 0 {
		items := make([]pattern.TestTableItem, 0, len(res.Common))
		for _, r := range res.Common {
			it := item(r, string(r.Status))
			it.Details = ""
			items = append(items, it)
		}
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Still Failing (%d)", len(res.Common)),
			Source:  "common",
			Results: items,
		})
	}
	return append(patterns, diffRecordSets(res)...)
}

func diffRecordSets(res diff.Result) []pattern.Pattern {
	return []pattern.Pattern{
		recordSet(pattern.RecordSetNew, res.New),
		recordSet(pattern.RecordSetCommon, res.Common),
		recordSet(pattern.RecordSetFixed, res.Fixed),
	}
}

// ByModule returns a copy of records ordered by module, then class name,
// then test name.
func ByModule(records []failure.Record) []failure.Record {
	out := append([]failure.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ModuleName != b.ModuleName {
			return a.ModuleName < b.ModuleName
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.TestName < b.TestName
	})
	return out
}

func compareSummary(res diff.Result, baselineName, currentName string) *pattern.Summary {
	newKind := "success"
	if res.HasRegressions() {
		newKind = "error"
	}
	commonKind := "info"
	if len(res.Common) > 0 {
		commonKind = "warning"
	}
	baseline := len(res.Common) + len(res.Fixed)
	current := len(res.Common) + len(res.New)

	label := fmt.Sprintf("PASS no new regressions (%s vs %s)", currentName, baselineName)
	if res.HasRegressions() {
		label = fmt.Sprintf("FAIL %s (%s vs %s)", plural(len(res.New), "new failure"), currentName, baselineName)
	}

	return &pattern.Summary{
		Label: label,
		Kind:  pattern.SummaryKindCompare,
		Metrics: []pattern.SummaryItem{
			{Label: "New", Value: fmt.Sprintf("%d", len(res.New)), Kind: newKind},
			{Label: "Common", Value: fmt.Sprintf("%d", len(res.Common)), Kind: commonKind},
			{Label: "Fixed", Value: fmt.Sprintf("%d", len(res.Fixed)), Kind: "success"},
			{Label: "Baseline", Value: fmt.Sprintf("%d failures in %s", baseline, baselineName), Kind: "info"},
			{Label: "Current", Value: fmt.Sprintf("%d failures in %s", current, currentName), Kind: "info"},
		},
	}
}

func moduleComparison(res diff.Result) *pattern.Comparison {
	before := make(map[string]int)
	after := make(map[string]int)
	for _, r := range res.Common {
		before[r.ModuleName]++
		after[r.ModuleName]++
	}
	for _, r := range res.Fixed {
		before[r.ModuleName]++
	}
	for _, r := range res.New {
		after[r.ModuleName]++
	}

	modules := make([]string, 0, len(before)+len(after))
	for m := range before {
		modules = append(modules, m)
	}
	for m := range after {
		if _, ok := before[m]; !ok {
			modules = append(modules, m)
		}
	}
	sort.Strings(modules)

	changes := make([]pattern.ComparisonItem, 0, len(modules))
	for _, m := range modules {
		changes = append(changes, pattern.ComparisonItem{
			Label:  m,
			Before: fmt.Sprintf("%d", before[m]),
			After:  fmt.Sprintf("%d", after[m]),
			Change: float64(after[m] - before[m]),
		})
	}
	return &pattern.Comparison{Label: "Failures by Module", Changes: changes}
}
