package pattern

// SummaryKind identifies which command produced a summary, so renderers can
// dispatch without inspecting labels.
type SummaryKind string

const (
	SummaryKindAnalyze SummaryKind = "analyze"
	SummaryKindCompare SummaryKind = "compare"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string        `json:"label"`
	Kind    SummaryKind   `json:"kind"`
	Metrics []SummaryItem `json:"metrics"`
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string `json:"label"` // e.g. "Failures", "New", "Fixed"
	Value string `json:"value"`
	Kind  string `json:"kind"` // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
