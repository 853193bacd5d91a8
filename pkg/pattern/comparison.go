package pattern

// Comparison represents baseline/current deltas.
type Comparison struct {
	Label   string           `json:"label"`
	Changes []ComparisonItem `json:"changes"`
}

// ComparisonItem is a single before/after delta. A positive Change means
// more failures in the current run.
type ComparisonItem struct {
	Label  string  `json:"label"`
	Before string  `json:"before"`
	After  string  `json:"after"`
	Change float64 `json:"change"`
	Unit   string  `json:"unit,omitempty"`
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
