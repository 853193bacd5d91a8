package pattern

// TestTable is a list of failed tests under one heading.
type TestTable struct {
	Label   string          `json:"label"`
	Source  string          `json:"source,omitempty"` // section the table belongs to, e.g. "new"
	Results []TestTableItem `json:"results"`
}

// TestTableItem is a single failed test.
type TestTableItem struct {
	Name     string `json:"name"`   // identity key
	Status   string `json:"status"` // "error", "failure", "aborted", "fixed"
	Module   string `json:"module,omitempty"`
	Duration string `json:"duration,omitempty"`
	Details  string `json:"details,omitempty"` // message, possibly multi-line
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
