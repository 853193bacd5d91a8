package render

import (
	"encoding/json"

	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/pattern"
)

// schemaVersion is bumped whenever the document layout changes incompatibly.
const schemaVersion = "2"

// JSON renders a faildiff result document for automation: the console
// patterns plus every record set in full, keyed by set name.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Document is the JSON output layout.
type Document struct {
	Tool     string                      `json:"tool"`
	Schema   string                      `json:"schema"`
	Patterns []PatternEntry              `json:"patterns"`
	Records  map[string][]failure.Record `json:"records"`
}

// PatternEntry is one console pattern tagged with its type.
type PatternEntry struct {
	Type pattern.PatternType `json:"type"`
	Data pattern.Pattern     `json:"data"`
}

// Render builds the document. Record sets are lifted out of the pattern
// list; sets sharing a name are concatenated in order.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	doc := Document{
		Tool:     "faildiff",
		Schema:   schemaVersion,
		Patterns: make([]PatternEntry, 0, len(patterns)),
		Records:  make(map[string][]failure.Record),
	}

	for _, p := range patterns {
		if set, ok := p.(*pattern.Records); ok {
			recs := doc.Records[set.Set]
			if recs == nil {
				recs = []failure.Record{}
			}
			doc.Records[set.Set] = append(recs, set.Records...)
			continue
		}
		doc.Patterns = append(doc.Patterns, PatternEntry{Type: p.Type(), Data: p})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"tool": "faildiff", "error": err.Error()})
		return string(errJSON) + "\n"
	}
	return string(data) + "\n"
}
