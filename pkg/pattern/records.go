package pattern

import "github.com/dkoosis/faildiff/pkg/failure"

// Record set names.
const (
	RecordSetFailures = "failures"
	RecordSetNew      = "new"
	RecordSetCommon   = "common"
	RecordSetFixed    = "fixed"
)

// Records carries complete failure records, stack traces included, for
// structured output. Console renderers skip it.
type Records struct {
	Set     string           `json:"set"`
	Records []failure.Record `json:"records"`
}

func (r *Records) Type() PatternType { return PatternTypeRecords }
