package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dkoosis/faildiff/pkg/diff"
	"github.com/dkoosis/faildiff/pkg/failure"
)

// Comparison report categories, written in this section order.
const (
	CategoryNew    = "NEW FAILURE"
	CategoryCommon = "COMMON (Known)"
	CategoryFixed  = "FIXED"
)

// ComparisonColumns is the header of the comparison CSV.
var ComparisonColumns = []string{
	"Category",
	"Test Name",
	"Class Name",
	"Source File",
	"Module",
	"Status",
	"Message",
}

// Section is one category of a comparison with its records.
type Section struct {
	Category string
	Records  []failure.Record
}

// Sections splits res into its three categories in report order.
func Sections(res diff.Result) []Section {
	return []Section{
		{Category: CategoryNew, Records: res.New},
		{Category: CategoryCommon, Records: res.Common},
		{Category: CategoryFixed, Records: res.Fixed},
	}
}

// WriteComparisonCSV writes res as new failures, then common, then fixed,
// each section in identity key order.
func WriteComparisonCSV(w io.Writer, res diff.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ComparisonColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range Sections(res) {
		for _, r := range s.Records {
			row := []string{
				s.Category,
				r.TestName,
				r.ClassName,
				r.SourceFile,
				r.ModuleName,
				string(r.Status),
				r.Message,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write %s: %w", r.Key(), err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
