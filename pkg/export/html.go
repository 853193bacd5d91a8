package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dkoosis/faildiff/pkg/diff"
	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/mapper"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const timeLayout = "2006-01-02 15:04:05"

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"seconds": func(d float64) string { return fmt.Sprintf("%.3f", d) },
	"sectionClass": func(category string) string {
		switch category {
		case CategoryNew:
			return "new"
		case CategoryCommon:
			return "common"
		default:
			return "fixed"
		}
	},
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// Count is one row of a breakdown table.
type Count struct {
	Name  string
	Count int
}

// Page is the data behind the flat HTML report.
type Page struct {
	Title     string
	Generated string
	Total     int
	Failures  int
	Errors    int
	Aborted   int
	Modules   []Count // highest count first
	Archives  []Count // in order of first appearance
	Records   []failure.Record
}

// NewPage builds the flat report page. Records are listed in the order given.
func NewPage(records []failure.Record, generated time.Time) Page {
	status := mapper.StatusCounts(records)
	p := Page{
		Title:     "Test Failure Report",
		Generated: generated.Format(timeLayout),
		Total:     len(records),
		Failures:  status[failure.StatusFailure],
		Errors:    status[failure.StatusError],
		Aborted:   status[failure.StatusAborted],
		Records:   records,
	}
	for _, mc := range mapper.ModuleCounts(records) {
		p.Modules = append(p.Modules, Count{Name: mc.Module, Count: mc.Count})
	}
	seen := make(map[string]int)
	for _, r := range records {
		i, ok := seen[r.Origin]
		if !ok {
			i = len(p.Archives)
			seen[r.Origin] = i
			p.Archives = append(p.Archives, Count{Name: r.Origin})
		}
		p.Archives[i].Count++
	}
	return p
}

// WriteHTML renders the flat report page.
func WriteHTML(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "failures.html.tmpl", p)
}

// ComparisonPage is the data behind the comparison HTML report.
type ComparisonPage struct {
	Title        string
	Generated    string
	BaselineName string
	CurrentName  string
	Sections     []Section
}

// NewComparisonPage builds the comparison report page.
func NewComparisonPage(res diff.Result, baselineName, currentName string, generated time.Time) ComparisonPage {
	return ComparisonPage{
		Title:        "Test Failure Comparison",
		Generated:    generated.Format(timeLayout),
		BaselineName: baselineName,
		CurrentName:  currentName,
		Sections:     Sections(res),
	}
}

// WriteComparisonHTML renders the comparison report page.
func WriteComparisonHTML(w io.Writer, p ComparisonPage) error {
	return templates.ExecuteTemplate(w, "comparison.html.tmpl", p)
}
