// Package export writes and reads the file reports: the flat failure CSV, the
// comparison CSV, and their HTML pages.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dkoosis/faildiff/pkg/diff"
	"github.com/dkoosis/faildiff/pkg/failure"
)

// Default report file names.
const (
	DefaultCSVName            = "test_failures.csv"
	DefaultHTMLName           = "test_failures.html"
	DefaultComparisonCSVName  = "comparison.csv"
	DefaultComparisonHTMLName = "comparison.html"
	reportsDir                = "reports"
)

var (
	// ErrHeader means a CSV does not carry the failure report columns.
	ErrHeader = errors.New("missing failure report columns")
	// ErrNoReport means no failure CSV was found where one was expected.
	ErrNoReport = errors.New("no failure report found")
)

// requiredColumns must be present for a CSV to be read as a failure report.
var requiredColumns = []string{"Test Name", "Class Name"}

// SortForReport orders records the way the flat reports list them: by
// origin, module, class name, then test name.
func SortForReport(records []failure.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.ModuleName != b.ModuleName {
			return a.ModuleName < b.ModuleName
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.TestName < b.TestName
	})
}

// WriteCSV writes records as the flat failure report, one row per record in
// the order given.
func WriteCSV(w io.Writer, records []failure.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(failure.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write %s: %w", r.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a flat failure report. Columns are located by header name,
// so reordered or extra columns are tolerated; absent optional columns read
// as empty.
func ReadCSV(r io.Reader) ([]failure.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = trimBOM(header)

	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrHeader, name)
		}
	}

	var records []failure.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		ordered := make([]string, len(failure.Columns))
		for i, name := range failure.Columns {
			if at, ok := pos[name]; ok && at < len(row) {
				ordered[i] = row[at]
			}
		}
		records = append(records, failure.FromRow(ordered))
	}
	return records, nil
}

// LoadCSV reads the failure report at path.
func LoadCSV(path string) ([]failure.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadIndex reads the failure report at path into an index. Rows sharing an
// identity key collapse to the last one.
func LoadIndex(path string) (*diff.Index, error) {
	records, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return diff.NewIndex(records), nil
}

// FindCSV looks for the named report in dir, then in dir/reports.
func FindCSV(dir, name string) (string, error) {
	if name == "" {
		name = DefaultCSVName
	}
	for _, candidate := range []string{
		filepath.Join(dir, name),
		filepath.Join(dir, reportsDir, name),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNoReport, name, dir)
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
