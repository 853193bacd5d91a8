package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dkoosis/faildiff/internal/collect"
	"github.com/dkoosis/faildiff/internal/detect"
	"github.com/dkoosis/faildiff/pkg/diff"
	"github.com/dkoosis/faildiff/pkg/export"
	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/mapper"
)

type compareOptions struct {
	baselineDir  string
	currentDir   string
	baselineZips []string
	currentZips  []string
	baselineName string
	currentName  string
	reportName   string
	csvName      string
	htmlName     string
	noFiles      bool
}

// side is one loaded half of a comparison.
type side struct {
	name    string
	records []failure.Record
}

func newCompareCommand(a *app) *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare [BASELINE CURRENT]",
		Short: "Compare two runs and report new, common, and fixed failures",
		Long: `Compare a baseline run against a current run. Each side may be a failure
CSV report, a directory holding test_failures.csv (directly or under
reports/), or one or more zip archives given with --baseline-zip and
--current-zip.

Exits 1 when the current run has failures the baseline did not.`,
		Example: `  faildiff compare base/ head/
  faildiff compare --baseline-dir base --current-dir head
  faildiff compare --baseline-zip a.zip --baseline-zip b.zip --current-zip c.zip`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compare(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.baselineDir, "baseline-dir", "", "baseline report directory or CSV file")
	f.StringVar(&opts.currentDir, "current-dir", "", "current report directory or CSV file")
	f.StringArrayVar(&opts.baselineZips, "baseline-zip", nil, "baseline zip archive (repeatable)")
	f.StringArrayVar(&opts.currentZips, "current-zip", nil, "current zip archive (repeatable)")
	f.StringVar(&opts.baselineName, "baseline-name", "", "display name for the baseline (default from path)")
	f.StringVar(&opts.currentName, "current-name", "", "display name for the current run (default from path)")
	f.StringVar(&opts.reportName, "report-name", "", "failure report file name looked up in directories (default test_failures.csv)")
	f.StringVar(&opts.csvName, "comparison-csv", export.DefaultComparisonCSVName, "comparison CSV file name")
	f.StringVar(&opts.htmlName, "comparison-html", export.DefaultComparisonHTMLName, "comparison HTML file name")
	f.BoolVar(&opts.noFiles, "no-files", false, "print the summary only; write no report files")
	return cmd
}

func (a *app) compare(ctx context.Context, args []string, opts *compareOptions) error {
	if err := opts.resolveArgs(args); err != nil {
		return WrapExitError(ExitUsage, "compare", err)
	}

	baseline, err := a.loadSide(ctx, "baseline", opts.baselineDir, opts.baselineZips, opts)
	if err != nil {
		return err
	}
	current, err := a.loadSide(ctx, "current", opts.currentDir, opts.currentZips, opts)
	if err != nil {
		return err
	}
	if opts.baselineName != "" {
		baseline.name = opts.baselineName
	}
	if opts.currentName != "" {
		current.name = opts.currentName
	}

	baseIdx := a.index("baseline", baseline)
	curIdx := a.index("current", current)
	res := diff.Compare(baseIdx, curIdx)

	a.log.WithFields(logrus.Fields{
		"new":    len(res.New),
		"common": len(res.Common),
		"fixed":  len(res.Fixed),
	}).Info("comparison done")
	if !res.HasRegressions() {
		a.log.Info("No new regressions detected!")
	}

	if !opts.noFiles {
		if err := a.writeComparisonReports(res, baseline.name, current.name, opts); err != nil {
			return WrapExitError(ExitUsage, "write reports", err)
		}
	}

	a.print(mapper.FromDiff(res, baseline.name, current.name))
	if res.HasRegressions() {
		return outcome(ExitFailure)
	}
	return nil
}

// resolveArgs folds positional BASELINE CURRENT into the directory options
// and checks that each side has exactly one kind of source.
func (o *compareOptions) resolveArgs(args []string) error {
	switch len(args) {
	case 0:
	case 2:
		if o.baselineDir != "" || o.currentDir != "" || len(o.baselineZips) > 0 || len(o.currentZips) > 0 {
			return errors.New("positional BASELINE CURRENT cannot be combined with --baseline-*/--current-* flags")
		}
		o.baselineDir, o.currentDir = args[0], args[1]
	default:
		return errors.New("expected BASELINE and CURRENT")
	}

	for _, s := range []struct {
		label string
		dir   string
		zips  []string
	}{
		{"baseline", o.baselineDir, o.baselineZips},
		{"current", o.currentDir, o.currentZips},
	} {
		switch {
		case s.dir == "" && len(s.zips) == 0:
			return fmt.Errorf("no %s given: pass a directory, CSV report, or --%s-zip", s.label, s.label)
		case s.dir != "" && len(s.zips) > 0:
			return fmt.Errorf("give either --%s-dir or --%s-zip, not both", s.label, s.label)
		}
	}
	return nil
}

// loadSide reads one side of the comparison from a path or a set of zips.
func (a *app) loadSide(ctx context.Context, label, path string, zips []string, opts *compareOptions) (side, error) {
	if len(zips) > 0 {
		return a.loadZips(ctx, label, zips)
	}

	format, err := detect.Path(path)
	if err != nil {
		return side{}, WrapExitError(ExitUsage, label, err)
	}
	a.log.WithFields(logrus.Fields{"side": label, "path": path, "format": format}).Debug("loading input")

	switch format {
	case detect.Directory:
		reportName := opts.reportName
		if reportName == "" {
			reportName = a.cfg.CSVName
		}
		csvPath, err := export.FindCSV(path, reportName)
		if err != nil {
			return side{}, WrapExitError(ExitNoData, label, err)
		}
		return a.loadCSV(label, csvPath)
	case detect.FailureCSV:
		return a.loadCSV(label, path)
	case detect.Zip:
		return a.loadZips(ctx, label, []string{path})
	case detect.ComparisonCSV:
		return side{}, NewExitError(ExitUsage, fmt.Sprintf("%s: %s is a comparison report, not a failure report", label, path))
	default:
		return side{}, NewExitError(ExitUsage, fmt.Sprintf("%s: %s is not a directory, failure CSV, or zip archive", label, path))
	}
}

func (a *app) loadCSV(label, path string) (side, error) {
	records, err := export.LoadCSV(path)
	if err != nil {
		return side{}, WrapExitError(ExitUsage, label, err)
	}
	a.log.WithFields(logrus.Fields{"side": label, "path": path, "records": len(records)}).Info("loaded report")
	return side{name: csvDisplayName(path), records: records}, nil
}

func (a *app) loadZips(ctx context.Context, label string, zips []string) (side, error) {
	res, err := collect.Run(ctx, zips, a.collectOptions())
	if errors.Is(err, collect.ErrNoData) {
		return side{}, WrapExitError(ExitNoData, label, res.Warnings)
	}
	if err != nil {
		return side{}, WrapExitError(ExitUsage, label, err)
	}
	a.log.WithFields(logrus.Fields{"side": label, "archives": res.Readable(), "records": len(res.Records)}).Info("loaded archives")
	return side{name: zipDisplayName(zips), records: res.Records}, nil
}

// index builds the lookup for one side, noting rows that collapsed.
func (a *app) index(label string, s side) *diff.Index {
	ix := diff.NewIndex(s.records)
	if n := ix.Duplicates(); n > 0 {
		a.log.WithFields(logrus.Fields{"side": label, "duplicates": n}).Debug("duplicate test keys collapsed to last occurrence")
	}
	return ix
}

func (a *app) writeComparisonReports(res diff.Result, baselineName, currentName string, opts *compareOptions) error {
	csvPath := filepath.Join(a.cfg.OutputDir, opts.csvName)
	if err := export.WriteFile(csvPath, func(w io.Writer) error {
		return export.WriteComparisonCSV(w, res)
	}); err != nil {
		return err
	}
	a.log.WithField("path", csvPath).Info("wrote comparison CSV")

	htmlPath := filepath.Join(a.cfg.OutputDir, opts.htmlName)
	page := export.NewComparisonPage(res, baselineName, currentName, a.now())
	if err := export.WriteFile(htmlPath, func(w io.Writer) error {
		return export.WriteComparisonHTML(w, page)
	}); err != nil {
		return err
	}
	a.log.WithField("path", htmlPath).Info("wrote comparison HTML")
	return nil
}

// csvDisplayName names a run after the directory holding its report,
// skipping a trailing "reports" directory.
func csvDisplayName(path string) string {
	dir := filepath.Dir(filepath.Clean(path))
	if filepath.Base(dir) == "reports" {
		dir = filepath.Dir(dir)
	}
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return name
}

// zipDisplayName names a run after its first archive, noting any others.
func zipDisplayName(zips []string) string {
	first := filepath.Base(zips[0])
	name := strings.TrimSuffix(first, filepath.Ext(first))
	if len(zips) > 1 {
		name += fmt.Sprintf(" +%d", len(zips)-1)
	}
	return name
}
