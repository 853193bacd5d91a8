package main

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dkoosis/faildiff/internal/collect"
	"github.com/dkoosis/faildiff/pkg/export"
	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/mapper"
)

type analyzeOptions struct {
	noFiles bool
}

func newAnalyzeCommand(a *app) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <zip>...",
		Short: "Extract failures from zipped JUnit reports and write flat reports",
		Long: `Extract failed, errored, and aborted tests from one or more zip archives of
JUnit XML reports. Writes test_failures.csv and test_failures.html to the
output directory unless no failures were found.

Unreadable archives are reported and skipped; if none can be read the
command exits 3.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.flags.CSVName, "csv-name", "", "CSV report file name (default test_failures.csv)")
	f.StringVar(&a.flags.HTMLName, "html-name", "", "HTML report file name (default test_failures.html)")
	f.BoolVar(&opts.noFiles, "no-files", false, "print the summary only; write no report files")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, paths []string, opts *analyzeOptions) error {
	res, err := collect.Run(cmd.Context(), paths, a.collectOptions())
	if errors.Is(err, collect.ErrNoData) {
		a.print(mapper.FromFailures(nil, sources(res)))
		return NewExitError(ExitNoData, "no readable archives among the inputs")
	}
	if err != nil {
		return WrapExitError(ExitUsage, "analyze", err)
	}

	for _, ar := range res.Archives {
		if ar.Err == nil {
			a.log.WithFields(logrus.Fields{"archive": ar.Origin, "issues": len(ar.Records)}).Info("processed archive")
		}
	}

	records := res.Records
	export.SortForReport(records)

	if len(records) == 0 {
		a.log.Info("No test failures/errors found!")
	} else if !opts.noFiles {
		if err := a.writeFlatReports(records); err != nil {
			return WrapExitError(ExitUsage, "write reports", err)
		}
	}

	a.print(mapper.FromFailures(records, sources(res)))
	if len(records) > 0 {
		return outcome(ExitFailure)
	}
	return nil
}

func (a *app) writeFlatReports(records []failure.Record) error {
	csvPath := filepath.Join(a.cfg.OutputDir, a.cfg.CSVName)
	if err := export.WriteFile(csvPath, func(w io.Writer) error {
		return export.WriteCSV(w, records)
	}); err != nil {
		return err
	}
	a.log.WithField("path", csvPath).Info("wrote CSV report")

	htmlPath := filepath.Join(a.cfg.OutputDir, a.cfg.HTMLName)
	page := export.NewPage(records, a.now())
	if err := export.WriteFile(htmlPath, func(w io.Writer) error {
		return export.WriteHTML(w, page)
	}); err != nil {
		return err
	}
	a.log.WithField("path", htmlPath).Info("wrote HTML report")
	return nil
}

// sources describes each archive of a batch for the summary.
func sources(res *collect.Result) []mapper.Source {
	if res == nil {
		return nil
	}
	out := make([]mapper.Source, 0, len(res.Archives))
	for _, ar := range res.Archives {
		name := ar.Origin
		if name == "" {
			name = filepath.Base(ar.Path)
		}
		out = append(out, mapper.Source{Name: name, Failures: len(ar.Records), Err: ar.Err})
	}
	return out
}
