package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/faildiff/internal/browse"
	"github.com/dkoosis/faildiff/internal/collect"
	"github.com/dkoosis/faildiff/internal/detect"
	"github.com/dkoosis/faildiff/pkg/export"
	"github.com/dkoosis/faildiff/pkg/failure"
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <zip|csv|dir>...",
		Short: "Browse failures interactively with a live filter",
		Long: `Open an interactive table of failures. Inputs may be zip archives, failure
CSV reports, or directories holding a failure report.

Keys: / filter, enter apply, esc clear, pgup/pgdown scroll detail, q quit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.browse(cmd.Context(), args)
		},
	}
}

func (a *app) browse(ctx context.Context, paths []string) error {
	if !isTTYWriter(a.stdout) {
		return NewExitError(ExitUsage, "browse needs a terminal; use analyze --format llm when piping")
	}

	records, err := a.loadBrowseInputs(ctx, paths)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.log.Info("No test failures/errors found!")
		return nil
	}
	export.SortForReport(records)

	title := fmt.Sprintf("faildiff: %s", strings.Join(baseNames(paths), ", "))
	if err := browse.Run(ctx, title, records, a.stdin, a.stdout); err != nil {
		return WrapExitError(ExitUsage, "browse", err)
	}
	return nil
}

// loadBrowseInputs gathers records from every input. Zips are collected as
// one batch so they share the worker pool.
func (a *app) loadBrowseInputs(ctx context.Context, paths []string) ([]failure.Record, error) {
	var (
		records []failure.Record
		zips    []string
	)
	for _, path := range paths {
		format, err := detect.Path(path)
		if err != nil {
			return nil, WrapExitError(ExitUsage, "browse", err)
		}
		switch format {
		case detect.Zip:
			zips = append(zips, path)
		case detect.FailureCSV:
			rs, err := export.LoadCSV(path)
			if err != nil {
				return nil, WrapExitError(ExitUsage, "browse", err)
			}
			records = append(records, rs...)
		case detect.Directory:
			csvPath, err := export.FindCSV(path, a.cfg.CSVName)
			if err != nil {
				return nil, WrapExitError(ExitNoData, "browse", err)
			}
			rs, err := export.LoadCSV(csvPath)
			if err != nil {
				return nil, WrapExitError(ExitUsage, "browse", err)
			}
			records = append(records, rs...)
		default:
			return nil, NewExitError(ExitUsage, fmt.Sprintf("browse: %s is not a zip archive or failure report", path))
		}
	}

	if len(zips) > 0 {
		res, err := collect.Run(ctx, zips, a.collectOptions())
		switch {
		case errors.Is(err, collect.ErrNoData) && len(records) == 0:
			return nil, WrapExitError(ExitNoData, "browse", res.Warnings)
		case err != nil && !errors.Is(err, collect.ErrNoData):
			return nil, WrapExitError(ExitUsage, "browse", err)
		}
		records = append(records, res.Records...)
	}
	return records, nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
