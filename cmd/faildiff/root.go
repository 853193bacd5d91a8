package main

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/faildiff/internal/archive"
	"github.com/dkoosis/faildiff/internal/collect"
	"github.com/dkoosis/faildiff/internal/config"
	"github.com/dkoosis/faildiff/internal/logging"
	"github.com/dkoosis/faildiff/internal/version"
	"github.com/dkoosis/faildiff/pkg/junit"
	"github.com/dkoosis/faildiff/pkg/pattern"
	"github.com/dkoosis/faildiff/pkg/render"
)

// app is the state shared by every command once flags are parsed.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	flags      config.Flags

	cfg *config.Resolved
	log *logrus.Logger
	now func() time.Time
}

func newRootCommand(a *app) *cobra.Command {
	if a.now == nil {
		a.now = time.Now
	}

	cmd := &cobra.Command{
		Use:           "faildiff",
		Short:         "Extract and compare test failures from zipped JUnit reports",
		Long:          "faildiff pulls failed, errored, and aborted tests out of zipped JUnit XML reports,\nwrites flat CSV/HTML reports, and compares two runs to find regressions.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetVersionTemplate(version.String() + "\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default .faildiff.yaml, then $XDG_CONFIG_HOME/faildiff/.faildiff.yaml)")
	pf.StringVar(&a.flags.Format, "format", "", "output format: auto, terminal, llm, json")
	pf.StringVar(&a.flags.Theme, "theme", "", "terminal theme: default, orca, mono")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "disable colors")
	pf.StringVarP(&a.flags.OutputDir, "output-dir", "o", "", "directory for report files (default .)")
	pf.IntVar(&a.flags.Workers, "workers", 0, "archives processed in parallel (default GOMAXPROCS)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: error, warn, info, debug")
	pf.BoolVar(&a.flags.LogJSON, "log-json", false, "emit logs as JSON")

	cmd.AddCommand(newAnalyzeCommand(a))
	cmd.AddCommand(newCompareCommand(a))
	cmd.AddCommand(newBrowseCommand(a))
	cmd.AddCommand(newVersionCommand(a))
	return cmd
}

// setup loads and resolves configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.flags.NoColorSet = cmd.Flags().Changed("no-color")

	file, path, loadErr := config.Load(a.configPath)
	if loadErr != nil && a.configPath != "" {
		return WrapExitError(ExitUsage, "config", loadErr)
	}

	cfg, err := config.Resolve(file, a.flags)
	if err != nil {
		return WrapExitError(ExitUsage, "config", err)
	}
	a.cfg = cfg
	a.log = logging.New(a.stderr, cfg.LogLevel, cfg.LogJSON)

	if loadErr != nil {
		a.log.WithError(loadErr).Warn("ignoring config file, using defaults")
	}
	a.log.WithFields(logrus.Fields{
		"config":  path,
		"theme":   cfg.Theme + " (" + cfg.ThemeSource + ")",
		"format":  cfg.Format + " (" + cfg.FormatSource + ")",
		"workers": cfg.Workers,
	}).Debug("configuration resolved")
	return nil
}

// collectOptions wires configuration into the batch extractor.
func (a *app) collectOptions() collect.Options {
	return collect.Options{
		Reader:    archive.NewReader(a.cfg.ReportSuffixes...),
		Extractor: junit.NewExtractor(a.cfg.Classifier()),
		Workers:   a.cfg.Workers,
		Log:       logrus.NewEntry(a.log),
	}
}

// print renders patterns to stdout in the configured format.
func (a *app) print(patterns []pattern.Pattern) {
	mode := resolveFormat(a.cfg.Format, a.stdout)
	theme := render.ThemeByName(a.cfg.EffectiveTheme())
	width, _ := termSize(a.stdout)
	_, _ = io.WriteString(a.stdout, render.ByName(mode, theme, width).Render(patterns))
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// TTY = terminal, piped = llm
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(a.stdout, version.String()+"\n")
			return err
		},
	}
}
