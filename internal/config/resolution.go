package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/dkoosis/faildiff/internal/archive"
	"github.com/dkoosis/faildiff/internal/logging"
	"github.com/dkoosis/faildiff/pkg/classify"
	"github.com/dkoosis/faildiff/pkg/export"
)

// Defaults.
const (
	DefaultTheme    = "default"
	DefaultFormat   = "auto"
	DefaultLogLevel = "warn"
)

// Formats lists the accepted output format names.
var Formats = []string{"auto", "terminal", "llm", "json"}

// Themes lists the accepted theme names.
var Themes = []string{"default", "orca", "mono"}

// ErrInvalid marks a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Source names where a resolved value came from.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Flags holds command-line values. Empty strings and zero numbers mean the
// flag was not given; NoColorSet tracks the one boolean that can be
// explicitly turned off.
type Flags struct {
	Theme      string
	Format     string
	OutputDir  string
	CSVName    string
	HTMLName   string
	LogLevel   string
	Workers    int
	NoColor    bool
	NoColorSet bool
	LogJSON    bool
}

// Resolved is the effective configuration after applying every source.
type Resolved struct {
	ReportSuffixes  []string
	Workers         int
	Theme           string
	Format          string
	NoColor         bool
	OutputDir       string
	CSVName         string
	HTMLName        string
	SourceExtension string
	RootToken       string
	Modules         []classify.Rule
	LogLevel        string
	LogJSON         bool

	// Resolution metadata, for debug logging.
	ThemeSource    string
	FormatSource   string
	NoColorSource  string
	WorkersSource  string
	LogLevelSource string
}

// Resolve merges file, environment, and flags. A nil file means no config
// file was read.
func Resolve(file *File, flags Flags) (*Resolved, error) {
	if file == nil {
		file = &File{}
	}

	r := &Resolved{
		ReportSuffixes:  archive.DefaultSuffixes,
		Workers:         runtime.GOMAXPROCS(0),
		OutputDir:       ".",
		CSVName:         export.DefaultCSVName,
		HTMLName:        export.DefaultHTMLName,
		SourceExtension: classify.DefaultSourceExtension,
		RootToken:       classify.DefaultRootToken,
		Modules:         classify.DefaultRules,
		LogJSON:         flags.LogJSON,
		WorkersSource:   SourceDefault,
	}

	r.Theme, r.ThemeSource = pick(flags.Theme, "FAILDIFF_THEME", file.Theme, DefaultTheme)
	r.Format, r.FormatSource = pick(flags.Format, "FAILDIFF_FORMAT", file.Format, DefaultFormat)
	r.LogLevel, r.LogLevelSource = pick(flags.LogLevel, "FAILDIFF_LOG_LEVEL", file.LogLevel, DefaultLogLevel)
	r.OutputDir, _ = pick(flags.OutputDir, "FAILDIFF_OUTPUT_DIR", file.OutputDir, r.OutputDir)
	r.CSVName, _ = pick(flags.CSVName, "", file.CSVName, r.CSVName)
	r.HTMLName, _ = pick(flags.HTMLName, "", file.HTMLName, r.HTMLName)

	if len(file.ReportSuffixes) > 0 {
		r.ReportSuffixes = file.ReportSuffixes
	}
	if file.SourceExtension != "" {
		r.SourceExtension = file.SourceExtension
	}
	if file.RootToken != "" {
		r.RootToken = file.RootToken
	}
	if len(file.Modules) > 0 {
		r.Modules = file.Modules
	}

	// Workers: CLI > env > file > default
	switch {
	case flags.Workers > 0:
		r.Workers, r.WorkersSource = flags.Workers, SourceCLI
	case os.Getenv("FAILDIFF_WORKERS") != "":
		n, err := strconv.Atoi(os.Getenv("FAILDIFF_WORKERS"))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: FAILDIFF_WORKERS=%q", ErrInvalid, os.Getenv("FAILDIFF_WORKERS"))
		}
		r.Workers, r.WorkersSource = n, SourceEnv
	case file.Workers > 0:
		r.Workers, r.WorkersSource = file.Workers, SourceFile
	}

	// NoColor: CLI > env > file > default
	r.NoColor, r.NoColorSource = file.NoColor, SourceFile
	if !file.NoColor {
		r.NoColorSource = SourceDefault
	}
	if flags.NoColorSet {
		r.NoColor, r.NoColorSource = flags.NoColor, SourceCLI
	} else if v := getEnvBool("FAILDIFF_NO_COLOR"); v != nil {
		r.NoColor, r.NoColorSource = *v, SourceEnv
	} else if os.Getenv("NO_COLOR") != "" {
		r.NoColor, r.NoColorSource = true, SourceEnv
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks enumerated values.
func (r *Resolved) Validate() error {
	if !slices.Contains(Formats, r.Format) {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalid, r.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(Themes, r.Theme) {
		return fmt.Errorf("%w: theme %q (want one of %s)", ErrInvalid, r.Theme, strings.Join(Themes, ", "))
	}
	if err := logging.ValidLevel(r.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if r.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, r.Workers)
	}
	return nil
}

// Classifier builds the module classifier described by the configuration.
func (r *Resolved) Classifier() *classify.Classifier {
	return classify.New(
		classify.WithRules(r.Modules),
		classify.WithRootToken(r.RootToken),
		classify.WithSourceExtension(r.SourceExtension),
	)
}

// EffectiveTheme is the theme to render with, honoring NoColor.
func (r *Resolved) EffectiveTheme() string {
	if r.NoColor {
		return "mono"
	}
	return r.Theme
}

// pick returns the first non-empty of flag, env[envKey], file, def, and the
// source it came from.
func pick(flag, envKey, file, def string) (string, string) {
	if flag != "" {
		return flag, SourceCLI
	}
	if envKey != "" {
		if v := os.Getenv(envKey); v != "" {
			return v, SourceEnv
		}
	}
	if file != "" {
		return file, SourceFile
	}
	return def, SourceDefault
}

// getEnvBool returns the first parseable boolean among keys, or nil.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return &b
			}
		}
	}
	return nil
}
