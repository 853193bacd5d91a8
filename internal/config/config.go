package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/faildiff/pkg/classify"
)

// FileName is the config file looked up in the working directory and the
// user config directory.
const FileName = ".faildiff.yaml"

// appDir is the subdirectory of the user config directory.
const appDir = "faildiff"

// File mirrors .faildiff.yaml. Zero values mean "not set".
type File struct {
	ReportSuffixes  []string        `yaml:"report_suffixes"`
	Workers         int             `yaml:"workers"`
	Theme           string          `yaml:"theme"`
	Format          string          `yaml:"format"`
	NoColor         bool            `yaml:"no_color"`
	OutputDir       string          `yaml:"output_dir"`
	CSVName         string          `yaml:"csv_name"`
	HTMLName        string          `yaml:"html_name"`
	SourceExtension string          `yaml:"source_extension"`
	RootToken       string          `yaml:"root_token"`
	Modules         []classify.Rule `yaml:"modules"`
	LogLevel        string          `yaml:"log_level"`
}

// Load reads the config file. With an explicit path the file must exist.
// Without one, the local file is tried, then the user config directory; when
// neither exists an empty File is returned.
//
// The returned path names the file that was read, or is empty. On a parse
// error the empty File is returned with the error so callers can warn and
// carry on with defaults.
func Load(path string) (*File, string, error) {
	explicit := path != ""
	if !explicit {
		path = discover()
		if path == "" {
			return &File{}, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &File{}, "", nil
		}
		return &File{}, path, fmt.Errorf("read config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return &File{}, path, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, path, nil
}

// discover finds the config file, local directory first.
func discover() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, appDir, FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
