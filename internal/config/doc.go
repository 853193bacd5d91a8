// Package config handles configuration loading and merging for faildiff.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--theme, --format, --no-color, --workers, ...)
//  2. Environment variables (FAILDIFF_*, NO_COLOR)
//  3. YAML config file (.faildiff.yaml in the working directory, else
//     $XDG_CONFIG_HOME/faildiff/.faildiff.yaml)
//  4. Hardcoded defaults
//
// # Environment Variables
//
//   - FAILDIFF_THEME: default, orca, or mono
//   - FAILDIFF_FORMAT: auto, terminal, llm, or json
//   - FAILDIFF_NO_COLOR: "true" or "1" disables colors
//   - NO_COLOR: any non-empty value disables colors
//   - FAILDIFF_WORKERS: archives processed in parallel
//   - FAILDIFF_OUTPUT_DIR: where report files are written
//   - FAILDIFF_LOG_LEVEL: panic, fatal, error, warn, info, debug, or trace
//
// # Module Rules
//
// The modules key replaces the built-in classification table. Entries keep
// their file order, which is their match priority:
//
//	modules:
//	  - keyword: sql
//	    label: sql/core
//	  - keyword: streaming
//	    label: streaming
package config
