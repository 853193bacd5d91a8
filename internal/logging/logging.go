// Package logging builds the logrus logger shared by faildiff commands.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w at the named level. Diagnostics always
// go to w (normally stderr) so they never mix with report output.
func New(w io.Writer, level string, json bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(ParseLevel(level))
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
		})
	}
	return logger
}

// ParseLevel converts a level name such as "debug" or "warn" to a logrus
// level. Blank or unknown names default to InfoLevel; use ValidLevel to
// reject them instead.
func ParseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// ValidLevel reports an error for a level name logrus does not know.
func ValidLevel(s string) error {
	_, err := logrus.ParseLevel(strings.TrimSpace(s))
	return err
}

// Discard returns an entry that drops everything, for tests and library use.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
