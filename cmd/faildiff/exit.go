package main

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitSuccess = 0 // nothing failed
	ExitFailure = 1 // failures (analyze) or new failures (compare) found
	ExitUsage   = 2 // bad flags, arguments, config, or unreadable input
	ExitNoData  = 3 // every input was unreadable; not the same as zero failures
)

// ExitError carries an exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// outcome is a silent exit code for a completed run.
func outcome(code int) error {
	if code == ExitSuccess {
		return nil
	}
	return &ExitError{Code: code}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors come from flag or argument parsing and map to ExitUsage.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}
