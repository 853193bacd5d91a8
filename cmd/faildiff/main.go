// faildiff extracts failed tests from zipped JUnit reports and compares two
// runs to find regressions.
//
// Usage:
//
//	faildiff analyze run-1.zip run-2.zip -o reports/
//	faildiff compare baseline/ current/
//	faildiff compare --baseline-zip base.zip --current-zip head.zip
//	faildiff browse run.zip
//
// Output modes (auto-detected):
//
//	terminal  styled Unicode output (default when TTY)
//	llm       terse plain text for AI consumption (default when piped)
//	json      structured JSON for automation
//
// Exit codes: 0 clean, 1 failures or regressions found, 2 usage or input
// error, 3 no readable data.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(&app{stdin: stdin, stdout: stdout, stderr: stderr})
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Err == nil {
		// Outcome codes carry no message; the report already said it.
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "faildiff: %v\n", err)
	return GetExitCode(err)
}
