package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
)

const (
	exitCodeFailure      = 1
	exitCodeUnauthorized = 3
	exitCodeCanceled     = 130
)

const reauthHint = "the Config API rejected the credentials; set AEGIS_TOKEN or pass --email to sign in again"

func main() {
	if code := runMain(Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}
	outcome := classifyError(err)
	if !outcome.silent {
		emitCommandError(outcome.err, outcome.message, outcome.code, stderr)
	}
	return outcome.code
}

// commandOutcome is how a failed command is reported and which code it exits with.
type commandOutcome struct {
	code    int
	message string
	err     error
	silent  bool
}

func classifyError(err error) commandOutcome {
	var ee *exitError
	switch {
	case errors.As(err, &ee):
		cause := err
		if ee.err != nil {
			cause = ee.err
		}
		return commandOutcome{code: ee.code, message: "command failed", err: cause, silent: ee.silent}
	case errors.Is(err, context.Canceled):
		return commandOutcome{code: exitCodeCanceled, message: "command canceled", err: err}
	case configapi.IsUnauthorized(err):
		return commandOutcome{code: exitCodeUnauthorized, message: "config api unauthorized", err: err}
	default:
		return commandOutcome{code: exitCodeFailure, message: "command failed", err: err}
	}
}

func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	ctx := currentCommandExecutionContext()
	if ctx.UsesStructuredLog {
		logger := loggerForFatalPath(ctx, stderr)
		logger.Error(message, "exit_code", exitCode, "error", err)
		return
	}

	switch exitCode {
	case exitCodeCanceled:
		fmt.Fprintln(stderr, "canceled")
	case exitCodeUnauthorized:
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, reauthHint)
	default:
		fmt.Fprintln(stderr, err)
	}
}

func loggerForFatalPath(ctx commandExecutionContext, stderr io.Writer) *slog.Logger {
	cfg, err := logging.LoadConfigFromEnv()
	if err != nil {
		cfg = logging.DefaultConfig()
	}
	return logging.NewLogger(cfg, stderr, ctx.CommandPath)
}
