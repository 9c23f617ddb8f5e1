package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned to the shell.
const (
	// ExitSuccess means the command completed and found nothing to fail on.
	ExitSuccess = 0

	// ExitFailure means the command could not complete: bad configuration,
	// an unreachable server or a failed connection test.
	ExitFailure = 1

	// ExitIssuesFound means an issue check found issues and was asked to
	// fail the build.
	ExitIssuesFound = 2
)

// ExitError represents a command execution failure with a specific exit code.
//
// This error type allows Cobra RunE functions to signal non-zero exit codes
// without calling os.Exit() directly, enabling testable CLI behavior.
// When a command fails, it returns NewExitError(code), which propagates up
// to [RunWithConfig] where [IsExitError] extracts the code for [ExecuteResult].
type ExitError struct {
	// Code is the exit code to return to the shell.
	// See [ExitFailure] and [ExitIssuesFound].
	Code int
}

// Error implements the error interface, returning a string in the format
// "exit status N" where N is the exit code.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
//
// Commands print their own diagnostics before returning it:
//
//	if err != nil {
//	    app.Printer.Error(err.Error())
//	    return NewExitError(ExitFailure)
//	}
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError checks if an error is an [ExitError] and extracts its exit code.
//
// Returns (code, true) if err is or wraps an *ExitError. Returns (0, false)
// for nil or other errors.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
