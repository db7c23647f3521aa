package exitcode

import (
	"os"

	"github.com/opsdeck/opsdeck/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 3

	// NetworkError indicates a network connectivity issue
	NetworkError = 4

	// ValidationError indicates client-side input validation failed
	ValidationError = 5

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.IsAuthFailure(err) {
		return AuthError
	}

	if errors.IsTransportFailure(err) {
		return NetworkError
	}

	switch errors.Code(err) {
	case errors.ErrCodeValidationRequired, errors.ErrCodeValidationFormat, errors.ErrCodeValidationRange:
		return ValidationError
	}

	return GeneralError
}
