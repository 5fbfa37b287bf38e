package cli

import (
	"fmt"
	"os"

	"github.com/tules/tules/errors"
)

// Exit codes. Resolution failures and launch failures get distinct codes so
// scripts can branch on them.
const (
	ExitOK                  = 0
	ExitError               = 1
	ExitNotFound            = 2
	ExitAlreadyTerminal     = 3
	ExitProviderUnavailable = 4
	ExitSandboxUnavailable  = 5
)

// ErrorHandler provides user-friendly error messages.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle prints a user-facing message for err and returns the process exit
// code to use.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return ExitOK
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeJobNotFound:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'tules list --all' to see known jobs.\n")
		return ExitNotFound

	case errors.ErrCodeJobAmbiguous:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		if tulesErr, ok := err.(*errors.TulesError); ok {
			if matches, ok := tulesErr.Details["matches"]; ok {
				fmt.Fprintf(os.Stderr, "Matching jobs: %v\n", matches)
			}
		}
		fmt.Fprintf(os.Stderr, "Use more characters of the id to disambiguate.\n")
		return ExitNotFound

	case errors.ErrCodeAlreadyTerminal:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return ExitAlreadyTerminal

	case errors.ErrCodeProviderUnavailable:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'tules doctor' to diagnose provider installation.\n")
		return ExitProviderUnavailable

	case errors.ErrCodeSandboxUnavailable:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Check that docker is installed and running, or pass --no-sandbox.\n")
		return ExitSandboxUnavailable

	case errors.ErrCodeForkUnsupported:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return ExitError

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		if h.Verbose {
			if tulesErr, ok := err.(*errors.TulesError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", tulesErr.ToJSON())
			}
		}
		return ExitError
	}
}
