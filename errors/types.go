package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Job resolution errors
	ErrCodeJobNotFound     ErrorCode = "JOB_NOT_FOUND"
	ErrCodeJobAmbiguous    ErrorCode = "JOB_AMBIGUOUS"
	ErrCodeAlreadyTerminal ErrorCode = "JOB_ALREADY_TERMINAL"

	// Launch-time errors
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeSandboxUnavailable  ErrorCode = "SANDBOX_UNAVAILABLE"

	// Store errors
	ErrCodeStoreCorrupt ErrorCode = "STORE_CORRUPT"

	// Session discovery errors
	ErrCodeParseSkipped    ErrorCode = "PARSE_SKIPPED"
	ErrCodeNotReversible   ErrorCode = "ENCODING_NOT_REVERSIBLE"
	ErrCodeForkUnsupported ErrorCode = "FORK_UNSUPPORTED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// TulesError represents a structured error with context
type TulesError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *TulesError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TulesError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *TulesError) WithDetail(key string, value interface{}) *TulesError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *TulesError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new TulesError
func New(code ErrorCode, message string) *TulesError {
	return &TulesError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a TulesError
func Wrap(err error, code ErrorCode, message string) *TulesError {
	return &TulesError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific TulesError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	tulesErr, ok := err.(*TulesError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return tulesErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	tulesErr, ok := err.(*TulesError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return tulesErr.Code
}
