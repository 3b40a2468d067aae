package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/roach88/vaspipr/internal/config"
	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/store"
	"github.com/roach88/vaspipr/internal/vasp"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Computation failure (inconsistent inputs, missing spin channel, etc.)
	ExitCommandError = 2 // Command error (invalid paths, parse errors, bad flags, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeParse        = "E010" // Malformed PROCAR/EIGENVAL
	ErrCodeInconsistent = "E011" // PROCAR/EIGENVAL disagree, or spin missing
	ErrCodeStore        = "E020" // Database error
	ErrCodeRunNotFound  = "E021" // Unknown run ID
	ErrCodeManifest     = "E030" // Invalid batch manifest
	ErrCodeUsage        = "E040" // Invalid flag or argument value
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error has already been written through an
	// OutputFormatter, so main does not print it a second time.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classifyError maps a domain error to an error code and exit code.
func classifyError(err error) (string, int) {
	var (
		parseErr *vasp.ParseError
		writeErr *report.WriteError
	)
	switch {
	case errors.As(err, &writeErr):
		return ErrCodeWriteFailed, ExitCommandError
	case errors.As(err, &parseErr):
		return ErrCodeParse, ExitCommandError
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case errors.Is(err, vasp.ErrIndexOutOfRange):
		return ErrCodeUsage, ExitCommandError
	case errors.Is(err, ipr.ErrShapeMismatch), errors.Is(err, ipr.ErrNoSpin):
		return ErrCodeInconsistent, ExitFailure
	case errors.Is(err, store.ErrRunNotFound):
		return ErrCodeRunNotFound, ExitCommandError
	case errors.Is(err, config.ErrInvalidManifest):
		return ErrCodeManifest, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the matching ExitError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classifyError(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	e := WrapExitError(exit, message, err)
	e.Reported = true
	return e
}

// Usage reports an invalid argument as a command error.
func (f *OutputFormatter) Usage(message string) error {
	_ = f.Error(ErrCodeUsage, message, nil)
	e := NewExitError(ExitCommandError, message)
	e.Reported = true
	return e
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
