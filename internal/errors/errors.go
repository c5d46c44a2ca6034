package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid content, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Build-fatal error taxonomy. None of these are recovered locally: any of them
// aborts the current stage and blocks publication.
var (
	// ErrMalformedMetadata indicates the front matter block is absent, cannot be
	// decoded as a key/value structure, or lacks a required field.
	ErrMalformedMetadata = errors.New("malformed metadata")

	// ErrEmptyBody indicates the content body is blank after trimming.
	ErrEmptyBody = errors.New("empty body")

	// ErrDuplicateSlug indicates two items in the same collection share a slug.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrUnresolvedReference indicates a cross-reference or internal link
	// targets a slug or path absent from the generation.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrWriteFailure indicates a page could not be persisted to the output tree.
	ErrWriteFailure = errors.New("write failure")
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// taxonomy lists the build-fatal sentinels with their reported names.
var taxonomy = []struct {
	err  error
	name string
}{
	{ErrMalformedMetadata, "MalformedMetadata"},
	{ErrEmptyBody, "EmptyBody"},
	{ErrDuplicateSlug, "DuplicateSlug"},
	{ErrUnresolvedReference, "UnresolvedReference"},
	{ErrWriteFailure, "WriteFailure"},
}

// KindOf returns the taxonomy name of the first build-fatal sentinel found in
// err's chain, or "Internal" for any other non-nil error.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.name
		}
	}
	return "Internal"
}

// IsBuildError reports whether err carries one of the build-fatal sentinels.
func IsBuildError(err error) bool {
	k := KindOf(err)
	return k != "" && k != "Internal"
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check folio.yaml or run: folio check",
	}
}

// NewBuildError classifies a failed build for the CLI. Content problems are
// user errors; write failures are system errors.
func NewBuildError(err error) *ExitError {
	if errors.Is(err, ErrWriteFailure) {
		return NewSystemError(err, "Check free space and permissions on the serving root")
	}
	if IsBuildError(err) {
		return NewUserError(err, "Run: folio check")
	}
	return NewSystemError(err, "")
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
