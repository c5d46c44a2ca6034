// Package errors provides error handling conventions for the folio CLI.
//
// It defines the build-fatal error taxonomy and an ExitError type that
// carries a process exit code and an optional suggestion. Call sites wrap and
// inspect errors with github.com/cockroachdb/errors.
//
// # Build Errors
//
// Every content or rendering inconsistency is build-fatal. The taxonomy is
// expressed as sentinel errors that are wrapped with context at the call site
// and checked with [Is]:
//
//   - [ErrMalformedMetadata]: front matter absent, unparsable, or missing a
//     required field
//   - [ErrEmptyBody]: the body is blank after trimming
//   - [ErrDuplicateSlug]: two items in one collection share a slug
//   - [ErrUnresolvedReference]: a cross-reference or internal link targets
//     something absent from the generation
//   - [ErrWriteFailure]: the output tree could not be persisted
//
// [KindOf] maps an arbitrary error chain back to the taxonomy name used in
// failure reports.
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): content or configuration problem the user can fix
//   - ExitSystem (2): I/O or environment failure
//
// # ExitError
//
//	err := folioerrors.NewUserError(folioerrors.ErrInvalidConfig, "Check folio.yaml")
//	var exitErr *folioerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
