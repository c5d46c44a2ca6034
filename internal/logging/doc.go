// Package logging provides structured logging for the folio CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package; the text handler is TTY-aware and colors
// output only when the destination is a terminal.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("published", "generation", 42)
//
// Loggers travel in a context.Context via [NewContext] and [FromContext].
//
// # Secrets
//
// Attribute values whose key looks sensitive (for example "webhook_secret")
// are masked by [Handler] before they are written.
//
// # Several Outputs
//
// [Tee] fans records out to several handlers, such as the terminal and a
// --log-file.
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//	}
package logging
