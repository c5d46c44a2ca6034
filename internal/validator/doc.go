// Package validator checks a content tree without building it.
//
// Where a build stops at the first failure, a check keeps going and
// collects every problem it can find into a [Result]: malformed front
// matter, empty bodies, duplicate slugs, dangling cross-references, and
// broken internal links. A [Reporter] prints the result as text or JSON.
//
// # Core Concepts
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: A single problem with its taxonomy kind and source location.
//   - [Result]: Aggregates issues and provides helper methods.
//
// # Basic Usage
//
//	result, err := validator.Check(ctx, "content", loader, renderer)
//	if err != nil {
//		return err
//	}
//	_ = validator.NewReporter(os.Stdout, validator.FormatText).Report(result)
//	if result.HasErrors() {
//		// exit non-zero
//	}
package validator
