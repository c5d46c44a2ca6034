// Package build runs the parse, assemble, and render stages for one
// generation and returns the rendered site as an in-memory Output.
//
// A Builder never writes to the serving root. Writing and promotion are the
// publish package's job; the trigger package sequences the two.
//
// Failures are returned as a *StageError naming the stage that failed. The
// underlying error keeps the sentinel from internal/errors, so
// errors.KindOf reports the failure class:
//
//	out, err := b.Build(ctx, gen)
//	var se *build.StageError
//	if errors.As(err, &se) {
//	    log.Error("build failed", "stage", se.Stage, "kind", errors.KindOf(err), "slug", se.Slug())
//	}
package build
