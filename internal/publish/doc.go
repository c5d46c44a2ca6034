// Package publish stores rendered generations on disk and switches the live
// site between them atomically.
//
// # Layout
//
// Everything lives under a single serving root:
//
//	<serve_root>/
//	├── current -> generations/<id>/site
//	├── state.json
//	├── staging/
//	│   └── <uuid>/
//	│       ├── manifest.json
//	│       └── site/...
//	├── generations/
//	│   └── <id>/
//	│       ├── manifest.json
//	│       └── site/...
//	└── failures/
//	    └── <id>.json
//
// # Publishing
//
// [Store.Stage] writes a successful build into a fresh staging directory
// together with a manifest of per-file SHA-256 hashes. [Store.Promote] moves
// the staging directory into generations/ and replaces the current symlink
// with rename(2), so a reader resolving current sees either the whole
// previous generation or the whole new one:
//
//	gen, _ := store.NextGeneration()
//	out, err := builder.Build(ctx, gen)
//	staged, err := store.Stage(ctx, out, publish.WithCommit(sha))
//	if err != nil {
//	    return err // previous generation untouched
//	}
//	if err := store.Promote(staged); err != nil {
//	    store.Discard(staged)
//	}
//
// # Retention
//
// [Store.Prune] keeps the newest generations and never removes the live
// one, even when it is older than the retention window (after a rollback).
// Failure reports written by [Store.RecordFailure] are pruned to the same
// count.
//
// # Integrity
//
// [Store.Verify] re-hashes a generation against its manifest and returns
// [ErrGenerationCorrupted] on mismatch. [Store.Rollback] verifies before
// re-pointing current.
package publish
