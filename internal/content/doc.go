// Package content parses Markdown source files into immutable content items.
//
// Each file under <content_dir>/posts or <content_dir>/projects becomes an
// [Item] of the matching [Kind]. A file opens with a metadata block (YAML
// fenced by "---" or TOML fenced by "+++") followed by a Markdown body:
//
//	---
//	title: Hello
//	date: 2025-06-01
//	tags: [go, web]
//	---
//	First paragraph.
//
// The slug comes from the file name. Metadata values are normalized to
// string, int, bool, time.Time or []string; anything else is rejected.
//
// Every failure is an [*ItemError] wrapping one of the build-fatal
// sentinels from internal/errors, so callers can report the offending file
// and field and classify the failure with errors.KindOf.
package content
