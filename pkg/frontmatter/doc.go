// Package frontmatter splits Markdown documents into a metadata block and a
// body, and decodes the metadata block.
//
// Two block syntaxes are recognized. YAML is fenced by lines containing only
// "---"; TOML is fenced by lines containing only "+++". The opening fence must
// be the first line of the document. Everything after the closing fence is
// the body.
//
// # Basic Usage
//
//	var meta map[string]any
//	body, err := frontmatter.MustParse(r, &meta)
//	if err != nil {
//		return err
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure conditions:
//
//   - [ErrMissingFrontmatter]: the document does not open with a fence
//   - [ErrUnclosedFrontmatter]: the opening fence is never closed
//   - [ErrInvalidMatter]: the block exists but does not decode
//
// These can be checked using errors.Is.
//
// Both Unix (LF) and Windows (CRLF) line endings are accepted. Bodies are
// returned with LF line endings.
package frontmatter
