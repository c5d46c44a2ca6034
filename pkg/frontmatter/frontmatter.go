package frontmatter

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontmatter is returned when the document does not open with a fence.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnclosedFrontmatter is returned when the opening fence has no matching close.
	ErrUnclosedFrontmatter = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidMatter is returned when the metadata block cannot be decoded.
	ErrInvalidMatter = errors.New("invalid frontmatter")
)

// Syntax identifies the encoding of a metadata block.
type Syntax int

const (
	// None means the document has no metadata block.
	None Syntax = iota
	// YAML blocks are fenced by "---".
	YAML
	// TOML blocks are fenced by "+++".
	TOML
)

// String returns the lowercase syntax name.
func (s Syntax) String() string {
	switch s {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "none"
	}
}

// Delimiter returns the fence line for s.
func (s Syntax) Delimiter() string {
	switch s {
	case YAML:
		return "---"
	case TOML:
		return "+++"
	default:
		return ""
	}
}

var bom = []byte("\xef\xbb\xbf")

// Split separates content into its metadata block and body without decoding
// the block. When the document has no opening fence, Split returns None, the
// whole content as body, and ErrMissingFrontmatter.
func Split(content []byte) (syntax Syntax, matter, body []byte, err error) {
	content = bytes.TrimPrefix(content, bom)
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	first, rest := cutLine(content)
	switch string(trimLine(first)) {
	case YAML.Delimiter():
		syntax = YAML
	case TOML.Delimiter():
		syntax = TOML
	default:
		return None, nil, content, ErrMissingFrontmatter
	}

	delim := syntax.Delimiter()
	offset := 0
	for remaining := rest; remaining != nil; {
		line, next := cutLine(remaining)
		if string(trimLine(line)) == delim {
			return syntax, rest[:offset], next, nil
		}
		offset += len(remaining) - len(next)
		remaining = next
	}
	return syntax, nil, nil, ErrUnclosedFrontmatter
}

// Unmarshal decodes a metadata block of the given syntax into v.
func Unmarshal(syntax Syntax, matter []byte, v any) error {
	var err error
	switch syntax {
	case YAML:
		err = yaml.Unmarshal(matter, v)
	case TOML:
		err = toml.Unmarshal(matter, v)
	default:
		return ErrMissingFrontmatter
	}
	if err != nil {
		return &decodeError{syntax: syntax, err: err}
	}
	return nil
}

// decodeError reports a metadata block that does not decode. It matches
// ErrInvalidMatter and unwraps to the decoder's error.
type decodeError struct {
	syntax Syntax
	err    error
}

func (e *decodeError) Error() string {
	return "decoding " + e.syntax.String() + " frontmatter: " + e.err.Error()
}

func (e *decodeError) Is(target error) bool { return target == ErrInvalidMatter }

func (e *decodeError) Unwrap() error { return e.err }

// Parse extracts frontmatter and body content from a reader.
// If no frontmatter is present, matter is left untouched and the full
// content is returned as body.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but returns ErrMissingFrontmatter if the document
// has no metadata block.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}

	syntax, block, body, err := Split(content)
	if errors.Is(err, ErrMissingFrontmatter) && !required {
		return body, nil
	}
	if err != nil {
		return nil, err
	}

	if err := Unmarshal(syntax, block, matter); err != nil {
		return nil, err
	}
	return body, nil
}

// Format serializes matter in the given syntax, wraps it in fences, and
// appends body separated by a blank line.
func Format(syntax Syntax, matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	delim := syntax.Delimiter()
	if delim == "" {
		return nil, errors.Newf("cannot format frontmatter as %s", syntax)
	}
	buf.WriteString(delim + "\n")

	switch syntax {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(matter); err != nil {
			return nil, errors.Wrap(err, "encoding yaml frontmatter")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding yaml frontmatter")
		}
	case TOML:
		if err := toml.NewEncoder(&buf).Encode(matter); err != nil {
			return nil, errors.Wrap(err, "encoding toml frontmatter")
		}
	}

	buf.WriteString(delim + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// cutLine returns the first line of b without its newline, and the rest.
// rest is nil when b has no newline.
func cutLine(b []byte) (line, rest []byte) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:]
	}
	return b, nil
}

func trimLine(line []byte) []byte {
	return bytes.TrimRight(line, " \t\r")
}
