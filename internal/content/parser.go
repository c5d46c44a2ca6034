package content

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/pkg/frontmatter"
)

// Parser turns raw file contents into items. It is stateless and safe for
// concurrent use.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses data read from path as an item of the given kind.
func (p *Parser) Parse(kind Kind, path string, data []byte) (*Item, error) {
	slug := SlugFromPath(path)
	fail := func(field string, err error) error {
		return &ItemError{Kind: kind, Slug: slug, Path: path, Field: field, Err: err}
	}

	if !kind.Valid() {
		return nil, fail("", errors.Newf("unknown content kind %d", kind))
	}
	if !ValidSlug(slug) {
		return nil, fail("", errors.Wrapf(folioerrors.ErrMalformedMetadata, "invalid slug %q derived from file name", slug))
	}

	syntax, block, body, err := frontmatter.Split(data)
	if err != nil {
		return nil, fail("", errors.Mark(errors.Wrap(err, "reading metadata block"), folioerrors.ErrMalformedMetadata))
	}

	var raw map[string]any
	if err := frontmatter.Unmarshal(syntax, block, &raw); err != nil {
		return nil, fail("", errors.Mark(err, folioerrors.ErrMalformedMetadata))
	}

	meta, key, err := normalizeMetadata(raw)
	if err != nil {
		return nil, fail(key, errors.Mark(err, folioerrors.ErrMalformedMetadata))
	}

	for _, f := range kind.RequiredFields() {
		if err := checkField(meta, f); err != nil {
			return nil, fail(f.Name, err)
		}
	}

	item := &Item{
		Kind:       kind,
		Slug:       slug,
		Body:       string(body),
		Meta:       meta,
		SourcePath: path,
	}
	if field, err := decodeFields(item, meta); err != nil {
		return nil, fail(field, err)
	}

	if strings.TrimSpace(item.Body) == "" {
		return nil, fail("", folioerrors.ErrEmptyBody)
	}

	return item, nil
}

// checkField verifies that a required field is present and well-typed.
func checkField(meta Metadata, f Field) error {
	if !meta.Has(f.Name) {
		return errors.Wrap(folioerrors.ErrMalformedMetadata, "missing required field")
	}
	wrongType := func() error {
		return errors.Wrapf(folioerrors.ErrMalformedMetadata, "expected %s, got %T", f.Type, meta[f.Name])
	}

	switch f.Type {
	case FieldString:
		s, ok := meta.String(f.Name)
		if !ok {
			return wrongType()
		}
		if strings.TrimSpace(s) == "" {
			return errors.Wrap(folioerrors.ErrMalformedMetadata, "must not be empty")
		}
	case FieldDate:
		if _, ok := meta.Time(f.Name); !ok {
			return errors.Wrapf(folioerrors.ErrMalformedMetadata, "expected %s, got %v", f.Type, meta[f.Name])
		}
	case FieldInt:
		if _, ok := meta.Int(f.Name); !ok {
			return wrongType()
		}
	case FieldStringList:
		list, ok := meta.Strings(f.Name)
		if !ok {
			return wrongType()
		}
		if len(nonBlank(list)) == 0 {
			return errors.Wrap(folioerrors.ErrMalformedMetadata, "must not be empty")
		}
	case FieldURL:
		s, ok := meta.String(f.Name)
		if !ok {
			return wrongType()
		}
		u, err := url.Parse(strings.TrimSpace(s))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Wrapf(folioerrors.ErrMalformedMetadata, "expected %s, got %q", f.Type, s)
		}
	}
	return nil
}

// decodeFields fills the typed convenience fields. Optional fields that are
// present with the wrong shape are rejected.
func decodeFields(item *Item, meta Metadata) (string, error) {
	wrongType := func(key, want string) (string, error) {
		return key, errors.Wrapf(folioerrors.ErrMalformedMetadata, "expected %s, got %T", want, meta[key])
	}

	if meta.Has("title") {
		s, ok := meta.String("title")
		if !ok {
			return wrongType("title", "string")
		}
		item.Title = strings.TrimSpace(s)
	}
	if item.Title == "" {
		return "title", errors.Wrap(folioerrors.ErrMalformedMetadata, "missing required field")
	}

	if meta.Has("date") {
		t, ok := meta.Time("date")
		if !ok {
			return "date", errors.Wrapf(folioerrors.ErrMalformedMetadata, "expected date, got %v", meta["date"])
		}
		item.Date = t
	}

	for _, f := range []struct {
		key string
		dst *string
	}{
		{"description", &item.Description},
		{"category", &item.Category},
		{"github", &item.GitHub},
	} {
		if !meta.Has(f.key) {
			continue
		}
		s, ok := meta.String(f.key)
		if !ok {
			return wrongType(f.key, "string")
		}
		*f.dst = strings.TrimSpace(s)
	}

	for _, f := range []struct {
		key string
		dst *[]string
	}{
		{"tags", &item.Tags},
		{"related", &item.Related},
		{"stack", &item.Stack},
	} {
		if !meta.Has(f.key) {
			continue
		}
		list, ok := meta.Strings(f.key)
		if !ok {
			return wrongType(f.key, "list of strings")
		}
		*f.dst = nonBlank(list)
	}

	for _, tag := range item.Tags {
		if TagSlug(tag) == "" {
			return "tags", errors.Wrapf(folioerrors.ErrMalformedMetadata, "tag %q has no letters or digits", tag)
		}
	}

	if meta.Has("order") {
		n, ok := meta.Int("order")
		if !ok {
			return wrongType("order", "integer")
		}
		item.Order = n
	}

	if meta.Has("draft") {
		b, ok := meta.Bool("draft")
		if !ok {
			return wrongType("draft", "boolean")
		}
		item.Draft = b
	}

	return "", nil
}

func nonBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
