package content

import (
	"cmp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the closed set of content kinds.
type Kind int

const (
	// KindPost is a dated article.
	KindPost Kind = iota + 1
	// KindProject is a portfolio entry ordered by an explicit position.
	KindProject
)

// Kinds lists every kind in canonical order.
var Kinds = []Kind{KindPost, KindProject}

// String returns the singular kind name.
func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindProject:
		return "project"
	default:
		return "unknown"
	}
}

// Dir returns the directory name of the kind, both under the content
// directory and in the output tree.
func (k Kind) Dir() string {
	switch k {
	case KindPost:
		return "posts"
	case KindProject:
		return "projects"
	default:
		return ""
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k == KindPost || k == KindProject
}

// ParseKind accepts the singular or plural kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if s == k.String() || s == k.Dir() {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown content kind %q", s)
}

// KindFromDir maps a top-level content directory name to its kind.
func KindFromDir(dir string) (Kind, bool) {
	for _, k := range Kinds {
		if dir == k.Dir() {
			return k, true
		}
	}
	return 0, false
}

// FieldType describes the shape a metadata field must have.
type FieldType int

const (
	FieldString FieldType = iota
	FieldDate
	FieldInt
	FieldStringList
	FieldURL
)

// String returns a human readable type name used in diagnostics.
func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldDate:
		return "date"
	case FieldInt:
		return "integer"
	case FieldStringList:
		return "list of strings"
	case FieldURL:
		return "http(s) URL"
	default:
		return "unknown"
	}
}

// Field is a required metadata key and its expected type.
type Field struct {
	Name string
	Type FieldType
}

var (
	postFields = []Field{
		{"title", FieldString},
		{"date", FieldDate},
	}
	projectFields = []Field{
		{"title", FieldString},
		{"category", FieldString},
		{"stack", FieldStringList},
		{"github", FieldURL},
		{"description", FieldString},
		{"order", FieldInt},
	}
)

// RequiredFields returns the metadata fields every item of kind k must carry.
func (k Kind) RequiredFields() []Field {
	switch k {
	case KindPost:
		return postFields
	case KindProject:
		return projectFields
	default:
		return nil
	}
}

// Compare orders two items of kind k for listing. Posts sort newest first,
// projects by ascending order. Ties fall back to ascending slug, so the
// result is total and independent of input order.
func (k Kind) Compare(a, b *Item) int {
	var c int
	switch k {
	case KindPost:
		c = b.Date.Compare(a.Date)
	case KindProject:
		c = cmp.Compare(a.Order, b.Order)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}
