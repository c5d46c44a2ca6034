package content

import (
	"path"
	"time"
)

// Item is one parsed content file. Items are immutable once returned by the
// parser; later stages share them by pointer without copying.
type Item struct {
	Kind  Kind
	Slug  string
	Title string
	// Body is the raw Markdown after the metadata block.
	Body string
	Meta Metadata

	Date        time.Time
	Description string
	Tags        []string
	Related     []string
	Draft       bool

	Category string
	Stack    []string
	GitHub   string
	Order    int

	SourcePath string
}

// Key identifies the item across kinds, e.g. "post/hello-world".
func (i *Item) Key() string {
	return Key(i.Kind, i.Slug)
}

// Key joins a kind and slug into the form used by cross-references.
func Key(k Kind, slug string) string {
	return k.String() + "/" + slug
}

// URLPath returns the item's page directory relative to the site root,
// e.g. "posts/hello-world/".
func (i *Item) URLPath() string {
	return path.Join(i.Kind.Dir(), i.Slug) + "/"
}

// OutputPath returns the key of the item's page in the build output.
func (i *Item) OutputPath() string {
	return path.Join(i.Kind.Dir(), i.Slug, "index.html")
}
