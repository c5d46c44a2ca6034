// Package collection groups parsed items by kind into ordered collections.
package collection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/content"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

// Collection is the ordered list of items of one kind. Items are shared with
// the parser output and must not be modified.
type Collection struct {
	Kind  content.Kind
	Name  string
	Items []*content.Item
}

// Len returns the number of items.
func (c *Collection) Len() int {
	return len(c.Items)
}

// Tag is one entry of the tag index.
type Tag struct {
	Name  string
	Slug  string
	Posts []*content.Item
}

// Set holds every collection of a build plus lookup indexes.
type Set struct {
	Posts    *Collection
	Projects *Collection
	// Tags lists post tags sorted by slug; each tag's posts keep collection order.
	Tags []*Tag

	byKey map[string]*content.Item
	byTag map[string]*Tag
}

// DuplicateError reports two items of the same kind sharing a slug.
type DuplicateError struct {
	Kind   content.Kind
	Slug   string
	First  string
	Second string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s slug %q in %s and %s", e.Kind, e.Slug, e.First, e.Second)
}

// Unwrap returns ErrDuplicateSlug.
func (e *DuplicateError) Unwrap() error {
	return folioerrors.ErrDuplicateSlug
}

// TagConflictError reports two different tag spellings that map to the same
// URL slug, which would otherwise merge distinct tags onto one page.
type TagConflictError struct {
	Slug       string
	First      string
	FirstPath  string
	Second     string
	SecondPath string
}

// Error implements the error interface.
func (e *TagConflictError) Error() string {
	return fmt.Sprintf("tag %q in %s and tag %q in %s share the slug %q",
		e.Second, e.SecondPath, e.First, e.FirstPath, e.Slug)
}

// Unwrap returns ErrMalformedMetadata.
func (e *TagConflictError) Unwrap() error {
	return folioerrors.ErrMalformedMetadata
}

// Assemble partitions items by kind, rejects duplicate slugs, and sorts each
// partition with its kind's ordering. The input slice is not modified.
// Duplicates are checked in input order, so the reported pair is stable.
func Assemble(items []*content.Item) (*Set, error) {
	set := &Set{
		Posts:    &Collection{Kind: content.KindPost, Name: content.KindPost.Dir()},
		Projects: &Collection{Kind: content.KindProject, Name: content.KindProject.Dir()},
		byKey:    make(map[string]*content.Item, len(items)),
		byTag:    make(map[string]*Tag),
	}

	for _, item := range items {
		key := item.Key()
		if prev, ok := set.byKey[key]; ok {
			return nil, &DuplicateError{
				Kind:   item.Kind,
				Slug:   item.Slug,
				First:  prev.SourcePath,
				Second: item.SourcePath,
			}
		}
		set.byKey[key] = item

		c := set.Collection(item.Kind)
		if c == nil {
			return nil, errors.Newf("item %s has unknown kind %d", item.SourcePath, item.Kind)
		}
		c.Items = append(c.Items, item)
	}

	for _, c := range set.Collections() {
		slices.SortFunc(c.Items, c.Kind.Compare)
	}

	if err := set.indexTags(); err != nil {
		return nil, err
	}
	return set, nil
}

// indexTags builds the tag index. Spellings that differ only in case or in
// spacing and separators name the same tag; any other pair of spellings
// sharing a slug is a TagConflictError.
func (s *Set) indexTags() error {
	firstPath := make(map[string]string)
	for _, item := range s.Posts.Items {
		seen := make(map[string]bool, len(item.Tags))
		for _, name := range item.Tags {
			slug := content.TagSlug(name)
			if slug == "" {
				continue
			}

			tag, ok := s.byTag[slug]
			if ok && tagKey(tag.Name) != tagKey(name) {
				return &TagConflictError{
					Slug:       slug,
					First:      tag.Name,
					FirstPath:  firstPath[slug],
					Second:     name,
					SecondPath: item.SourcePath,
				}
			}
			if seen[slug] {
				continue
			}
			seen[slug] = true

			if !ok {
				// First spelling in collection order names the tag
				tag = &Tag{Name: name, Slug: slug}
				s.byTag[slug] = tag
				s.Tags = append(s.Tags, tag)
				firstPath[slug] = item.SourcePath
			}
			tag.Posts = append(tag.Posts, item)
		}
	}
	slices.SortFunc(s.Tags, func(a, b *Tag) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return nil
}

// tagKey folds case and treats runs of spaces, hyphens, and underscores as
// one separator.
func tagKey(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, " ")
}

// Collection returns the collection for kind k, or nil for an unknown kind.
func (s *Set) Collection(k content.Kind) *Collection {
	switch k {
	case content.KindPost:
		return s.Posts
	case content.KindProject:
		return s.Projects
	default:
		return nil
	}
}

// Collections returns every collection in canonical kind order.
func (s *Set) Collections() []*Collection {
	return []*Collection{s.Posts, s.Projects}
}

// Lookup finds an item by kind and slug.
func (s *Set) Lookup(k content.Kind, slug string) (*content.Item, bool) {
	item, ok := s.byKey[content.Key(k, slug)]
	return item, ok
}

// Tag finds a tag by its slug.
func (s *Set) Tag(slug string) (*Tag, bool) {
	t, ok := s.byTag[slug]
	return t, ok
}

// Len returns the total number of items across collections.
func (s *Set) Len() int {
	return len(s.byKey)
}
