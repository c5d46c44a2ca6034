package render

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/content"
)

const refScheme = "ref:"

// embedOnly is the reason given for ref: targets outside links.
const embedOnly = "ref: is only valid as a link target, not as an image or embed source"

// embedAttrs are the attributes that load a resource rather than link to it.
var embedAttrs = []struct {
	selector string
	attr     string
}{
	{"img[src]", "src"},
	{"source[src]", "src"},
	{"script[src]", "src"},
	{"link[href]", "href"},
}

// splitRef returns the target of a ref: URL without its fragment.
func splitRef(dest string) (target, fragment string, ok bool) {
	dest = strings.TrimSpace(dest)
	if !strings.HasPrefix(dest, refScheme) {
		return "", "", false
	}
	target, fragment, _ = strings.Cut(strings.TrimPrefix(dest, refScheme), "#")
	return target, fragment, true
}

// resolveRef finds the item named by target as seen from item from. target
// is "<kind>/<slug>" or a bare "<slug>" of the same kind as from.
func resolveRef(set *collection.Set, from *content.Item, target string) (*content.Item, error) {
	notFound := &ReferenceError{Kind: from.Kind, Slug: from.Slug, Path: from.SourcePath, Target: target}

	kind, slug := from.Kind, strings.TrimSpace(target)
	if k, s, ok := strings.Cut(slug, "/"); ok {
		parsed, err := content.ParseKind(k)
		if err != nil {
			return nil, notFound
		}
		kind, slug = parsed, s
	}

	item, ok := set.Lookup(kind, strings.Trim(slug, "/"))
	if !ok {
		return nil, notFound
	}
	return item, nil
}

// resolveRelated resolves the related front matter list of item, keeping
// its order.
func resolveRelated(set *collection.Set, item *content.Item) ([]*content.Item, error) {
	if len(item.Related) == 0 {
		return nil, nil
	}
	related := make([]*content.Item, 0, len(item.Related))
	for _, target := range item.Related {
		r, err := resolveRef(set, item, target)
		if err != nil {
			return nil, err
		}
		related = append(related, r)
	}
	return related, nil
}

// rewriteRefs replaces ref: link targets in an HTML fragment with the URL of
// the referenced item.
func rewriteRefs(set *collection.Set, site Site, from *content.Item, body []byte) ([]byte, error) {
	if !bytes.Contains(body, []byte(refScheme)) {
		return body, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing rendered body")
	}

	var refErr error
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		target, fragment, ok := splitRef(href)
		if !ok {
			return true
		}
		item, err := resolveRef(set, from, target)
		if err != nil {
			refErr = err
			return false
		}
		u := site.URL(item.URLPath())
		if fragment != "" {
			u += "#" + fragment
		}
		s.SetAttr("href", u)
		return true
	})
	if refErr != nil {
		return nil, refErr
	}
	for _, ea := range embedAttrs {
		doc.Find(ea.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, _ := s.Attr(ea.attr)
			if target, _, ok := splitRef(src); ok {
				refErr = embedError(from, target)
				return false
			}
			return true
		})
		if refErr != nil {
			return nil, refErr
		}
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return nil, errors.Wrap(err, "serializing rendered body")
	}
	return []byte(out), nil
}

func embedError(from *content.Item, target string) *ReferenceError {
	return &ReferenceError{
		Kind:   from.Kind,
		Slug:   from.Slug,
		Path:   from.SourcePath,
		Target: target,
		Reason: embedOnly,
	}
}

// refParser reads Markdown bodies for reference checks. Reference-style
// links are resolved against their definitions during parsing.
var refParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// bodyRefs returns the ref: targets of links and of images in a Markdown
// body, in document order.
func bodyRefs(body string) (links, embeds []string) {
	if !strings.Contains(body, refScheme) {
		return nil, nil
	}
	src := []byte(body)
	doc := refParser.Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Link:
			if target, _, ok := splitRef(string(n.Destination)); ok {
				links = append(links, target)
			}
		case *ast.Image:
			if target, _, ok := splitRef(string(n.Destination)); ok {
				embeds = append(embeds, target)
			}
		}
		return ast.WalkContinue, nil
	})
	return links, embeds
}

// CheckReferences returns one *ReferenceError for every related entry and
// in-body ref: link in set whose target is missing, and for every ref: used
// as an image source, in collection order. Unlike Render it does not stop at
// the first failure.
func CheckReferences(set *collection.Set) []error {
	var errs []error
	for _, c := range set.Collections() {
		for _, item := range c.Items {
			for _, target := range item.Related {
				if _, err := resolveRef(set, item, target); err != nil {
					errs = append(errs, err)
				}
			}
			links, embeds := bodyRefs(item.Body)
			for _, target := range links {
				if _, err := resolveRef(set, item, target); err != nil {
					errs = append(errs, err)
				}
			}
			for _, target := range embeds {
				errs = append(errs, embedError(item, target))
			}
		}
	}
	return errs
}
