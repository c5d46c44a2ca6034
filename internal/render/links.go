package render

import (
	"bytes"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// linkAttrs maps selectors to the attribute holding the link.
var linkAttrs = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"img[src]", "src"},
	{"script[src]", "src"},
	{"source[src]", "src"},
}

// VerifyLinks checks that every internal link on every HTML page in pages
// resolves to a key of pages. Directory URLs resolve to their index.html.
// Links to other hosts and non-http schemes are ignored. Pages are checked
// in sorted order so the reported failure is stable.
func VerifyLinks(pages map[string][]byte, site Site) error {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		if strings.HasSuffix(k, ".html") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pages[key]))
		if err != nil {
			return errors.Wrapf(err, "parsing page %s", key)
		}

		var linkErr error
		for _, la := range linkAttrs {
			doc.Find(la.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				link, _ := s.Attr(la.attr)
				if !resolves(pages, site, key, link) {
					linkErr = &LinkError{Page: key, Link: link}
					return false
				}
				return true
			})
			if linkErr != nil {
				return linkErr
			}
		}
	}
	return nil
}

// resolves reports whether link, found on page key, is external or names a
// key of pages.
func resolves(pages map[string][]byte, site Site, key, link string) bool {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "#") {
		return true
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	switch {
	case u.Scheme == "ref":
		return false
	case u.Scheme != "" || u.Host != "":
		host := site.host()
		if host == "" || u.Scheme+"://"+u.Host != host {
			return true
		}
	}

	var target string
	if strings.HasPrefix(u.Path, "/") || u.Host != "" {
		base := site.BasePath()
		p := u.Path
		if p == strings.TrimSuffix(base, "/") {
			p = base
		}
		if !strings.HasPrefix(p, base) {
			return false
		}
		target = strings.TrimPrefix(p, base)
	} else {
		if u.Path == "" {
			return true
		}
		target = path.Join(path.Dir(key), u.Path)
	}

	return lookupPage(pages, target, strings.HasSuffix(u.Path, "/"))
}

func lookupPage(pages map[string][]byte, target string, dir bool) bool {
	// Browsers clamp ".." at the site root
	target = path.Clean("/" + target)[1:]
	if target == "" || dir {
		_, ok := pages[path.Join(target, "index.html")]
		return ok
	}
	if _, ok := pages[target]; ok {
		return true
	}
	_, ok := pages[path.Join(target, "index.html")]
	return ok
}
