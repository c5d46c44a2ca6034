package render

import (
	"encoding/xml"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists every HTML page in pages. lastmod maps page keys to the
// modification date to report, when known.
func buildSitemap(site Site, pages map[string][]byte, lastmod map[string]time.Time) ([]byte, error) {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		if strings.HasSuffix(k, ".html") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	set := sitemapURLSet{Xmlns: sitemapNS}
	for _, k := range keys {
		u := sitemapURL{Loc: site.AbsURL(strings.TrimSuffix(k, "index.html"))}
		if t, ok := lastmod[k]; ok && !t.IsZero() {
			u.LastMod = t.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding sitemap")
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
