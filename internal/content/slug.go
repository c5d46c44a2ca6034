package content

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	separatorRun = regexp.MustCompile(`[\s_]+`)
	nonSlugRun   = regexp.MustCompile(`[^a-z0-9]+`)
	tagSymbols   = strings.NewReplacer("+", " plus ", "#", " sharp ")
)

// SlugFromPath derives an item slug from its source file name: the base name
// without extension, lowercased, with runs of whitespace and underscores
// folded to a single hyphen. The result is not validated; see ValidSlug.
func SlugFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(strings.TrimSpace(base))
	return separatorRun.ReplaceAllString(base, "-")
}

// ValidSlug reports whether s is lowercase ASCII alphanumerics separated by
// single hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// TagSlug turns a free-form tag into a URL segment. Accents are stripped,
// "+" and "#" are spelled out ("C++" is "c-plus-plus", "C#" is "c-sharp"),
// and any run of other characters becomes a hyphen. A leading "#" is
// dropped. It returns "" when nothing usable remains.
func TagSlug(tag string) string {
	tag = tagSymbols.Replace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, tag)
	if err != nil {
		folded = tag
	}
	folded = nonSlugRun.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}
