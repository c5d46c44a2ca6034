package render

import (
	"embed"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

//go:embed defaults
var defaults embed.FS

// Layout file names.
const (
	LayoutBase    = "base.html"
	LayoutPost    = "post.html"
	LayoutProject = "project.html"
	LayoutList    = "list.html"
	LayoutTag     = "tag.html"
	LayoutTags    = "tags.html"
	LayoutHome    = "home.html"
)

var pageLayouts = []string{LayoutPost, LayoutProject, LayoutList, LayoutTag, LayoutTags, LayoutHome}

const partialsDir = "partials"

// loadLayouts parses base.html and the partials once, then clones that set
// for every page layout. Files in dir take precedence over the embedded
// defaults.
func loadLayouts(dir string, funcs template.FuncMap) (map[string]*template.Template, error) {
	text, err := readLayout(dir, LayoutBase)
	if err != nil {
		return nil, err
	}
	base, err := template.New(LayoutBase).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing layout %s", LayoutBase)
	}

	partials, err := partialNames(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range partials {
		text, err := readLayout(dir, name)
		if err != nil {
			return nil, err
		}
		if _, err := base.New(name).Parse(text); err != nil {
			return nil, errors.Wrapf(err, "parsing layout %s", name)
		}
	}

	layouts := make(map[string]*template.Template, len(pageLayouts))
	for _, name := range pageLayouts {
		text, err := readLayout(dir, name)
		if err != nil {
			return nil, err
		}
		t, err := base.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "cloning base for %s", name)
		}
		if _, err := t.New(name).Parse(text); err != nil {
			return nil, errors.Wrapf(err, "parsing layout %s", name)
		}
		layouts[name] = t
	}
	return layouts, nil
}

// readLayout returns the user's copy of name if present, else the default.
// name is slash-separated relative to the layouts root.
func readLayout(dir, name string) (string, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(err, "reading layout %s", name)
		}
	}
	data, err := defaults.ReadFile(path.Join("defaults/layouts", name))
	if err != nil {
		return "", errors.Wrapf(folioerrors.ErrNotFound, "layout %s", name)
	}
	return string(data), nil
}

// partialNames lists partials from the defaults and dir, deduplicated and
// sorted so parse order is stable.
func partialNames(dir string) ([]string, error) {
	var names []string
	add := func(entries []fs.DirEntry) {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
				continue
			}
			name := path.Join(partialsDir, e.Name())
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	entries, err := defaults.ReadDir(path.Join("defaults/layouts", partialsDir))
	if err != nil {
		return nil, errors.Wrap(err, "reading default partials")
	}
	add(entries)

	if dir != "" {
		entries, err := os.ReadDir(filepath.Join(dir, partialsDir))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, "reading partials")
		}
		add(entries)
	}

	slices.Sort(names)
	return names, nil
}
