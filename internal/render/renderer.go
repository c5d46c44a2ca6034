package render

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/content"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/parallel"
)

// DefaultRecentPosts is the number of posts on the home page when unset.
const DefaultRecentPosts = 5

// Page is the data passed to every layout.
type Page struct {
	Site  Site
	Title string
	// Path is the page's directory relative to the site root, e.g. "posts/".
	Path string

	Item    *content.Item
	Body    template.HTML
	Related []*content.Item

	Collection *collection.Collection
	Tag        *collection.Tag
	Tags       []*collection.Tag

	Recent   []*content.Item
	Projects []*content.Item
}

// Result is the in-memory output of a render.
type Result struct {
	// Pages maps slash-separated output paths to file contents.
	Pages map[string][]byte
	// Bodies maps item keys ("post/hello") to the rendered Markdown body.
	Bodies map[string]template.HTML
}

// Renderer renders collection sets with a fixed set of layouts.
type Renderer struct {
	md         Markdown
	site       Site
	layoutsDir string
	staticDir  string
	workers    int
	recent     int
	logger     *slog.Logger

	layouts map[string]*template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSite sets the values exposed as .Site.
func WithSite(site Site) Option {
	return func(r *Renderer) {
		r.site = site
	}
}

// WithLayoutsDir sets the directory holding layout overrides.
func WithLayoutsDir(dir string) Option {
	return func(r *Renderer) {
		r.layoutsDir = dir
	}
}

// WithStaticDir sets the directory whose files are copied verbatim.
func WithStaticDir(dir string) Option {
	return func(r *Renderer) {
		r.staticDir = dir
	}
}

// WithWorkers bounds the number of item pages rendered concurrently.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRecentPosts sets how many posts the home page lists.
func WithRecentPosts(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.recent = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New parses the layouts and returns a Renderer.
func New(md Markdown, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		md:      md,
		site:    Site{BaseURL: "/"},
		workers: runtime.GOMAXPROCS(0),
		recent:  DefaultRecentPosts,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	layouts, err := loadLayouts(r.layoutsDir, r.funcs())
	if err != nil {
		return nil, err
	}
	r.layouts = layouts
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"url":    r.site.URL,
		"absurl": r.site.AbsURL,
		"tagurl": func(tag string) string {
			return r.site.URL("tags/" + content.TagSlug(tag) + "/")
		},
		"date": func(layout string, t time.Time) string {
			return t.Format(layout)
		},
		"isodate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"title": func(s string) string {
			// Casers are stateful; one per call keeps concurrent renders safe
			return cases.Title(language.English).String(s)
		},
		"join": strings.Join,
	}
}

// Render produces every page of the site for set. Item pages are rendered
// concurrently; the result does not depend on scheduling. When several items
// fail, the error of the first item in collection order is returned.
func (r *Renderer) Render(ctx context.Context, set *collection.Set) (*Result, error) {
	res := &Result{
		Pages:  make(map[string][]byte),
		Bodies: make(map[string]template.HTML),
	}

	var items []*content.Item
	for _, c := range set.Collections() {
		items = append(items, c.Items...)
	}

	related := make([][]*content.Item, len(items))
	for i, item := range items {
		rel, err := resolveRelated(set, item)
		if err != nil {
			return nil, err
		}
		related[i] = rel
	}

	if err := r.renderItems(ctx, set, items, related, res); err != nil {
		return nil, err
	}

	for _, c := range set.Collections() {
		page := r.page(cases.Title(language.English).String(c.Name), c.Name+"/")
		page.Collection = c
		if err := r.execute(res, LayoutList, path.Join(c.Name, "index.html"), page); err != nil {
			return nil, err
		}
	}

	page := r.page("Tags", "tags/")
	page.Tags = set.Tags
	if err := r.execute(res, LayoutTags, "tags/index.html", page); err != nil {
		return nil, err
	}
	for _, tag := range set.Tags {
		page := r.page(tag.Name, "tags/"+tag.Slug+"/")
		page.Tag = tag
		if err := r.execute(res, LayoutTag, path.Join("tags", tag.Slug, "index.html"), page); err != nil {
			return nil, err
		}
	}

	home := r.page("", "")
	home.Recent = set.Posts.Items[:min(r.recent, len(set.Posts.Items))]
	home.Projects = set.Projects.Items
	if err := r.execute(res, LayoutHome, "index.html", home); err != nil {
		return nil, err
	}

	lastmod := make(map[string]time.Time, len(set.Posts.Items))
	for _, item := range set.Posts.Items {
		lastmod[item.OutputPath()] = item.Date
	}
	sitemap, err := buildSitemap(r.site, res.Pages, lastmod)
	if err != nil {
		return nil, err
	}
	res.Pages["sitemap.xml"] = sitemap

	assets, err := staticAssets(r.staticDir)
	if err != nil {
		return nil, err
	}
	for name, data := range assets {
		if _, ok := res.Pages[name]; ok {
			return nil, errors.Newf("static asset %s collides with a generated page", name)
		}
		res.Pages[name] = data
	}

	if err := VerifyLinks(res.Pages, r.site); err != nil {
		return nil, err
	}

	r.logger.Debug("rendered site", "pages", len(res.Pages), "items", len(items))
	return res, nil
}

type itemResult struct {
	body template.HTML
	page []byte
	err  error
}

func (r *Renderer) renderItems(ctx context.Context, set *collection.Set, items []*content.Item, related [][]*content.Item, res *Result) error {
	if len(items) == 0 {
		return nil
	}

	results, err := parallel.Map(ctx, len(items), r.workers, func(i int) itemResult {
		return r.renderItem(set, items[i], related[i])
	})
	if err != nil {
		return errors.Wrap(err, "rendering items")
	}

	for i, item := range items {
		if results[i].err != nil {
			return results[i].err
		}
		res.Bodies[item.Key()] = results[i].body
		res.Pages[item.OutputPath()] = results[i].page
	}
	return nil
}

func (r *Renderer) renderItem(set *collection.Set, item *content.Item, related []*content.Item) itemResult {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(item.Body), &buf); err != nil {
		return itemResult{err: errors.Wrapf(err, "converting markdown for %s", item.Key())}
	}

	body, err := rewriteRefs(set, r.site, item, buf.Bytes())
	if err != nil {
		return itemResult{err: err}
	}

	layout := LayoutPost
	if item.Kind == content.KindProject {
		layout = LayoutProject
	}

	page := r.page(item.Title, item.URLPath())
	page.Item = item
	page.Body = template.HTML(body)
	page.Related = related

	out, err := r.render(layout, page)
	if err != nil {
		return itemResult{err: errors.Wrapf(err, "rendering %s", item.Key())}
	}
	return itemResult{body: page.Body, page: out}
}

func (r *Renderer) page(title, p string) *Page {
	return &Page{Site: r.site, Title: title, Path: p}
}

func (r *Renderer) execute(res *Result, layout, key string, page *Page) error {
	out, err := r.render(layout, page)
	if err != nil {
		return errors.Wrapf(err, "rendering %s", key)
	}
	res.Pages[key] = out
	return nil
}

func (r *Renderer) render(layout string, page *Page) ([]byte, error) {
	t, ok := r.layouts[layout]
	if !ok {
		return nil, errors.Wrapf(folioerrors.ErrNotFound, "layout %s", layout)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, LayoutBase, page); err != nil {
		return nil, errors.Wrapf(err, "executing %s", layout)
	}
	return buf.Bytes(), nil
}
