package render

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/content"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/logging"
)

func testPost(slug string, year int, body string, tags ...string) *content.Item {
	return &content.Item{
		Kind:       content.KindPost,
		Slug:       slug,
		Title:      "Post " + slug,
		Body:       body,
		Date:       time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:       tags,
		SourcePath: "posts/" + slug + ".md",
	}
}

func testProject(slug string, order int, body string) *content.Item {
	return &content.Item{
		Kind:        content.KindProject,
		Slug:        slug,
		Title:       "Project " + slug,
		Body:        body,
		Category:    "Tools",
		Stack:       []string{"Go"},
		GitHub:      "https://github.com/example/" + slug,
		Description: "About " + slug,
		Order:       order,
		SourcePath:  "projects/" + slug + ".md",
	}
}

func assemble(t *testing.T, items ...*content.Item) *collection.Set {
	t.Helper()
	set, err := collection.Assemble(items)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return set
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	opts = append([]Option{
		WithSite(Site{Title: "Test Site", BaseURL: "/"}),
		WithLogger(logging.ForTest(t)),
	}, opts...)
	r, err := New(NewGoldmark(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func fixtureSet(t *testing.T) *collection.Set {
	return assemble(t,
		testPost("old-news", 2025, "Older post.\n", "go"),
		testPost("fresh", 2026, "See [the tool](ref:project/seven#usage) and [old](ref:old-news).\n", "go", "web"),
		testProject("seven", 7, "Seventh.\n"),
		testProject("one", 1, "First.\n"),
		testProject("five", 5, "Fifth.\n"),
	)
}

func TestRender_Pages(t *testing.T) {
	res, err := newRenderer(t).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, key := range []string{
		"index.html",
		"posts/index.html",
		"posts/fresh/index.html",
		"posts/old-news/index.html",
		"projects/index.html",
		"projects/one/index.html",
		"projects/five/index.html",
		"projects/seven/index.html",
		"tags/index.html",
		"tags/go/index.html",
		"tags/web/index.html",
		"sitemap.xml",
		"style.css",
	} {
		if _, ok := res.Pages[key]; !ok {
			t.Errorf("missing page %s", key)
		}
	}
	if len(res.Bodies) != 5 {
		t.Errorf("Bodies has %d entries, want 5", len(res.Bodies))
	}
}

func assertOrder(t *testing.T, page []byte, want ...string) {
	t.Helper()
	last := -1
	for _, s := range want {
		i := bytes.Index(page, []byte(s))
		if i < 0 {
			t.Fatalf("page does not contain %q", s)
		}
		if i < last {
			t.Errorf("%q appears out of order", s)
		}
		last = i
	}
}

func TestRender_ListingOrder(t *testing.T) {
	res, err := newRenderer(t).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	assertOrder(t, res.Pages["projects/index.html"], "Project one", "Project five", "Project seven")
	assertOrder(t, res.Pages["posts/index.html"], "Post fresh", "Post old-news")
	assertOrder(t, res.Pages["tags/go/index.html"], "Post fresh", "Post old-news")
}

func TestRender_CrossReferences(t *testing.T) {
	res, err := newRenderer(t).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := string(res.Bodies["post/fresh"])
	if !strings.Contains(body, `href="/projects/seven/#usage"`) {
		t.Errorf("kind-qualified ref not rewritten: %s", body)
	}
	if !strings.Contains(body, `href="/posts/old-news/"`) {
		t.Errorf("same-kind ref not rewritten: %s", body)
	}
	if strings.Contains(string(res.Pages["posts/fresh/index.html"]), "ref:") {
		t.Error("rendered page still contains a ref: link")
	}
}

func TestRender_Related(t *testing.T) {
	post := testPost("with-related", 2025, "Body.\n")
	post.Related = []string{"project/one", "other"}
	set := assemble(t, post, testPost("other", 2024, "Other.\n"), testProject("one", 1, "One.\n"))

	res, err := newRenderer(t).Render(t.Context(), set)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	page := res.Pages["posts/with-related/index.html"]
	assertOrder(t, page, "Related", `href="/projects/one/"`, `href="/posts/other/"`)
}

func TestRender_UnresolvedReference(t *testing.T) {
	tests := []struct {
		name   string
		item   *content.Item
		target string
	}{
		{
			name:   "body ref to missing slug",
			item:   testPost("dangling", 2025, "[x](ref:post/ghost)\n"),
			target: "post/ghost",
		},
		{
			name:   "body ref with unknown kind",
			item:   testPost("dangling", 2025, "[x](ref:page/about)\n"),
			target: "page/about",
		},
		{
			name:   "reference-style link",
			item:   testPost("dangling", 2025, "See [x][1].\n\n[1]: ref:post/ghost\n"),
			target: "post/ghost",
		},
		{
			name: "related to missing project",
			item: func() *content.Item {
				it := testPost("dangling", 2025, "Body.\n")
				it.Related = []string{"project/ghost"}
				return it
			}(),
			target: "project/ghost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRenderer(t).Render(t.Context(), assemble(t, tt.item))
			if !errors.Is(err, folioerrors.ErrUnresolvedReference) {
				t.Fatalf("Render() error = %v, want ErrUnresolvedReference", err)
			}
			var refErr *ReferenceError
			if !errors.As(err, &refErr) {
				t.Fatalf("Render() error %T is not *ReferenceError", err)
			}
			if refErr.Slug != "dangling" || refErr.Target != tt.target {
				t.Errorf("ReferenceError = %+v", refErr)
			}
			if folioerrors.KindOf(err) != "UnresolvedReference" {
				t.Errorf("KindOf() = %q", folioerrors.KindOf(err))
			}
		})
	}
}

func TestRender_ReferenceStyleRef(t *testing.T) {
	set := assemble(t,
		testPost("a", 2024, "A.\n"),
		testPost("b", 2025, "See [a][first].\n\n[first]: ref:post/a\n"),
	)
	res, err := newRenderer(t).Render(t.Context(), set)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if body := string(res.Bodies["post/b"]); !strings.Contains(body, `href="/posts/a/"`) {
		t.Errorf("reference-style ref not rewritten: %s", body)
	}
}

func TestRender_RefAsImageSource(t *testing.T) {
	set := assemble(t,
		testPost("a", 2024, "A.\n"),
		testPost("b", 2025, "![diagram](ref:post/a)\n"),
	)
	_, err := newRenderer(t).Render(t.Context(), set)
	if !errors.Is(err, folioerrors.ErrUnresolvedReference) {
		t.Fatalf("Render() error = %v, want ErrUnresolvedReference", err)
	}
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Render() error %T is not *ReferenceError", err)
	}
	if refErr.Slug != "b" || refErr.Target != "post/a" || refErr.Reason == "" {
		t.Errorf("ReferenceError = %+v", refErr)
	}
	if !strings.Contains(err.Error(), "only valid as a link target") {
		t.Errorf("Error() = %q, want explanation", err.Error())
	}
}

func TestRender_BrokenInternalLink(t *testing.T) {
	set := assemble(t, testPost("linker", 2025, "[gone](/posts/missing/)\n"))

	_, err := newRenderer(t).Render(t.Context(), set)
	var linkErr *LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("Render() error = %v, want *LinkError", err)
	}
	if linkErr.Page != "posts/linker/index.html" || linkErr.Link != "/posts/missing/" {
		t.Errorf("LinkError = %+v", linkErr)
	}
}

func TestRender_Deterministic(t *testing.T) {
	first, err := newRenderer(t, WithWorkers(8)).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatal(err)
	}
	second, err := newRenderer(t, WithWorkers(1)).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Pages) != len(second.Pages) {
		t.Fatalf("page counts differ: %d vs %d", len(first.Pages), len(second.Pages))
	}
	for key, data := range first.Pages {
		if !bytes.Equal(data, second.Pages[key]) {
			t.Errorf("page %s differs between renders", key)
		}
	}
}

func TestRender_EmptySet(t *testing.T) {
	res, err := newRenderer(t).Render(t.Context(), assemble(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Contains(res.Pages["posts/index.html"], []byte("Nothing here yet")) {
		t.Error("empty listing should render a placeholder")
	}
}

func TestRender_BaseURL(t *testing.T) {
	r := newRenderer(t, WithSite(Site{Title: "Blog", BaseURL: "https://example.com/blog/"}))
	res, err := r.Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !bytes.Contains(res.Pages["posts/fresh/index.html"], []byte(`href="/blog/projects/seven/#usage"`)) {
		t.Error("links should carry the base path")
	}
	if !bytes.Contains(res.Pages["sitemap.xml"], []byte("<loc>https://example.com/blog/posts/fresh/</loc>")) {
		t.Errorf("sitemap should use absolute URLs:\n%s", res.Pages["sitemap.xml"])
	}
	if !bytes.Contains(res.Pages["sitemap.xml"], []byte("<lastmod>2026-03-01</lastmod>")) {
		t.Error("sitemap should carry post dates")
	}
}

func TestRender_RecentPosts(t *testing.T) {
	set := assemble(t,
		testPost("a", 2021, "a\n"),
		testPost("b", 2022, "b\n"),
		testPost("c", 2023, "c\n"),
	)
	res, err := newRenderer(t, WithRecentPosts(2)).Render(t.Context(), set)
	if err != nil {
		t.Fatal(err)
	}
	home := res.Pages["index.html"]
	if !bytes.Contains(home, []byte("Post c")) || !bytes.Contains(home, []byte("Post b")) {
		t.Error("home should list the two newest posts")
	}
	if bytes.Contains(home, []byte("Post a")) {
		t.Error("home should not list the third post")
	}
}

func TestRender_LayoutOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `{{define "main"}}<p class="custom">{{.Item.Title}}</p>{{.Body}}{{end}}`
	if err := os.WriteFile(filepath.Join(dir, LayoutPost), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "partials"), 0o755); err != nil {
		t.Fatal(err)
	}
	footer := `{{define "footer"}}<footer>custom footer</footer>{{end}}`
	if err := os.WriteFile(filepath.Join(dir, "partials", "footer.html"), []byte(footer), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newRenderer(t, WithLayoutsDir(dir)).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	page := res.Pages["posts/fresh/index.html"]
	if !bytes.Contains(page, []byte(`<p class="custom">Post fresh</p>`)) {
		t.Errorf("post layout override not applied:\n%s", page)
	}
	if !bytes.Contains(res.Pages["index.html"], []byte("custom footer")) {
		t.Error("partial override not applied")
	}
}

func TestNew_InvalidLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LayoutHome), []byte(`{{define "main"}}{{.Broken`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(NewGoldmark(), WithLayoutsDir(dir)); err == nil {
		t.Error("New() should fail on an unparsable layout")
	}
}

func TestRender_StaticAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "logo.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newRenderer(t, WithStaticDir(dir)).Render(t.Context(), fixtureSet(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(res.Pages["img/logo.svg"]) != "<svg/>" {
		t.Error("static asset not copied verbatim")
	}
	if string(res.Pages["style.css"]) != "body{}" {
		t.Error("user stylesheet should replace the default")
	}
	if _, ok := res.Pages[".DS_Store"]; ok {
		t.Error("hidden files should be skipped")
	}
}

func TestRender_StaticCollision(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>static</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := newRenderer(t, WithStaticDir(dir)).Render(t.Context(), fixtureSet(t)); err == nil {
		t.Error("Render() should reject a static asset that shadows a generated page")
	}
}

type failingMarkdown struct{}

func (failingMarkdown) Convert([]byte, io.Writer) error {
	return errors.New("converter exploded")
}

func TestRender_MarkdownFailure(t *testing.T) {
	r, err := New(failingMarkdown{}, WithLogger(logging.ForTest(t)))
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Render(t.Context(), fixtureSet(t))
	if err == nil || !strings.Contains(err.Error(), "post/fresh") {
		t.Errorf("Render() error = %v, want failure naming the first post", err)
	}
}
