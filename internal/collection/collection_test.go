package collection

import (
	"slices"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/content"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

func postItem(slug string, year int, tags ...string) *content.Item {
	return &content.Item{
		Kind:       content.KindPost,
		Slug:       slug,
		Title:      slug,
		Date:       time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:       tags,
		SourcePath: "posts/" + slug + ".md",
	}
}

func projectItem(slug string, order int) *content.Item {
	return &content.Item{
		Kind:       content.KindProject,
		Slug:       slug,
		Title:      slug,
		Order:      order,
		SourcePath: "projects/" + slug + ".md",
	}
}

func slugs(items []*content.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Slug
	}
	return out
}

func TestAssemble_ProjectOrder(t *testing.T) {
	// File order deliberately differs from order values.
	items := []*content.Item{
		projectItem("gamma", 7),
		projectItem("alpha", 1),
		projectItem("beta", 5),
	}

	set, err := Assemble(items)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if got := slugs(set.Projects.Items); !slices.Equal(got, []string{"alpha", "beta", "gamma"}) {
		t.Errorf("projects = %v, want [alpha beta gamma]", got)
	}
	if slugs(items)[0] != "gamma" {
		t.Error("Assemble() must not reorder the input slice")
	}
}

func TestAssemble_PostOrder(t *testing.T) {
	items := []*content.Item{
		postItem("old", 2025),
		postItem("new", 2026),
		postItem("tie-b", 2024),
		postItem("tie-a", 2024),
	}

	set, err := Assemble(items)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := []string{"new", "old", "tie-a", "tie-b"}
	if got := slugs(set.Posts.Items); !slices.Equal(got, want) {
		t.Errorf("posts = %v, want %v", got, want)
	}
	if set.Len() != 4 || set.Posts.Len() != 4 || set.Projects.Len() != 0 {
		t.Errorf("lengths = %d/%d/%d", set.Len(), set.Posts.Len(), set.Projects.Len())
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := []*content.Item{postItem("x", 2025), postItem("y", 2025), projectItem("p", 1), projectItem("q", 1)}
	b := []*content.Item{a[3], a[1], a[2], a[0]}

	setA, err := Assemble(a)
	if err != nil {
		t.Fatal(err)
	}
	setB, err := Assemble(b)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(slugs(setA.Posts.Items), slugs(setB.Posts.Items)) ||
		!slices.Equal(slugs(setA.Projects.Items), slugs(setB.Projects.Items)) {
		t.Error("Assemble() order depends on input order")
	}
}

func TestAssemble_DuplicateSlug(t *testing.T) {
	first := postItem("hello", 2025)
	second := postItem("hello", 2026)
	second.SourcePath = "posts/archive/hello.md"

	_, err := Assemble([]*content.Item{first, second})
	if !errors.Is(err, folioerrors.ErrDuplicateSlug) {
		t.Fatalf("Assemble() error = %v, want ErrDuplicateSlug", err)
	}

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("Assemble() error %T is not *DuplicateError", err)
	}
	if dup.First != "posts/hello.md" || dup.Second != "posts/archive/hello.md" {
		t.Errorf("DuplicateError paths = %q, %q", dup.First, dup.Second)
	}
	if folioerrors.KindOf(err) != "DuplicateSlug" {
		t.Errorf("KindOf() = %q", folioerrors.KindOf(err))
	}
}

func TestAssemble_SameSlugAcrossKinds(t *testing.T) {
	_, err := Assemble([]*content.Item{postItem("folio", 2025), projectItem("folio", 1)})
	if err != nil {
		t.Errorf("Assemble() error = %v, want nil for same slug in different kinds", err)
	}
}

func TestSet_Lookup(t *testing.T) {
	set, err := Assemble([]*content.Item{postItem("hello", 2025), projectItem("folio", 1)})
	if err != nil {
		t.Fatal(err)
	}

	if item, ok := set.Lookup(content.KindProject, "folio"); !ok || item.Slug != "folio" {
		t.Errorf("Lookup(project, folio) = %v, %v", item, ok)
	}
	if _, ok := set.Lookup(content.KindPost, "folio"); ok {
		t.Error("Lookup(post, folio) should miss")
	}
}

func TestSet_Tags(t *testing.T) {
	set, err := Assemble([]*content.Item{
		postItem("older", 2024, "Go", "web"),
		postItem("newer", 2026, "go", "Café"),
		postItem("untagged", 2025),
	})
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, tag := range set.Tags {
		names = append(names, tag.Slug)
	}
	if !slices.Equal(names, []string{"cafe", "go", "web"}) {
		t.Errorf("tag slugs = %v", names)
	}

	goTag, ok := set.Tag("go")
	if !ok {
		t.Fatal("Tag(go) missing")
	}
	if goTag.Name != "go" {
		t.Errorf("tag name = %q, want spelling from newest post", goTag.Name)
	}
	if got := slugs(goTag.Posts); !slices.Equal(got, []string{"newer", "older"}) {
		t.Errorf("go posts = %v, want collection order", got)
	}
}

func TestSet_Tags_SymbolsStayDistinct(t *testing.T) {
	set, err := Assemble([]*content.Item{
		postItem("cpp", 2026, "C++"),
		postItem("csharp", 2025, "C#"),
		postItem("c", 2024, "C"),
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var names []string
	for _, tag := range set.Tags {
		names = append(names, tag.Name+"="+tag.Slug)
		if len(tag.Posts) != 1 {
			t.Errorf("tag %q has %d posts, want 1", tag.Name, len(tag.Posts))
		}
	}
	want := []string{"C=c", "C++=c-plus-plus", "C#=c-sharp"}
	if !slices.Equal(names, want) {
		t.Errorf("tags = %v, want %v", names, want)
	}
}

func TestSet_Tags_SpellingVariantsMerge(t *testing.T) {
	set, err := Assemble([]*content.Item{
		postItem("a", 2026, "Web Dev"),
		postItem("b", 2025, "web-dev"),
		postItem("c", 2024, "WEB_DEV"),
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	tag, ok := set.Tag("web-dev")
	if !ok {
		t.Fatal("Tag(web-dev) missing")
	}
	if tag.Name != "Web Dev" || len(tag.Posts) != 3 {
		t.Errorf("tag = %q with %d posts, want \"Web Dev\" with 3", tag.Name, len(tag.Posts))
	}
}

func TestAssemble_TagConflict(t *testing.T) {
	_, err := Assemble([]*content.Item{
		postItem("plain", 2025, "Go"),
		postItem("bang", 2026, "Go!"),
	})
	if !errors.Is(err, folioerrors.ErrMalformedMetadata) {
		t.Fatalf("Assemble() error = %v, want ErrMalformedMetadata", err)
	}

	var conflict *TagConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Assemble() error %T is not *TagConflictError", err)
	}
	if conflict.Slug != "go" || conflict.First != "Go!" || conflict.Second != "Go" {
		t.Errorf("conflict = %+v", conflict)
	}
	if conflict.FirstPath != "posts/bang.md" || conflict.SecondPath != "posts/plain.md" {
		t.Errorf("conflict paths = %q, %q", conflict.FirstPath, conflict.SecondPath)
	}
	if folioerrors.KindOf(err) != "MalformedMetadata" {
		t.Errorf("KindOf() = %q", folioerrors.KindOf(err))
	}
}
