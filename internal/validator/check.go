package validator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/content"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/render"
)

// Check examines every content file under dir and reports all problems
// instead of stopping at the first. Parse failures, duplicate slugs, and
// dangling references are collected in full. The site is rendered only when
// those pass, so link and layout failures appear only on an otherwise clean
// tree.
//
// The returned error is reserved for failures that prevent checking at all,
// such as a missing content directory or cancellation.
func Check(ctx context.Context, dir string, loader *content.Loader, renderer *render.Renderer) (*Result, error) {
	sources, err := loader.Discover(dir)
	if err != nil {
		return nil, err
	}
	items, loadErrs, err := loader.LoadAll(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: len(sources), Items: len(items)}
	for _, err := range loadErrs {
		result.addErr(err)
	}

	items = result.checkDuplicates(items)
	set, err := collection.Assemble(items)
	if err != nil {
		result.addErr(err)
		result.relativize(dir)
		return result, nil
	}

	for _, err := range render.CheckReferences(set) {
		result.addErr(err)
	}
	now := time.Now()
	for _, item := range items {
		result.checkRecommended(item, now)
	}

	if !result.HasErrors() && renderer != nil {
		if _, err := renderer.Render(ctx, set); err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "checking content")
			}
			result.addErr(err)
		}
	}
	result.relativize(dir)
	return result, nil
}

// relativize rewrites source paths relative to the content directory.
func (r *Result) relativize(dir string) {
	for _, issue := range r.Issues {
		if p, ok := issue.Context["path"]; ok {
			if rel, err := filepath.Rel(dir, p); err == nil && filepath.IsLocal(rel) {
				issue.Context["path"] = filepath.ToSlash(rel)
			}
		}
	}
}

// checkDuplicates reports every item whose kind and slug were already
// claimed by an earlier item and returns the items without the repeats.
func (r *Result) checkDuplicates(items []*content.Item) []*content.Item {
	seen := make(map[string]*content.Item, len(items))
	unique := items[:0:0]
	for _, item := range items {
		prev, ok := seen[item.Key()]
		if !ok {
			seen[item.Key()] = item
			unique = append(unique, item)
			continue
		}
		r.addErr(&collection.DuplicateError{
			Kind:   item.Kind,
			Slug:   item.Slug,
			First:  prev.SourcePath,
			Second: item.SourcePath,
		})
	}
	return unique
}

// checkRecommended adds warnings for values that are allowed but likely
// unintended.
func (r *Result) checkRecommended(item *content.Item, now time.Time) {
	loc := itemContext(item.Kind, item.Slug, item.SourcePath)
	if item.Kind == content.KindPost && strings.TrimSpace(item.Description) == "" {
		r.Issues = append(r.Issues, Issue{
			Severity: SeverityWarning,
			Field:    "description",
			Message:  "is empty; listings and feeds fall back to the title",
			Context:  loc,
		})
	}
	if item.Kind == content.KindPost && item.Date.After(now) {
		r.Issues = append(r.Issues, Issue{
			Severity: SeverityWarning,
			Field:    "date",
			Message:  "is in the future; the post is published anyway",
			Value:    item.Date.Format(time.DateOnly),
			Context:  loc,
		})
	}
}

// addErr converts a build error into an error issue.
func (r *Result) addErr(err error) {
	issue := Issue{
		Severity: SeverityError,
		Kind:     folioerrors.KindOf(err),
		Message:  err.Error(),
	}

	var (
		itemErr *content.ItemError
		dupErr  *collection.DuplicateError
		tagErr  *collection.TagConflictError
		refErr  *render.ReferenceError
		linkErr *render.LinkError
	)
	switch {
	case errors.As(err, &itemErr):
		issue.Field = itemErr.Field
		issue.Message = itemErr.Err.Error()
		issue.Context = itemContext(itemErr.Kind, itemErr.Slug, itemErr.Path)
	case errors.As(err, &dupErr):
		issue.Message = fmt.Sprintf("slug already used by %s", dupErr.First)
		issue.Context = itemContext(dupErr.Kind, dupErr.Slug, dupErr.Second)
	case errors.As(err, &tagErr):
		issue.Field = "tags"
		issue.Message = fmt.Sprintf("shares its slug with %q in %s", tagErr.First, tagErr.FirstPath)
		issue.Value = tagErr.Second
		issue.Context = map[string]string{"path": tagErr.SecondPath, "collection": content.KindPost.Dir()}
	case errors.As(err, &refErr):
		issue.Field = "ref"
		issue.Message = "target does not exist"
		if refErr.Reason != "" {
			issue.Message = refErr.Reason
		}
		issue.Value = refErr.Target
		issue.Context = itemContext(refErr.Kind, refErr.Slug, refErr.Path)
	case errors.As(err, &linkErr):
		issue.Field = "link"
		issue.Message = "does not resolve to a page or asset"
		issue.Value = linkErr.Link
		issue.Context = map[string]string{"page": linkErr.Page}
	}
	r.Issues = append(r.Issues, issue)
}

func itemContext(kind content.Kind, slug, path string) map[string]string {
	ctx := map[string]string{}
	if path != "" {
		ctx["path"] = path
	}
	if slug != "" {
		ctx["slug"] = slug
	}
	if kind.Valid() {
		ctx["collection"] = kind.Dir()
	}
	return ctx
}
