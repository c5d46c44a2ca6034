package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/config"
	"github.com/thoreinstein/folio/internal/content"
	"github.com/thoreinstein/folio/internal/render"
	"github.com/thoreinstein/folio/internal/validator"
)

// Builder turns a content directory into an Output.
type Builder struct {
	contentDir string
	loader     *content.Loader
	renderer   *render.Renderer
	logger     *slog.Logger
}

// New returns a Builder reading from contentDir.
func New(contentDir string, loader *content.Loader, renderer *render.Renderer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		contentDir: contentDir,
		loader:     loader,
		renderer:   renderer,
		logger:     logger,
	}
}

// FromConfig wires a Builder from cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loader := content.NewLoader(
		content.WithWorkers(cfg.WorkerCount()),
		content.WithDrafts(cfg.Drafts),
		content.WithLogger(logger),
	)
	md := render.NewGoldmark(
		render.WithUnsafeHTML(cfg.Markdown.Unsafe),
		render.WithHardWraps(cfg.Markdown.HardWraps),
	)
	renderer, err := render.New(md,
		render.WithSite(SiteFromConfig(cfg.Site)),
		render.WithLayoutsDir(cfg.LayoutsDir),
		render.WithStaticDir(cfg.StaticDir),
		render.WithWorkers(cfg.WorkerCount()),
		render.WithRecentPosts(cfg.Site.RecentPosts),
		render.WithLogger(logger),
	)
	if err != nil {
		return nil, Fail(StageRender, err)
	}
	return New(cfg.ContentDir, loader, renderer, logger), nil
}

// SiteFromConfig converts the site configuration into layout data.
func SiteFromConfig(s config.Site) render.Site {
	return render.Site{
		Title:       s.Title,
		Description: s.Description,
		Author:      s.Author,
		BaseURL:     s.BaseURL,
	}
}

// Build runs parse, assemble, and render for generation gen. On failure the
// returned Output has StatusFailed and no pages, and err is a *StageError.
func (b *Builder) Build(ctx context.Context, gen uint64) (*Output, error) {
	out := &Output{Generation: gen, Status: StatusPending}
	start := time.Now()

	items, err := b.loader.Load(ctx, b.contentDir)
	if err != nil {
		return b.fail(out, StageParse, err)
	}
	b.logger.Debug("parsed content", "generation", gen, "items", len(items))

	set, err := collection.Assemble(items)
	if err != nil {
		return b.fail(out, StageAssemble, err)
	}

	res, err := b.renderer.Render(ctx, set)
	if err != nil {
		return b.fail(out, StageRender, err)
	}

	out.Pages = res.Pages
	out.Items = set.Len()
	out.Status = StatusSuccess
	b.logger.Debug("built generation",
		"generation", gen,
		"pages", len(out.Pages),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return out, nil
}

// Check examines the content directory the way Build would but collects
// every problem instead of stopping at the first. Nothing is written.
func (b *Builder) Check(ctx context.Context) (*validator.Result, error) {
	return validator.Check(ctx, b.contentDir, b.loader, b.renderer)
}

func (b *Builder) fail(out *Output, stage Stage, err error) (*Output, error) {
	out.Status = StatusFailed
	out.Pages = nil
	return out, Fail(stage, err)
}
