package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/parallel"
	"github.com/thoreinstein/folio/pkg/fileutil"
)

// Source is a discovered content file.
type Source struct {
	Kind Kind
	Path string
}

// Loader discovers and parses every content file under a directory.
type Loader struct {
	parser  *Parser
	workers int
	drafts  bool
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithWorkers bounds the number of files parsed concurrently.
// Values below 1 select GOMAXPROCS.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDrafts keeps items marked draft: true.
func WithDrafts(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.drafts = enabled
	}
}

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		parser:  NewParser(),
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover lists content files under dir in a stable order: kinds in
// canonical order, files in lexical walk order within each kind. A missing
// kind directory yields no files for that kind.
func (l *Loader) Discover(dir string) ([]Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(folioerrors.ErrNotFound, "content directory %s", dir)
		}
		return nil, errors.Wrap(err, "stat content directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("content path %s is not a directory", dir)
	}

	var sources []Source
	for _, kind := range Kinds {
		root := filepath.Join(dir, kind.Dir())
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !isMarkdown(name) {
				l.logger.Debug("ignoring non-markdown file", "path", path)
				return nil
			}
			sources = append(sources, Source{Kind: kind, Path: path})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", root)
		}
	}

	return sources, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// Load discovers and parses every item under dir. Parsing runs on a bounded
// worker pool; when several files fail, the error of the earliest file in
// discovery order is returned regardless of scheduling. Drafts are dropped
// unless the loader was created WithDrafts(true).
func (l *Loader) Load(ctx context.Context, dir string) ([]*Item, error) {
	items, errs, err := l.load(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return items, nil
}

// LoadAll is like Load but does not stop at the first failure. It returns
// the items that parsed and every per-file error in discovery order.
// The final error is reserved for discovery failures and cancellation.
func (l *Loader) LoadAll(ctx context.Context, dir string) ([]*Item, []error, error) {
	return l.load(ctx, dir)
}

func (l *Loader) load(ctx context.Context, dir string) ([]*Item, []error, error) {
	sources, err := l.Discover(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(sources) == 0 {
		return nil, nil, nil
	}

	type result struct {
		item *Item
		err  error
	}
	results, err := parallel.Map(ctx, len(sources), l.workers, func(i int) result {
		item, err := l.loadFile(sources[i])
		return result{item: item, err: err}
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading content")
	}

	var (
		items []*Item
		errs  []error
	)
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if r.item.Draft && !l.drafts {
			l.logger.Debug("skipping draft", "path", sources[i].Path)
			continue
		}
		items = append(items, r.item)
	}

	l.logger.Debug("content loaded", "files", len(sources), "items", len(items), "errors", len(errs))
	return items, errs, nil
}

func (l *Loader) loadFile(src Source) (*Item, error) {
	data, err := fileutil.ReadFileWithLimit(src.Path)
	if err != nil {
		return nil, &ItemError{
			Kind: src.Kind,
			Slug: SlugFromPath(src.Path),
			Path: src.Path,
			Err:  err,
		}
	}
	return l.parser.Parse(src.Kind, src.Path, data)
}
