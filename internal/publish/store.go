package publish

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/thoreinstein/folio/internal/build"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/pkg/fileutil"
)

// Version is recorded in every manifest. It is set by the CLI at startup.
var Version = "dev"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store manages the generations under one serving root. A Store is safe
// for concurrent use; generation allocation and symlink swaps are
// serialized by a mutex.
type Store struct {
	root      string
	retention int
	logger    *slog.Logger
	now       func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRetention sets how many generations and failure reports Prune keeps.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for manifests and reports.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a Store rooted at root. The directory is created on
// first write.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:      root,
		retention: DefaultRetention,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the serving root.
func (s *Store) Root() string {
	return s.root
}

// Retention returns the configured retention count.
func (s *Store) Retention() int {
	return s.retention
}

// NextGeneration allocates the next generation id and persists it, so ids
// keep increasing across restarts. Ids are consumed even when the build
// that used them later fails.
func (s *Store) NextGeneration() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.readState()
	if err != nil {
		return 0, err
	}

	// A lost state file must not reuse an id that is still on disk
	ids, err := s.generationIDs()
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 && ids[len(ids)-1] > st.LastGeneration {
		st.LastGeneration = ids[len(ids)-1]
	}

	st.LastGeneration++
	st.UpdatedAt = s.now().UTC()
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return 0, errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "creating serving root")
	}
	if err := fileutil.AtomicWriteJSON(s.statePath(), st); err != nil {
		return 0, errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "writing state")
	}
	return st.LastGeneration, nil
}

func (s *Store) readState() (state, error) {
	var st state
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, errors.Wrap(err, "reading state")
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, errors.Wrap(err, "parsing state")
	}
	return st, nil
}

// StageOption configures a Stage call.
type StageOption func(*Manifest)

// WithCommit records the content repository commit in the manifest.
func WithCommit(commit string) StageOption {
	return func(m *Manifest) {
		m.Commit = commit
	}
}

// Stage writes out into a fresh staging directory along with its manifest.
// Any failure removes the staging directory and is marked ErrWriteFailure;
// the live generation is never touched.
func (s *Store) Stage(ctx context.Context, out *build.Output, opts ...StageOption) (*Staged, error) {
	if out == nil || out.Status != build.StatusSuccess {
		return nil, ErrNotSuccessful
	}

	dir := filepath.Join(s.stagingRoot(), uuid.NewString())
	if err := os.MkdirAll(filepath.Join(dir, siteDir), dirPerm); err != nil {
		return nil, errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "creating staging directory")
	}

	manifest, err := s.writeSite(ctx, dir, out)
	if err == nil {
		for _, opt := range opts {
			opt(manifest)
		}
		err = fileutil.AtomicWriteJSON(filepath.Join(dir, manifestFile), manifest)
		if err != nil {
			err = errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "writing manifest")
		}
	}
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("removing staging directory", "dir", dir, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Debug("staged generation", "generation", out.Generation, "files", len(manifest.Files), "dir", dir)
	return &Staged{Manifest: manifest, Dir: dir}, nil
}

func (s *Store) writeSite(ctx context.Context, dir string, out *build.Output) (*Manifest, error) {
	files, err := WriteTree(ctx, filepath.Join(dir, siteDir), out)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Version:      ManifestVersion,
		Generation:   out.Generation,
		CreatedAt:    s.now().UTC(),
		FolioVersion: Version,
		Files:        files,
	}, nil
}

// WriteTree writes every page of out below dir in path order and returns
// the written files with their hashes. Errors are marked ErrWriteFailure.
// Files already in dir that out does not name are left alone.
func WriteTree(ctx context.Context, dir string, out *build.Output) ([]File, error) {
	files := make([]File, 0, len(out.Pages))
	for _, key := range out.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "writing interrupted")
		}
		if !filepath.IsLocal(filepath.FromSlash(key)) {
			return nil, errors.Wrapf(folioerrors.ErrWriteFailure, "page path %q escapes the site directory", key)
		}

		data := out.Pages[key]
		path := filepath.Join(dir, filepath.FromSlash(key))
		if err := fileutil.WriteFileAll(path, data, filePerm); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, folioerrors.ErrWriteFailure), "writing %s", key)
		}

		files = append(files, File{
			Path:       key,
			SHA256Hash: fileutil.HashBytes(data),
			Size:       int64(len(data)),
		})
	}
	return files, nil
}

// Promote moves staged into generations/ and points current at it.
func (s *Store) Promote(staged *Staged) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := staged.Manifest.Generation
	dst := s.GenerationPath(id)
	if _, err := os.Lstat(dst); err == nil {
		return errors.Wrapf(folioerrors.ErrWriteFailure, "generation %d already exists", id)
	}
	if err := os.MkdirAll(s.generationsRoot(), dirPerm); err != nil {
		return errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "creating generations directory")
	}
	src := staged.Dir
	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(errors.Mark(err, folioerrors.ErrWriteFailure), "moving generation %d into place", id)
	}
	staged.Dir = dst

	if err := s.swapCurrent(id); err != nil {
		// Hand the tree back to staging so Discard can remove it
		if rerr := os.Rename(dst, src); rerr != nil {
			s.logger.Warn("removing unpromoted generation", "generation", id, "error", rerr)
			if rmErr := os.RemoveAll(dst); rmErr != nil {
				return errors.Join(err, errors.Wrapf(rmErr, "removing unpromoted generation %d", id))
			}
		}
		staged.Dir = src
		return err
	}
	s.logger.Info("promoted generation", "generation", id)
	return nil
}

// swapCurrent atomically re-points current at generation id. The caller
// must hold s.mu.
func (s *Store) swapCurrent(id uint64) error {
	if err := fileutil.ReplaceSymlink(linkTarget(id), s.CurrentPath()); err != nil {
		return errors.Wrap(errors.Mark(err, folioerrors.ErrWriteFailure), "swapping current")
	}
	return nil
}

// Discard removes a staged generation that will not be promoted.
func (s *Store) Discard(staged *Staged) error {
	if staged == nil || staged.Dir == "" {
		return nil
	}
	if !strings.HasPrefix(staged.Dir, s.stagingRoot()+string(filepath.Separator)) {
		return errors.Newf("refusing to discard %s outside staging", staged.Dir)
	}
	if err := os.RemoveAll(staged.Dir); err != nil {
		return errors.Wrap(err, "removing staging directory")
	}
	return nil
}

// Current returns the id of the live generation.
func (s *Store) Current() (uint64, error) {
	target, err := os.Readlink(s.CurrentPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNoGenerations
		}
		return 0, errors.Wrap(err, "reading current symlink")
	}
	parts := strings.Split(filepath.ToSlash(filepath.Clean(target)), "/")
	if len(parts) < 2 {
		return 0, errors.Newf("unexpected current target %q", target)
	}
	id, ok := parseGenName(parts[len(parts)-2])
	if !ok {
		return 0, errors.Newf("unexpected current target %q", target)
	}
	return id, nil
}

// ResolveCurrent returns the live generation id and the absolute path of its
// site directory. Callers that serve files should resolve once per request
// so every file comes from the same generation.
func (s *Store) ResolveCurrent() (uint64, string, error) {
	dir, err := filepath.EvalSymlinks(s.CurrentPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, "", ErrNoGenerations
		}
		return 0, "", errors.Wrap(err, "resolving current generation")
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return 0, "", errors.Wrap(err, "resolving current generation")
	}
	id, ok := parseGenName(filepath.Base(filepath.Dir(dir)))
	if !ok {
		return 0, "", errors.Newf("unexpected current target %q", dir)
	}
	return id, dir, nil
}

// List returns the manifests of all stored generations, newest first.
// Directories without a readable manifest are skipped.
func (s *Store) List() ([]Manifest, error) {
	ids, err := s.generationIDs()
	if err != nil {
		return nil, err
	}

	manifests := make([]Manifest, 0, len(ids))
	for _, id := range slices.Backward(ids) {
		m, err := s.Get(id)
		if err != nil {
			s.logger.Debug("skipping generation", "generation", id, "error", err)
			continue
		}
		manifests = append(manifests, *m)
	}
	if len(manifests) == 0 {
		return nil, ErrNoGenerations
	}
	return manifests, nil
}

// generationIDs returns the ids of the generation directories in ascending
// order.
func (s *Store) generationIDs() ([]uint64, error) {
	entries, err := os.ReadDir(s.generationsRoot())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading generations directory")
	}
	var ids []uint64
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if id, ok := parseGenName(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Get returns the manifest of generation id.
func (s *Store) Get(id uint64) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.GenerationPath(id), manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoGenerations, "generation %d not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	return &m, nil
}

// Prune removes generations beyond the newest keep, never removing the live
// generation. Failure reports are pruned to the same count. keep <= 0 uses
// the store's retention.
func (s *Store) Prune(keep int) ([]uint64, error) {
	if keep <= 0 {
		keep = s.retention
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Current()
	if err != nil && !errors.Is(err, ErrNoGenerations) {
		return nil, err
	}

	ids, err := s.generationIDs()
	if err != nil {
		return nil, err
	}

	// The live generation always counts toward keep
	limit := keep
	if current != 0 {
		limit--
	}

	var removed []uint64
	kept := 0
	for _, id := range slices.Backward(ids) {
		if id == current {
			continue
		}
		if kept < limit {
			kept++
			continue
		}
		if err := os.RemoveAll(s.GenerationPath(id)); err != nil {
			return removed, errors.Wrapf(err, "removing generation %d", id)
		}
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		s.logger.Debug("pruned generations", "removed", removed)
	}

	if err := s.pruneFailures(keep); err != nil {
		return removed, err
	}
	return removed, nil
}

// Verify re-hashes every file of generation id against its manifest.
func (s *Store) Verify(id uint64) error {
	m, err := s.Get(id)
	if err != nil {
		return err
	}
	site := s.SitePath(id)
	for _, f := range m.Files {
		hash, err := fileutil.HashFile(filepath.Join(site, filepath.FromSlash(f.Path)))
		if err != nil {
			return errors.Wrapf(errors.Mark(err, ErrGenerationCorrupted), "file %s", f.Path)
		}
		if hash != f.SHA256Hash {
			return errors.Wrapf(ErrGenerationCorrupted, "file %s hash mismatch", f.Path)
		}
	}
	return nil
}

// Rollback verifies generation id and makes it live.
func (s *Store) Rollback(id uint64) error {
	if err := s.Verify(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.swapCurrent(id); err != nil {
		return err
	}
	s.logger.Info("rolled back", "generation", id)
	return nil
}

// RecordFailure writes a failure report for a run that was not published.
func (s *Store) RecordFailure(report FailureReport) error {
	if report.Time.IsZero() {
		report.Time = s.now().UTC()
	}
	if err := os.MkdirAll(s.failuresRoot(), dirPerm); err != nil {
		return errors.Wrap(err, "creating failures directory")
	}
	if err := fileutil.AtomicWriteJSON(s.failurePath(report.Generation), report); err != nil {
		return errors.Wrap(err, "writing failure report")
	}
	return nil
}

// Failures returns the stored failure reports, newest first.
func (s *Store) Failures() ([]FailureReport, error) {
	ids, err := s.failureIDs()
	if err != nil {
		return nil, err
	}
	reports := make([]FailureReport, 0, len(ids))
	for _, id := range slices.Backward(ids) {
		data, err := os.ReadFile(s.failurePath(id))
		if err != nil {
			return nil, errors.Wrapf(err, "reading failure report %d", id)
		}
		var r FailureReport
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, errors.Wrapf(err, "parsing failure report %d", id)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *Store) failureIDs() ([]uint64, error) {
	entries, err := os.ReadDir(s.failuresRoot())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading failures directory")
	}
	var ids []uint64
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if id, ok := parseGenName(name); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) pruneFailures(keep int) error {
	ids, err := s.failureIDs()
	if err != nil {
		return err
	}
	for len(ids) > keep {
		if err := os.Remove(s.failurePath(ids[0])); err != nil {
			return errors.Wrapf(err, "removing failure report %d", ids[0])
		}
		ids = ids[1:]
	}
	return nil
}
