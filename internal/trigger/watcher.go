package trigger

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Notifier receives change events.
type Notifier interface {
	Notify(ev Event)
}

// Watcher watches directory trees and notifies once a burst of changes has
// settled.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	notifier Notifier
	logger   *slog.Logger
}

// NewWatcher returns a Watcher over dirs. Missing directories are skipped
// when Run starts.
func NewWatcher(notifier Notifier, debounce time.Duration, logger *slog.Logger, dirs ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		notifier: notifier,
		logger:   logger,
	}
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("directory not found, not watching", "dir", dir)
			continue
		}
		n, err := w.addTree(fw, dir)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return errors.Wrap(folioerrors.ErrNotFound, "no directories to watch")
	}
	w.logger.Debug("watching for changes", "directories", watched, "debounce", w.debounce)

	var (
		mu     sync.Mutex
		timer  *time.Timer
		latest string
	)
	fire := func() {
		mu.Lock()
		path := latest
		mu.Unlock()
		w.notifier.Notify(Event{Source: "watch", Detail: path, Time: time.Now()})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if _, err := w.addTree(fw, ev.Name); err != nil {
					w.logger.Warn("watching new directory", "dir", ev.Name, "error", err)
				}
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())

			mu.Lock()
			latest = ev.Name
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(d.Name()) {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		n++
		return nil
	})
	return n, err
}

// relevant drops events that cannot change the site.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return !hidden(name) && !strings.HasSuffix(name, "~") && !strings.HasSuffix(name, ".swp")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
