package trigger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/logging"
)

type chanNotifier chan Event

func (c chanNotifier) Notify(ev Event) {
	c <- ev
}

func startWatcher(t *testing.T, debounce time.Duration, dirs ...string) chanNotifier {
	t.Helper()
	events := make(chanNotifier, 10)
	w := NewWatcher(events, debounce, logging.ForTest(t), dirs...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	// Give the watcher time to register its directories
	time.Sleep(100 * time.Millisecond)
	return events
}

func waitEvent(t *testing.T, events chanNotifier) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return Event{}
	}
}

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, 100*time.Millisecond, dir)

	for i := range 5 {
		write(t, filepath.Join(dir, "post.md"), string(rune('a'+i)))
	}

	ev := waitEvent(t, events)
	if ev.Source != "watch" || filepath.Base(ev.Detail) != "post.md" {
		t.Errorf("event = %+v", ev)
	}
	select {
	case ev := <-events:
		t.Errorf("burst produced a second notification: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, 50*time.Millisecond, dir)

	sub := filepath.Join(dir, "posts")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events)

	write(t, filepath.Join(sub, "hello.md"), "hi")
	ev := waitEvent(t, events)
	if filepath.Base(ev.Detail) != "hello.md" {
		t.Errorf("event detail = %q, want the new file", ev.Detail)
	}
}

func TestWatcher_IgnoresHiddenAndBackupFiles(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, 50*time.Millisecond, dir)

	write(t, filepath.Join(dir, ".post.md.swp"), "x")
	write(t, filepath.Join(dir, "post.md~"), "x")

	select {
	case ev := <-events:
		t.Errorf("unexpected notification: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_NoDirectories(t *testing.T) {
	w := NewWatcher(make(chanNotifier, 1), 0, logging.ForTest(t), filepath.Join(t.TempDir(), "missing"))
	if err := w.Run(t.Context()); !errors.Is(err, folioerrors.ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}
