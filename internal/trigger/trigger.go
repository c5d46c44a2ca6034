package trigger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/build"
	"github.com/thoreinstein/folio/internal/publish"
)

// Builder renders one generation.
type Builder interface {
	Build(ctx context.Context, generation uint64) (*build.Output, error)
}

// Store persists and promotes generations.
type Store interface {
	NextGeneration() (uint64, error)
	Stage(ctx context.Context, out *build.Output, opts ...publish.StageOption) (*publish.Staged, error)
	Promote(staged *publish.Staged) error
	Discard(staged *publish.Staged) error
	Prune(keep int) ([]uint64, error)
	RecordFailure(report publish.FailureReport) error
}

// Trigger serializes publish runs and coalesces events that arrive while a
// run is in progress.
type Trigger struct {
	builder  Builder
	store    Store
	syncer   Syncer
	reporter Reporter
	timeout  time.Duration
	logger   *slog.Logger

	// runMu is held for the whole of a run.
	runMu sync.Mutex

	mu      sync.Mutex
	idle    *sync.Cond
	state   State
	running bool
	pending *Event
	runs    int
	last    *Outcome
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithSyncer sets the step run before each build.
func WithSyncer(s Syncer) Option {
	return func(t *Trigger) {
		t.syncer = s
	}
}

// WithReporter sets the reporter. The default logs through the Trigger's
// logger.
func WithReporter(r Reporter) Option {
	return func(t *Trigger) {
		t.reporter = r
	}
}

// WithTimeout bounds the duration of a run. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(t *Trigger) {
		if d >= 0 {
			t.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trigger) {
		t.logger = logger
	}
}

// New returns an idle Trigger.
func New(builder Builder, store Store, opts ...Option) *Trigger {
	t := &Trigger{
		builder: builder,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.reporter == nil {
		t.reporter = NewLogReporter(t.logger)
	}
	t.idle = sync.NewCond(&t.mu)
	return t
}

// Notify requests a run without blocking. If no run is active one starts in
// the background; otherwise ev replaces any pending event and a single
// follow-up run happens after the active one.
func (t *Trigger) Notify(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		if t.pending != nil {
			t.logger.Debug("coalescing event", "source", ev.Source)
		}
		t.pending = &ev
		return
	}
	t.running = true
	go t.loop(ev)
}

func (t *Trigger) loop(ev Event) {
	for {
		t.execute(context.Background(), ev)

		t.mu.Lock()
		if t.pending == nil {
			t.running = false
			t.idle.Broadcast()
			t.mu.Unlock()
			return
		}
		ev = *t.pending
		t.pending = nil
		t.mu.Unlock()
	}
}

// RunOnce runs synchronously and returns the outcome. It waits for any run
// already in progress.
func (t *Trigger) RunOnce(ctx context.Context, ev Event) Outcome {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	return t.execute(ctx, ev)
}

// Wait blocks until no run is active or pending.
func (t *Trigger) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.running || t.pending != nil {
		t.idle.Wait()
	}
}

// Status returns a snapshot of the Trigger.
func (t *Trigger) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{
		State:   t.state,
		Pending: t.pending != nil,
		Runs:    t.runs,
	}
	if t.last != nil {
		last := *t.last
		st.Last = &last
	}
	return st
}

func (t *Trigger) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Trigger) execute(ctx context.Context, ev Event) Outcome {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	t.setState(StateBuilding)
	o := t.run(ctx, ev)

	t.mu.Lock()
	t.state = StateIdle
	t.runs++
	t.last = &o
	t.mu.Unlock()
	return o
}

// run performs one publish pipeline. The caller holds runMu.
func (t *Trigger) run(ctx context.Context, ev Event) Outcome {
	o := Outcome{Event: ev, Status: build.StatusPending, Started: time.Now()}

	gen, err := t.store.NextGeneration()
	if err != nil {
		return t.fail(o, nil, build.Fail(build.StageWrite, err))
	}
	o.Generation = gen
	t.reporter.Started(ev, gen)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if t.syncer != nil {
		commit, err := t.syncer.Sync(ctx)
		if err != nil {
			return t.fail(o, nil, build.Fail(build.StageSync, err))
		}
		o.Commit = commit
	}
	if o.Commit == "" {
		o.Commit = ev.Commit
	}

	out, err := t.builder.Build(ctx, gen)
	if err != nil {
		return t.fail(o, nil, build.Fail(build.StageRender, err))
	}

	staged, err := t.store.Stage(ctx, out, publish.WithCommit(o.Commit))
	if err != nil {
		return t.fail(o, nil, build.Fail(build.StageWrite, err))
	}

	t.setState(StatePublishing)
	if err := t.store.Promote(staged); err != nil {
		return t.fail(o, staged, build.Fail(build.StagePublish, err))
	}

	if _, err := t.store.Prune(0); err != nil {
		// Already live; a prune failure only delays cleanup
		t.logger.Warn("pruning generations", "error", err)
	}

	o.Status = build.StatusSuccess
	o.Published = true
	o.Pages = len(out.Pages)
	o.Finished = time.Now()
	t.reporter.Finished(o)
	return o
}

func (t *Trigger) fail(o Outcome, staged *publish.Staged, err error) Outcome {
	t.setState(StateFailed)

	if staged != nil {
		if derr := t.store.Discard(staged); derr != nil {
			t.logger.Warn("discarding staged generation", "error", derr)
		}
	}

	o.Status = build.StatusFailed
	o.Stage = build.StageOf(err)
	o.Slug = build.SlugOf(err)
	var se *build.StageError
	if errors.As(err, &se) {
		o.Path = se.Path()
	}
	describe(&o, err)
	o.Finished = time.Now()

	if o.Generation != 0 {
		report := publish.FailureReport{
			Generation: o.Generation,
			Time:       o.Finished.UTC(),
			Trigger:    o.Event.Source,
			Stage:      string(o.Stage),
			Kind:       o.Kind,
			Slug:       o.Slug,
			Path:       o.Path,
			Message:    o.Message,
		}
		if rerr := t.store.RecordFailure(report); rerr != nil {
			t.logger.Warn("recording failure report", "generation", o.Generation, "error", rerr)
		}
	}

	t.reporter.Finished(o)
	return o
}
