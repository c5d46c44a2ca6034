package trigger

import (
	"log/slog"
	"time"

	"github.com/thoreinstein/folio/internal/errors"
)

// Reporter receives run lifecycle notifications.
type Reporter interface {
	Started(ev Event, generation uint64)
	Finished(o Outcome)
}

// LogReporter reports runs through a slog logger.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter returns a LogReporter writing to logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// Started implements Reporter.
func (r *LogReporter) Started(ev Event, generation uint64) {
	r.Logger.Info("build started", "generation", generation, "trigger", ev.Source)
}

// Finished implements Reporter.
func (r *LogReporter) Finished(o Outcome) {
	if o.Published {
		r.Logger.Info("published generation",
			"generation", o.Generation,
			"pages", o.Pages,
			"duration", o.Duration().Round(time.Millisecond),
		)
		return
	}

	attrs := []any{
		"generation", o.Generation,
		"stage", o.Stage,
		"kind", o.Kind,
	}
	if o.Slug != "" {
		attrs = append(attrs, "slug", o.Slug)
	}
	if o.Path != "" {
		attrs = append(attrs, "path", o.Path)
	}
	attrs = append(attrs, "error", o.Message)
	r.Logger.Error("build failed", attrs...)
}

// describe fills the diagnostic fields of o from err.
func describe(o *Outcome, err error) {
	o.Err = err
	o.Kind = errors.KindOf(err)
	o.Message = err.Error()
}
