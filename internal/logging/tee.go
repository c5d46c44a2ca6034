package logging

import (
	"context"
	"errors"
	"log/slog"
)

// Tee is a slog.Handler that sends each record to every handler enabled
// for its level. The CLI uses it to log to the terminal and a JSON file at
// once.
type Tee struct {
	handlers []slog.Handler
}

// NewTee returns a Tee over the non-nil handlers. Nested Tees are
// flattened.
func NewTee(handlers ...slog.Handler) *Tee {
	t := &Tee{}
	for _, h := range handlers {
		switch h := h.(type) {
		case nil:
		case *Tee:
			t.handlers = append(t.handlers, h.handlers...)
		default:
			t.handlers = append(t.handlers, h)
		}
	}
	return t
}

// Enabled reports whether any handler accepts level.
func (t *Tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes r to each enabled handler. A failing handler does not stop
// the others; all errors are returned together.
func (t *Tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (t *Tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (t *Tee) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *Tee) each(f func(slog.Handler) slog.Handler) *Tee {
	out := &Tee{handlers: make([]slog.Handler, len(t.handlers))}
	for i, h := range t.handlers {
		out.handlers[i] = f(h)
	}
	return out
}
