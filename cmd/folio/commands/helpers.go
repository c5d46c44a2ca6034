package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/folio/internal/build"
	"github.com/thoreinstein/folio/internal/config"
	"github.com/thoreinstein/folio/internal/logging"
	"github.com/thoreinstein/folio/internal/publish"
	"github.com/thoreinstein/folio/internal/trigger"
)

// loggerFor returns the logger installed by the root command.
func loggerFor(cmd *cobra.Command) *slog.Logger {
	return logging.FromContext(cmd.Context())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newStore(cfg *config.Config, logger *slog.Logger) *publish.Store {
	return publish.NewStore(cfg.ServeRoot,
		publish.WithRetention(cfg.Retention),
		publish.WithLogger(logger),
	)
}

// newTrigger wires the build pipeline, the generation store, and a git
// syncer for the content directory. Runs are reported to reporter, or
// logged when reporter is nil.
func newTrigger(cfg *config.Config, logger *slog.Logger, reporter trigger.Reporter) (*trigger.Trigger, *publish.Store, error) {
	builder, err := build.FromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	store := newStore(cfg, logger)

	if reporter == nil {
		reporter = trigger.NewLogReporter(logger)
	}

	t := trigger.New(builder, store,
		trigger.WithSyncer(&trigger.GitSyncer{
			Dir:    cfg.ContentDir,
			Pull:   cfg.Publish.GitPull,
			Logger: logger,
		}),
		trigger.WithReporter(reporter),
		trigger.WithTimeout(cfg.BuildTimeout),
		trigger.WithLogger(logger),
	)
	return t, store, nil
}

// consoleReporter prints one line per run for interactive commands.
type consoleReporter struct {
	out io.Writer
}

// Started implements trigger.Reporter.
func (r consoleReporter) Started(ev trigger.Event, generation uint64) {
	fmt.Fprintf(r.out, "%s building generation %d (%s)\n", color.CyanString("⟳"), generation, ev.Source)
}

// Finished implements trigger.Reporter.
func (r consoleReporter) Finished(o trigger.Outcome) {
	if o.Published {
		fmt.Fprintf(r.out, "%s published generation %d: %d pages in %s\n",
			color.GreenString("✓"), o.Generation, o.Pages, o.Duration().Round(time.Millisecond))
		return
	}

	where := string(o.Stage)
	switch {
	case o.Path != "":
		where += " " + o.Path
	case o.Slug != "":
		where += " " + o.Slug
	}
	fmt.Fprintf(r.out, "%s build failed at %s: %s\n", color.RedString("✗"), where, o.Message)
	if o.Kind != "" && o.Kind != "Internal" {
		fmt.Fprintf(r.out, "  kind: %s\n", o.Kind)
	}
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
