package commands

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/server"
	"github.com/thoreinstein/folio/internal/trigger"
)

var (
	watchAddr    string
	watchNoServe bool
)

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "", "listen address (default: server.addr)")
	watchCmd.Flags().BoolVar(&watchNoServe, "no-serve", false, "publish on changes without serving")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Publish on every content change and serve the result",
	Long: `Publish once, then watch the content, layouts, and static directories
and publish again after each burst of changes.

Changes are debounced (watch.debounce) and coalesced: edits made while a
build runs schedule exactly one more build. The live site is served with
caching disabled so a browser refresh shows the latest generation.`,
	Example: `  # Watch and serve on :8080
  folio watch

  # Watch including drafts on another port
  folio watch --drafts --addr 127.0.0.1:4000

  See Also: folio serve, folio publish`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	return runWatchWithWriter(cmd, cmd.OutOrStdout())
}

func runWatchWithWriter(cmd *cobra.Command, w io.Writer) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	logger := loggerFor(cmd)
	t, store, err := newTrigger(cfg, logger, consoleReporter{out: w})
	if err != nil {
		return folioerrors.NewBuildError(err)
	}

	// A failed first build is reported and watching continues.
	t.RunOnce(ctx, trigger.Event{Source: "watch", Detail: "initial build"})

	watcher := trigger.NewWatcher(t, cfg.Watch.Debounce, logger, cfg.ContentDir, cfg.LayoutsDir, cfg.StaticDir)

	errc := make(chan error, 2)
	go func() {
		errc <- errors.Wrap(watcher.Run(ctx), "watching content")
	}()
	running := 1

	if !watchNoServe {
		addr := watchAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := server.New(addr, store,
			server.WithStatus(t),
			server.WithNoCache(true),
			server.WithLogger(logger),
		)
		go func() {
			errc <- srv.Run(ctx)
		}()
		running++
		fmt.Fprintf(w, "Serving %s on %s\n", store.CurrentPath(), addr)
	}
	fmt.Fprintln(w, "Watching for changes. Press Ctrl+C to stop.")

	var first error
	for range running {
		if err := <-errc; err != nil && first == nil {
			first = err
			stop()
		}
	}
	t.Wait()
	return first
}
