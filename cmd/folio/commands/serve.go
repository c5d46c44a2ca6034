package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/server"
	"github.com/thoreinstein/folio/internal/trigger"
	"github.com/thoreinstein/folio/internal/webhook"
)

var (
	serveAddr           string
	servePublishOnStart bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&servePublishOnStart, "publish", false, "publish once before serving")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live generation and accept push webhooks",
	Long: `Serve the current generation over HTTP and publish a new one whenever a
GitHub push to the configured branch arrives.

Endpoints:
  POST /hooks/push     GitHub push webhook (X-Hub-Signature-256 verified
                       when publish.webhook_secret is set)
  GET  /_folio/status  publish state, current generation, last outcome
  GET  /               the live site

Each request is answered entirely from one generation, even when a publish
swaps generations mid-request.`,
	Example: `  # Serve with a webhook secret from the environment
  FOLIO_PUBLISH_WEBHOOK_SECRET=s3cret folio serve

  # Publish first, then serve on another port
  folio serve --publish --addr :9000

  See Also: folio watch, folio generations`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	return runServeWithWriter(cmd, cmd.OutOrStdout())
}

func runServeWithWriter(cmd *cobra.Command, w io.Writer) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	logger := loggerFor(cmd)
	t, store, err := newTrigger(cfg, logger, nil)
	if err != nil {
		return errors.NewBuildError(err)
	}

	if cfg.Publish.WebhookSecret == "" {
		logger.Warn("publish.webhook_secret is not set; webhook signatures are not verified")
	}
	hook := webhook.New(t,
		webhook.WithSecret(cfg.Publish.WebhookSecret),
		webhook.WithBranch(cfg.Publish.Branch),
		webhook.WithRateLimit(cfg.Publish.Rate, cfg.Publish.Burst),
		webhook.WithLogger(logger),
	)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(addr, store,
		server.WithStatus(t),
		server.WithWebhook(hook),
		server.WithLogger(logger),
	)

	if servePublishOnStart {
		t.Notify(trigger.Event{Source: "startup"})
	}

	fmt.Fprintf(w, "Serving %s on %s\n", store.CurrentPath(), addr)
	err = srv.Run(ctx)
	t.Wait()
	return err
}
