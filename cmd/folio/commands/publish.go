package commands

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/trigger"
)

func init() {
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build a new generation and make it live",
	Long: `Build a new generation from the content directory and, if every stage
succeeds, make it the live site with a single atomic swap.

When the content directory is a git work tree its HEAD commit is recorded
in the generation manifest. With publish.git_pull enabled the tree is
fast-forwarded first.

On failure nothing under the serving root changes except a failure report,
kept for folio generations list --failures.`,
	Example: `  # Publish once
  folio publish

  # Publish including drafts
  folio publish --drafts

  See Also: folio generations, folio watch`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, _ []string) error {
	return runPublishWithWriter(cmd, cmd.OutOrStdout())
}

func runPublishWithWriter(cmd *cobra.Command, w io.Writer) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	t, _, err := newTrigger(cfg, loggerFor(cmd), consoleReporter{out: w})
	if err != nil {
		return folioerrors.NewBuildError(err)
	}

	o := t.RunOnce(ctx, trigger.Event{Source: "manual"})
	if o.Published {
		return nil
	}
	if o.Err == nil {
		return folioerrors.NewSystemError(errors.Newf("generation %d was not published", o.Generation), "")
	}
	// Already reported by the console reporter.
	exitErr := folioerrors.NewBuildError(o.Err)
	exitErr.Err = nil
	return exitErr
}
