package commands

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/folio/internal/build"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/validator"
)

var (
	checkFormat string
	checkStrict bool
)

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "output format: text, json")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "treat warnings as errors")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report every problem in the content directory",
	Long: `Check parses every content file and reports all problems at once,
where a build stops at the first.

Errors block publishing: malformed or missing front matter, empty bodies,
duplicate slugs, dangling cross-references, and broken internal links.
Warnings flag content that builds but is probably unintended.

The exit status is non-zero when any error is found.`,
	Example: `  # Check the configured content directory
  folio check

  # Machine-readable output
  folio check --format json

  See Also: folio build, folio new`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return runCheckWithWriter(cmd, cmd.OutOrStdout())
}

func runCheckWithWriter(cmd *cobra.Command, w io.Writer) error {
	format := validator.Format(checkFormat)
	if format != validator.FormatText && format != validator.FormatJSON {
		return folioerrors.NewUserError(errors.Newf("unknown format %q", checkFormat), "Use --format text or --format json")
	}

	builder, err := build.FromConfig(cfg, loggerFor(cmd))
	if err != nil {
		return folioerrors.NewBuildError(err)
	}
	result, err := builder.Check(cmd.Context())
	if err != nil {
		return folioerrors.NewUserError(err, "Check content_dir in folio.yaml")
	}

	if err := validator.NewReporter(w, format).Report(result); err != nil {
		return err
	}
	if result.HasErrors() || (checkStrict && result.HasWarnings()) {
		return folioerrors.NewExitError(nil, folioerrors.ExitUser)
	}
	return nil
}
