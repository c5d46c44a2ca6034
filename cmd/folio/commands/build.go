package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/folio/internal/build"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/publish"
)

var buildOutDir string

func init() {
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "write the rendered site to this directory")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site without publishing it",
	Long: `Parse, assemble, and render every content item exactly as a publish
would, without touching the serving root.

Without --out the rendered pages are discarded and only a summary is
printed. With --out they are written to the given directory, which is
useful for inspecting output or deploying with other tools.`,
	Example: `  # Verify the site renders
  folio build

  # Render into ./public
  folio build --out public

  See Also: folio check, folio publish`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	return runBuildWithWriter(cmd, cmd.OutOrStdout())
}

func runBuildWithWriter(cmd *cobra.Command, w io.Writer) error {
	logger := loggerFor(cmd)
	builder, err := build.FromConfig(cfg, logger)
	if err != nil {
		return folioerrors.NewBuildError(err)
	}

	out, err := builder.Build(cmd.Context(), 0)
	if err != nil {
		return folioerrors.NewBuildError(err)
	}

	if buildOutDir != "" {
		dir, err := filepath.Abs(buildOutDir)
		if err != nil {
			return errors.Wrap(err, "resolving output directory")
		}
		if _, err := publish.WriteTree(cmd.Context(), dir, out); err != nil {
			return folioerrors.NewBuildError(err)
		}
		fmt.Fprintf(w, "%s wrote %d pages from %d items to %s\n",
			color.GreenString("✓"), len(out.Pages), out.Items, dir)
		return nil
	}

	fmt.Fprintf(w, "%s rendered %d pages from %d items\n", color.GreenString("✓"), len(out.Pages), out.Items)
	fmt.Fprintf(w, "  digest: %s\n", out.Digest())
	return nil
}
