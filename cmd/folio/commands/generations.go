package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/logging"
	"github.com/thoreinstein/folio/internal/publish"
)

var (
	generationsListJSON     bool
	generationsListFailures bool
	generationsPruneKeep    int
)

func init() {
	generationsListCmd.Flags().BoolVar(&generationsListJSON, "json", false, "Output in JSON format")
	generationsListCmd.Flags().BoolVar(&generationsListFailures, "failures", false, "List failure reports instead of generations")
	generationsPruneCmd.Flags().IntVar(&generationsPruneKeep, "keep", 0, "generations to keep (default: retention)")

	generationsCmd.AddCommand(generationsListCmd, generationsPruneCmd, generationsRollbackCmd, generationsVerifyCmd)
	rootCmd.AddCommand(generationsCmd)
}

var generationsCmd = &cobra.Command{
	Use:     "generations",
	Aliases: []string{"gen"},
	Short:   "Inspect and manage published generations",
	Long: `Every successful publish creates a numbered generation under the
serving root. The live site is whichever generation "current" points at.

Older generations are kept up to the retention setting so the site can be
rolled back without rebuilding.`,
}

var generationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generations, newest first",
	Example: `  # List generations
  folio generations list

  # Show why recent builds failed
  folio generations list --failures

  # Output as JSON
  folio generations list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerationsList(cmd.OutOrStdout(), newStore(cfg, loggerFor(cmd)))
	},
}

// generationOutput represents a single generation in JSON output.
type generationOutput struct {
	ID           uint64    `json:"id"`
	Current      bool      `json:"current"`
	CreatedAt    time.Time `json:"created_at"`
	Files        int       `json:"files"`
	Size         int64     `json:"size"`
	Commit       string    `json:"commit,omitempty"`
	FolioVersion string    `json:"folio_version"`
}

func runGenerationsList(w io.Writer, store *publish.Store) error {
	if generationsListFailures {
		return listFailures(w, store)
	}

	manifests, err := store.List()
	if err != nil && !errors.Is(err, publish.ErrNoGenerations) {
		return errors.Wrap(err, "listing generations")
	}
	current, err := store.Current()
	if err != nil && !errors.Is(err, publish.ErrNoGenerations) {
		return errors.Wrap(err, "reading current generation")
	}

	if generationsListJSON {
		output := make([]generationOutput, len(manifests))
		for i, m := range manifests {
			output[i] = generationOutput{
				ID:           m.Generation,
				Current:      m.Generation == current,
				CreatedAt:    m.CreatedAt,
				Files:        len(m.Files),
				Size:         m.Size(),
				Commit:       m.Commit,
				FolioVersion: m.FolioVersion,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	if len(manifests) == 0 {
		fmt.Fprintln(w, "No generations published")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Publish the site with: folio publish")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tCREATED\tFILES\tSIZE\tCOMMIT")
	for _, m := range manifests {
		marker := " "
		id := strconv.FormatUint(m.Generation, 10)
		if m.Generation == current {
			marker = "*"
			id = color.GreenString(id)
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%d\t%s\t%s\n",
			marker, id,
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			len(m.Files),
			formatSize(m.Size()),
			truncate(m.Commit, 12))
	}
	return tw.Flush()
}

func listFailures(w io.Writer, store *publish.Store) error {
	reports, err := store.Failures()
	if err != nil {
		return errors.Wrap(err, "listing failure reports")
	}

	if generationsListJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	if len(reports) == 0 {
		fmt.Fprintln(w, "No failed builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tTRIGGER\tSTAGE\tKIND\tITEM\tMESSAGE")
	for _, r := range reports {
		item := r.Slug
		if r.Path != "" {
			item = r.Path
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Generation,
			r.Time.Local().Format("2006-01-02 15:04:05"),
			r.Trigger, r.Stage, r.Kind, item,
			truncate(r.Message, 60))
	}
	return tw.Flush()
}

var generationsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old generations",
	Long: `Delete all but the newest generations. The live generation is always
kept and counts toward the limit.`,
	Example: `  # Apply the configured retention
  folio generations prune

  # Keep only the live generation and one spare
  folio generations prune --keep 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerationsPrune(cmd.OutOrStdout(), newStore(cfg, loggerFor(cmd)))
	},
}

func runGenerationsPrune(w io.Writer, store *publish.Store) error {
	keep := generationsPruneKeep
	if keep <= 0 {
		keep = store.Retention()
	}
	removed, err := store.Prune(keep)
	if err != nil {
		return errors.Wrap(err, "pruning generations")
	}
	if len(removed) == 0 {
		fmt.Fprintf(w, "Nothing to prune (keeping %d)\n", keep)
		return nil
	}
	for _, id := range removed {
		fmt.Fprintf(w, "Removed generation %d\n", id)
	}
	return nil
}

var generationsRollbackCmd = &cobra.Command{
	Use:   "rollback [generation]",
	Short: "Make an earlier generation live again",
	Long: `Point the live site at an existing generation. The generation's files
are verified against its manifest first; a damaged generation is refused.

Without an argument an interactive picker is shown.`,
	Example: `  # Roll back to generation 41
  folio generations rollback 41

  # Pick interactively
  folio generations rollback`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerationsRollback(cmd.OutOrStdout(), newStore(cfg, loggerFor(cmd)), args)
	},
}

func runGenerationsRollback(w io.Writer, store *publish.Store, args []string) error {
	var (
		id  uint64
		err error
	)
	if len(args) > 0 {
		id, err = strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return folioerrors.NewUserError(errors.Newf("invalid generation %q", args[0]), "Run: folio generations list")
		}
	} else {
		id, err = pickGeneration(store)
		if err != nil {
			return err
		}
		if id == 0 {
			return nil
		}
	}

	if err := store.Rollback(id); err != nil {
		if errors.Is(err, publish.ErrGenerationCorrupted) {
			return folioerrors.NewSystemError(err, "Publish a fresh generation with: folio publish")
		}
		return folioerrors.NewUserError(err, "Run: folio generations list")
	}
	fmt.Fprintf(w, "%s generation %d is live\n", color.GreenString("✓"), id)
	return nil
}

// pickGeneration lets the user choose a generation interactively. It
// returns 0 when the picker is aborted.
func pickGeneration(store *publish.Store) (uint64, error) {
	if !logging.IsTTY(os.Stdout) {
		return 0, folioerrors.NewUserError(errors.New("generation id required"), "Run: folio generations list")
	}

	manifests, err := store.List()
	if err != nil {
		if errors.Is(err, publish.ErrNoGenerations) {
			return 0, folioerrors.NewUserError(err, "Publish the site with: folio publish")
		}
		return 0, errors.Wrap(err, "listing generations")
	}
	current, _ := store.Current()

	idx, err := fuzzyfinder.Find(
		manifests,
		func(i int) string {
			m := manifests[i]
			label := fmt.Sprintf("%d  %s", m.Generation, m.CreatedAt.Local().Format("2006-01-02 15:04"))
			if m.Generation == current {
				label += "  (live)"
			}
			return label
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			m := manifests[i]
			return fmt.Sprintf("Generation: %d\nCreated: %s\nCommit: %s\nFiles: %d\nSize: %s\nfolio: %s",
				m.Generation,
				m.CreatedAt.Local().Format(time.RFC1123),
				m.Commit,
				len(m.Files),
				formatSize(m.Size()),
				m.FolioVersion,
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "selecting generation")
	}
	return manifests[idx].Generation, nil
}

var generationsVerifyCmd = &cobra.Command{
	Use:   "verify [generation...]",
	Short: "Check generation files against their manifests",
	Long: `Re-hash every file of the given generations, or of all generations when
none are given, and compare with the hashes recorded at publish time.`,
	Example: `  # Verify everything
  folio generations verify

  # Verify the live generation only
  folio generations verify 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerationsVerify(cmd.OutOrStdout(), newStore(cfg, loggerFor(cmd)), args)
	},
}

func runGenerationsVerify(w io.Writer, store *publish.Store, args []string) error {
	var ids []uint64
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return folioerrors.NewUserError(errors.Newf("invalid generation %q", arg), "Run: folio generations list")
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		manifests, err := store.List()
		if err != nil {
			if errors.Is(err, publish.ErrNoGenerations) {
				fmt.Fprintln(w, "No generations published")
				return nil
			}
			return errors.Wrap(err, "listing generations")
		}
		for _, m := range manifests {
			ids = append(ids, m.Generation)
		}
	}

	bad := 0
	for _, id := range ids {
		if err := store.Verify(id); err != nil {
			bad++
			fmt.Fprintf(w, "%s generation %d: %v\n", color.RedString("✗"), id, err)
			continue
		}
		fmt.Fprintf(w, "%s generation %d\n", color.GreenString("✓"), id)
	}
	if bad > 0 {
		return folioerrors.NewSystemError(errors.Newf("%d of %d generation(s) failed verification", bad, len(ids)), "")
	}
	return nil
}

// formatSize renders a byte count for humans.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
