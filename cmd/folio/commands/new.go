package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/thoreinstein/folio/internal/content"
	"github.com/thoreinstein/folio/internal/editor"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/pkg/fileutil"
	"github.com/thoreinstein/folio/pkg/frontmatter"
)

var (
	newTitle    string
	newDraft    bool
	newTOML     bool
	newCategory string
	newStack    []string
	newGitHub   string
	newOrder    int
	newTags     []string
	newEdit     bool
)

// now is replaced in tests.
var now = time.Now

func init() {
	newCmd.Flags().StringVar(&newTitle, "title", "", "title (default: derived from the slug)")
	newCmd.Flags().BoolVar(&newDraft, "draft", false, "mark the item as a draft")
	newCmd.Flags().BoolVar(&newTOML, "toml", false, "write TOML front matter (+++) instead of YAML")
	newCmd.Flags().StringSliceVar(&newTags, "tags", nil, "post tags")
	newCmd.Flags().StringVar(&newCategory, "category", "Projects", "project category")
	newCmd.Flags().StringSliceVar(&newStack, "stack", nil, "project stack, e.g. --stack Go,SQLite")
	newCmd.Flags().StringVar(&newGitHub, "github", "", "project repository URL")
	newCmd.Flags().IntVar(&newOrder, "order", 0, "project display order")
	newCmd.Flags().BoolVarP(&newEdit, "edit", "e", false, "open the new file in $FOLIO_EDITOR, $VISUAL, or $EDITOR")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <post|project> <slug>",
	Short: "Create a content file with front matter filled in",
	Long: `Create posts/<slug>.md or projects/<slug>.md under the content directory
with every required front matter field present.

Existing files are never overwritten. Project fields that have no sensible
default are left empty when not given on the command line; folio check
reports them until they are filled in.`,
	Example: `  # Start a post dated today
  folio new post hello-world

  # Start a post and open it in your editor
  folio new post hello-world --edit

  # Start a project
  folio new project sundial --stack Go --github https://github.com/me/sundial --order 3

  See Also: folio check`,
	Args: cobra.ExactArgs(2),
	RunE: runNew,
}

type postMatter struct {
	Title       string   `yaml:"title" toml:"title"`
	Date        string   `yaml:"date" toml:"date"`
	Description string   `yaml:"description" toml:"description"`
	Tags        []string `yaml:"tags" toml:"tags"`
	Draft       bool     `yaml:"draft,omitempty" toml:"draft,omitempty"`
}

type projectMatter struct {
	Title       string   `yaml:"title" toml:"title"`
	Category    string   `yaml:"category" toml:"category"`
	Stack       []string `yaml:"stack" toml:"stack"`
	GitHub      string   `yaml:"github" toml:"github"`
	Description string   `yaml:"description" toml:"description"`
	Order       int      `yaml:"order" toml:"order"`
	Draft       bool     `yaml:"draft,omitempty" toml:"draft,omitempty"`
}

func runNew(cmd *cobra.Command, args []string) error {
	return runNewWithWriter(cmd, args, cmd.OutOrStdout())
}

func runNewWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	kind, err := content.ParseKind(args[0])
	if err != nil {
		return folioerrors.NewUserError(err, "Use: folio new post <slug> or folio new project <slug>")
	}
	slug := args[1]
	if !content.ValidSlug(slug) {
		return folioerrors.NewUserError(errors.Newf("invalid slug %q", slug),
			"Use lowercase letters, digits, and hyphens, e.g. my-first-post")
	}

	path := filepath.Join(cfg.ContentDir, kind.Dir(), slug+".md")
	if _, err := os.Stat(path); err == nil {
		return folioerrors.NewUserError(errors.Newf("%s already exists", path), "Choose another slug or edit the existing file")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "checking for existing file")
	}

	title := newTitle
	if title == "" {
		title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	var matter any
	switch kind {
	case content.KindPost:
		matter = postMatter{
			Title:       title,
			Date:        now().Format(time.DateOnly),
			Description: "",
			Tags:        nonNil(newTags),
			Draft:       newDraft,
		}
	default:
		matter = projectMatter{
			Title:       title,
			Category:    newCategory,
			Stack:       nonNil(newStack),
			GitHub:      newGitHub,
			Description: "",
			Order:       newOrder,
			Draft:       newDraft,
		}
	}

	syntax := frontmatter.YAML
	if newTOML {
		syntax = frontmatter.TOML
	}
	data, err := frontmatter.Format(syntax, matter, "Write here.\n")
	if err != nil {
		return errors.Wrap(err, "formatting front matter")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating content directory")
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	fmt.Fprintf(w, "%s created %s\n", color.GreenString("✓"), path)
	if newEdit {
		return editor.Open(cmd.Context(), path)
	}
	if kind == content.KindProject {
		fmt.Fprintln(w, "  Fill in any empty fields before publishing; folio check lists them.")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
