package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/folio/internal/config"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/pkg/fileutil"
)

var (
	initYes     bool
	initForce   bool
	initTitle   string
	initBaseURL string
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Non-interactive mode, accept all defaults")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing folio.yaml")
	initCmd.Flags().StringVar(&initTitle, "title", "My Site", "Site title")
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "/", "Site base URL, a path such as /blog/ or an http(s) URL")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new folio site",
	Long: `Create folio.yaml and the content, layouts, and static directories in dir,
or in the current directory when dir is omitted.

Existing directories and files inside them are left alone.`,
	Example: `  # Start a site in the current directory
  folio init

  # Start a site elsewhere without prompting
  folio init ~/sites/notes --yes --title "Notes"

  # Rewrite an existing folio.yaml
  folio init --force

  See Also: folio config, folio new`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// siteScaffold is the folio.yaml written by init. Settings it omits keep
// their defaults.
type siteScaffold struct {
	Site struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"site"`
	ContentDir string `yaml:"content_dir"`
	LayoutsDir string `yaml:"layouts_dir"`
	StaticDir  string `yaml:"static_dir"`
	Retention  int    `yaml:"retention"`
	Publish    struct {
		Branch string `yaml:"branch"`
	} `yaml:"publish"`
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(err, "resolving site directory")
	}
	w := cmd.OutOrStdout()
	configPath := filepath.Join(dir, config.FileName+".yaml")

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	var scaffold siteScaffold
	scaffold.Site.Title = initTitle
	scaffold.Site.BaseURL = initBaseURL
	scaffold.ContentDir = "content"
	scaffold.LayoutsDir = "layouts"
	scaffold.StaticDir = "static"
	scaffold.Retention = 5
	scaffold.Publish.Branch = "main"

	data, err := yaml.Marshal(&scaffold)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	if _, err := config.Parse(data, dir); err != nil {
		return folioerrors.NewUserError(err, "Check the --title and --base-url values")
	}

	created := []string{
		configPath,
		filepath.Join(dir, scaffold.ContentDir, "posts"),
		filepath.Join(dir, scaffold.ContentDir, "projects"),
		filepath.Join(dir, scaffold.LayoutsDir),
		filepath.Join(dir, scaffold.StaticDir),
	}

	if !initYes {
		fmt.Fprintln(w, "This will create:")
		for _, p := range created {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintln(w)

		if !confirm(cmd.InOrStdin(), w, "Proceed?") {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	for _, p := range created[1:] {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", p)
		}
	}
	if err := fileutil.AtomicWriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Fprintf(w, "%s Created %s\n", color.GreenString("✓"), configPath)
	fmt.Fprintln(w, "Next: folio new post hello-world")
	return nil
}

// confirm prompts the user for a yes/no confirmation.
// Returns true only if the user enters "y" or "yes" (case-insensitive).
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N] ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
