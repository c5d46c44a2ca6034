package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/folio/internal/config"
	"github.com/thoreinstein/folio/internal/editor"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change folio configuration",
	Long: `Show and change the settings in folio.yaml.

Without a subcommand, lists the effective configuration: values from the
config file, FOLIO_* environment variables, and defaults.`,
	Example: `  # List the effective configuration
  folio config

  # Get a single value
  folio config get site.base_url

  # Change a value in folio.yaml
  folio config set retention 10

  See Also: folio init`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Nested keys use dot notation. Naming a section such as "site" prints the
whole section as YAML.`,
	Example: `  # Get the site title
  folio config get site.title

  # Get the publish section
  folio config get publish

  See Also: folio config set, folio config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in folio.yaml",
	Long: `Set a configuration value in the config file in use.

The value is converted to the key's type and the whole file is validated
before it is written. Other values and comments in the file are kept.`,
	Example: `  # Keep ten generations
  folio config set retention 10

  # Publish from another branch
  folio config set publish.branch release

  See Also: folio config get, folio config edit`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective configuration",
	Long:  `List every configuration value in YAML format. Secrets are masked.`,
	Example: `  # List all configuration
  folio config list

  See Also: folio config get, folio config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open folio.yaml in your editor",
	Long: `Open the config file in $FOLIO_EDITOR, $VISUAL, or $EDITOR, then check
the saved file and report any problems.`,
	Example: `  # Edit the config
  folio config edit

  # Edit with a specific editor
  EDITOR=nano folio config edit

  See Also: folio config list, folio init`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

// configPath returns the config file in use or a user error when folio is
// running on defaults.
func configPath() (string, error) {
	path := config.FileUsed()
	if path == "" {
		return "", folioerrors.NewUserError(errors.New("no config file found"), "Create one with: folio init")
	}
	return path, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])
	if !config.IsKey(key) {
		return folioerrors.NewUserError(errors.Wrapf(config.ErrUnknownKey, "%q", key), "Run: folio config list")
	}

	w := cmd.OutOrStdout()
	if section, ok := lookupSection(viper.AllSettings(), key); ok {
		return writeYAML(w, maskSection(key, section))
	}
	value := viper.GetString(key)
	if config.IsSecret(key) {
		value = config.Mask(value)
	}
	fmt.Fprintln(w, value)
	return nil
}

// lookupSection walks settings along a dotted key and returns the section
// found there, if key names a section rather than a value.
func lookupSection(settings map[string]any, key string) (map[string]any, bool) {
	for part := range strings.SplitSeq(key, ".") {
		next, ok := settings[part].(map[string]any)
		if !ok {
			return nil, false
		}
		settings = next
	}
	return settings, true
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	key, raw := args[0], args[1]
	value, err := config.SetValue(path, key, raw)
	if err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return folioerrors.NewUserError(err, "Run: folio config list")
		}
		var fieldErr *config.FieldError
		if errors.As(err, &fieldErr) || errors.Is(err, folioerrors.ErrInvalidConfig) {
			return folioerrors.NewUserError(err, "The config file was not changed")
		}
		return errors.Wrap(err, "setting config value")
	}

	shown := fmt.Sprint(value)
	if config.IsSecret(key) {
		shown = config.Mask(shown)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set %s = %s in %s\n", color.GreenString("✓"), strings.ToLower(key), shown, path)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if path := config.FileUsed(); path != "" {
		fmt.Fprintf(w, "# %s\n", path)
	} else {
		fmt.Fprintln(w, "# no config file, using defaults")
	}
	return writeYAML(w, maskSection("", viper.AllSettings()))
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := editor.Open(cmd.Context(), path); err != nil {
		return err
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return folioerrors.NewConfigError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid\n", color.GreenString("✓"), path)
	return nil
}

// maskSection returns a copy of settings, the section named prefix, with
// secret values masked.
func maskSection(prefix string, settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))
	for _, k := range slices.Sorted(maps.Keys(settings)) {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := settings[k].(type) {
		case map[string]any:
			out[k] = maskSection(key, v)
		default:
			if config.IsSecret(key) {
				out[k] = config.Mask(fmt.Sprint(v))
				continue
			}
			out[k] = v
		}
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(enc.Close(), "encoding config")
}
