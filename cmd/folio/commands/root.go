// Package commands implements the CLI commands for folio.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/folio/cmd"
	"github.com/thoreinstein/folio/internal/config"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/logging"
	"github.com/thoreinstein/folio/internal/publish"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// drafts holds the value of the --drafts flag.
var drafts bool

// cfg is the configuration loaded at startup.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file (default: ./folio.yaml, then $XDG_CONFIG_HOME/folio/folio.yaml)")
	rootCmd.PersistentFlags().BoolVar(&drafts, "drafts", false,
		"include items marked draft: true")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("folio version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	publish.Version = cmd.Version
}

func initConfig() {
	config.Init()
	if flag := rootCmd.PersistentFlags().Lookup("drafts"); flag.Changed {
		viper.Set("drafts", drafts)
	}
	// Capture load errors for later reporting
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Build and publish a site from Markdown collections",
	Long: `folio turns a directory of Markdown posts and projects into a static
site and publishes it atomically.

Every publish renders a complete new generation next to the live one and
swaps it in with a single rename. A build that fails for any reason leaves
the live site exactly as it was.

Publishes run on demand (folio publish), on file changes (folio watch),
or on GitHub push webhooks (folio serve).`,
	Example: `  # Check content for problems
  folio check

  # Build and publish once
  folio publish

  # Rebuild on every change and serve locally
  folio watch

  # Serve the site and accept push webhooks
  folio serve

  See Also: folio new, folio generations`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return folioerrors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("FOLIO_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	primary := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	}).Handler()

	handlers := []slog.Handler{primary}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return folioerrors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewTee(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports a configuration that failed to load.
func checkConfig(cmd *cobra.Command, _ []string) error {
	// help and version never need config; init and config must work when
	// the config file is missing or broken.
	switch cmd.Name() {
	case "help", "version", initCmd.Name():
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return nil
		}
	}
	if configLoadErr != nil {
		return folioerrors.NewConfigError(configLoadErr)
	}
	if used := config.FileUsed(); used != "" {
		logging.FromContext(cmd.Context()).Debug("loaded config", "path", used)
	}
	return nil
}

// Execute runs the root command and prints any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return errors.Wrap(err, "executing root command")
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return folioerrors.ExitSuccess
	}
	var exitErr *folioerrors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return folioerrors.ExitUser
}

// printError writes err and its suggestion, if any. An ExitError without an
// underlying error has already been reported by its command.
func printError(w io.Writer, err error) {
	var exitErr *folioerrors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), exitErr.Err)
		}
		if exitErr.Suggestion != "" {
			fmt.Fprintf(w, "%s %s\n", color.YellowString("Hint:"), exitErr.Suggestion)
		}
		return
	}
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
}
