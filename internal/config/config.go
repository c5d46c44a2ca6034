// Package config provides configuration management for folio using Viper.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
	"github.com/thoreinstein/folio/internal/paths"
)

// FileName is the base name of the configuration file, without extension.
const FileName = "folio"

// Config represents the top-level configuration structure.
type Config struct {
	Site         Site          `mapstructure:"site" yaml:"site"`
	ContentDir   string        `mapstructure:"content_dir" yaml:"content_dir"`
	LayoutsDir   string        `mapstructure:"layouts_dir" yaml:"layouts_dir"`
	StaticDir    string        `mapstructure:"static_dir" yaml:"static_dir"`
	ServeRoot    string        `mapstructure:"serve_root" yaml:"serve_root"`
	Retention    int           `mapstructure:"retention" yaml:"retention"`
	Workers      int           `mapstructure:"workers" yaml:"workers"`
	Drafts       bool          `mapstructure:"drafts" yaml:"drafts"`
	BuildTimeout time.Duration `mapstructure:"build_timeout" yaml:"build_timeout"`
	Markdown     Markdown      `mapstructure:"markdown" yaml:"markdown"`
	Watch        Watch         `mapstructure:"watch" yaml:"watch"`
	Publish      Publish       `mapstructure:"publish" yaml:"publish"`
	Server       Server        `mapstructure:"server" yaml:"server"`
}

// Site holds values exposed to layouts as .Site.
type Site struct {
	Title       string `mapstructure:"title" yaml:"title"`
	Description string `mapstructure:"description" yaml:"description"`
	Author      string `mapstructure:"author" yaml:"author"`
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	RecentPosts int    `mapstructure:"recent_posts" yaml:"recent_posts"`
}

// Markdown configures the Markdown converter.
type Markdown struct {
	// Unsafe passes raw HTML in content bodies through to the output.
	Unsafe    bool `mapstructure:"unsafe" yaml:"unsafe"`
	HardWraps bool `mapstructure:"hard_wraps" yaml:"hard_wraps"`
}

// Watch configures the filesystem watcher.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Publish configures how publish runs are triggered.
type Publish struct {
	Branch        string  `mapstructure:"branch" yaml:"branch"`
	WebhookSecret string  `mapstructure:"webhook_secret" yaml:"webhook_secret"`
	GitPull       bool    `mapstructure:"git_pull" yaml:"git_pull"`
	Rate          float64 `mapstructure:"rate" yaml:"rate"`
	Burst         int     `mapstructure:"burst" yaml:"burst"`
}

// Server configures the HTTP server used by serve and watch.
type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// WorkerCount returns the configured worker count, or GOMAXPROCS when unset.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Init resets Viper and registers folio's defaults, search paths, and
// environment bindings. Call this once at application startup before
// accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	if dir := os.Getenv("FOLIO_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(paths.ConfigDir())

	// FOLIO_PUBLISH_WEBHOOK_SECRET overrides publish.webhook_secret
	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.title", "My Site")
	v.SetDefault("site.description", "")
	v.SetDefault("site.author", "")
	v.SetDefault("site.base_url", "/")
	v.SetDefault("site.recent_posts", 5)
	v.SetDefault("content_dir", "content")
	v.SetDefault("layouts_dir", "layouts")
	v.SetDefault("static_dir", "static")
	v.SetDefault("serve_root", "")
	v.SetDefault("retention", 5)
	v.SetDefault("workers", 0)
	v.SetDefault("drafts", false)
	v.SetDefault("build_timeout", "0s")
	v.SetDefault("markdown.unsafe", false)
	v.SetDefault("markdown.hard_wraps", false)
	v.SetDefault("watch.debounce", "500ms")
	v.SetDefault("publish.branch", "main")
	v.SetDefault("publish.webhook_secret", "")
	v.SetDefault("publish.git_pull", false)
	v.SetDefault("publish.rate", 1.0)
	v.SetDefault("publish.burst", 5)
	v.SetDefault("server.addr", ":8080")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
// The returned configuration has been validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
		if path != "" {
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		}
	}

	// Directories in a config file are relative to that file.
	var base string
	if used := viper.ConfigFileUsed(); used != "" {
		base = filepath.Dir(used)
	}
	return decode(viper.GetViper(), base)
}

// Parse decodes YAML configuration data over the defaults and validates it
// without touching the global configuration. Environment overrides are not
// applied. Relative directories resolve against base.
func Parse(data []byte, base string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing config"), folioerrors.ErrInvalidConfig)
	}
	return decode(v, base)
}

func decode(v *viper.Viper, base string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), folioerrors.ErrInvalidConfig)
	}

	cfg.ContentDir = paths.Resolve(base, cfg.ContentDir)
	cfg.LayoutsDir = paths.Resolve(base, cfg.LayoutsDir)
	cfg.StaticDir = paths.Resolve(base, cfg.StaticDir)
	cfg.ServeRoot = paths.Resolve(base, cfg.ServeRoot)
	if cfg.ServeRoot == "" {
		cfg.ServeRoot = paths.DefaultServeRoot()
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Mark(errors.Join(errs...), folioerrors.ErrInvalidConfig), "validating config")
	}

	return &cfg, nil
}

// FileUsed returns the path of the configuration file that was read, or ""
// when defaults were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
