package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validation errors for configuration fields.
var (
	// ErrRequired indicates a required field is empty.
	ErrRequired = errors.New("value is required")

	// ErrOutOfRange indicates a numeric or duration field is outside its bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidURL indicates base_url is neither a path nor an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid base URL")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	field := func(name string, value any, err error) {
		errs = append(errs, &FieldError{Field: name, Value: value, Err: err})
	}

	if strings.TrimSpace(cfg.Site.Title) == "" {
		field("site.title", cfg.Site.Title, ErrRequired)
	}
	if err := validateBaseURL(cfg.Site.BaseURL); err != nil {
		field("site.base_url", cfg.Site.BaseURL, err)
	}
	if cfg.Site.RecentPosts < 0 {
		field("site.recent_posts", cfg.Site.RecentPosts, ErrOutOfRange)
	}

	if cfg.ContentDir == "" {
		field("content_dir", cfg.ContentDir, ErrRequired)
	}
	for _, p := range []struct{ name, path string }{
		{"content_dir", cfg.ContentDir},
		{"layouts_dir", cfg.LayoutsDir},
		{"static_dir", cfg.StaticDir},
		{"serve_root", cfg.ServeRoot},
	} {
		if err := validatePath(p.path); err != nil {
			errs = append(errs, &PathError{Field: p.name, Path: p.path, Err: err})
		}
	}

	if cfg.Retention < 1 {
		field("retention", cfg.Retention, ErrOutOfRange)
	}
	if cfg.Workers < 0 {
		field("workers", cfg.Workers, ErrOutOfRange)
	}
	if cfg.BuildTimeout < 0 {
		field("build_timeout", cfg.BuildTimeout, ErrOutOfRange)
	}
	if cfg.Watch.Debounce < 0 {
		field("watch.debounce", cfg.Watch.Debounce, ErrOutOfRange)
	}

	if cfg.Publish.Branch == "" {
		field("publish.branch", cfg.Publish.Branch, ErrRequired)
	}
	if cfg.Publish.Rate <= 0 {
		field("publish.rate", cfg.Publish.Rate, ErrOutOfRange)
	}
	if cfg.Publish.Burst < 1 {
		field("publish.burst", cfg.Publish.Burst, ErrOutOfRange)
	}

	if cfg.Server.Addr == "" {
		field("server.addr", cfg.Server.Addr, ErrRequired)
	}

	return errs
}

// validateBaseURL accepts a root-relative path ("/", "/blog/") or an
// absolute http(s) URL.
func validateBaseURL(raw string) error {
	if raw == "" {
		return ErrRequired
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "parsing base_url"), ErrInvalidURL)
	}
	if u.Scheme == "" && u.Host == "" {
		if !strings.HasPrefix(u.Path, "/") {
			return ErrInvalidURL
		}
		return nil
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Null bytes are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	if filepath.Clean(path) == "" {
		return ErrInvalidPath
	}

	return nil
}

// FieldError reports an invalid value for a configuration key.
type FieldError struct {
	Field string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (got %v)", e.Field, e.Err, e.Value)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Field, e.Err, e.Path)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
