// Package config provides configuration management for the folio CLI.
//
// # Configuration File
//
// folio reads folio.yaml from the current directory, then from
// $FOLIO_CONFIG_DIR, then from ~/.config/folio/. Every key can be overridden
// from the environment with the FOLIO_ prefix, dots replaced by
// underscores (FOLIO_PUBLISH_WEBHOOK_SECRET for publish.webhook_secret).
//
//	site:
//	  title: "My Site"
//	  base_url: /
//	  recent_posts: 5
//	content_dir: content
//	layouts_dir: layouts
//	static_dir: static
//	serve_root: ~/.local/share/folio/site
//	retention: 5
//	publish:
//	  branch: main
//	  webhook_secret: ""
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return errors.Wrap(err, "loading config")
//	}
//
// A missing file is not an error when no explicit path is given; defaults
// apply. Loaded configurations are validated automatically and a failure is
// marked with errors.ErrInvalidConfig. [Validate] returns the individual
// [FieldError] and [PathError] values.
package config
