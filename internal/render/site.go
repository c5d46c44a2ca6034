package render

import (
	"net/url"
	"strings"
)

// Site carries site-wide values exposed to layouts as .Site.
type Site struct {
	Title       string
	Description string
	Author      string
	// BaseURL is a root-relative path ("/", "/blog/") or an absolute URL.
	BaseURL string
}

// BasePath returns the path component of BaseURL with leading and trailing
// slashes.
func (s Site) BasePath() string {
	p := s.BaseURL
	if u, err := url.Parse(s.BaseURL); err == nil {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// host returns the scheme and host of an absolute BaseURL, or "".
func (s Site) host() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// URL returns the root-relative URL of a site path such as "posts/hello/".
func (s Site) URL(rel string) string {
	return s.BasePath() + strings.TrimPrefix(rel, "/")
}

// AbsURL returns the absolute URL of a site path when BaseURL is absolute,
// and the root-relative URL otherwise.
func (s Site) AbsURL(rel string) string {
	return s.host() + s.URL(rel)
}
