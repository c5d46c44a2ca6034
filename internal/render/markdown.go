package render

import (
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts a Markdown body to an HTML fragment.
type Markdown interface {
	Convert(src []byte, w io.Writer) error
}

// MarkdownOption configures the goldmark converter.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	unsafe    bool
	hardWraps bool
}

// WithUnsafeHTML passes raw HTML in Markdown through to the output.
func WithUnsafeHTML(enabled bool) MarkdownOption {
	return func(c *markdownConfig) {
		c.unsafe = enabled
	}
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps(enabled bool) MarkdownOption {
	return func(c *markdownConfig) {
		c.hardWraps = enabled
	}
}

type goldmarkMarkdown struct {
	md goldmark.Markdown
}

// NewGoldmark returns a Markdown converter backed by goldmark with GitHub
// Flavored Markdown and automatic heading ids. Raw HTML is escaped unless
// WithUnsafeHTML(true) is given.
func NewGoldmark(opts ...MarkdownOption) Markdown {
	var cfg markdownConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var rendererOpts []goldmark.Option
	var htmlOpts []renderer.Option
	if cfg.unsafe {
		htmlOpts = append(htmlOpts, gmhtml.WithUnsafe())
	}
	if cfg.hardWraps {
		htmlOpts = append(htmlOpts, gmhtml.WithHardWraps())
	}
	if len(htmlOpts) > 0 {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(htmlOpts...))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}, rendererOpts...)...)

	return &goldmarkMarkdown{md: md}
}

// Convert implements Markdown.
func (g *goldmarkMarkdown) Convert(src []byte, w io.Writer) error {
	return g.md.Convert(src, w)
}
