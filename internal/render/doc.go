// Package render turns an assembled collection set into the pages of a site.
//
// Rendering is pure: every page, including copied static assets and the
// sitemap, is returned in memory in a [Result] keyed by its slash-separated
// output path. Nothing is written to disk.
//
// Layouts are html/template files. Defaults are embedded; a file of the same
// name in the layouts directory replaces the default. base.html wraps every
// page and calls the "main" template that each page layout defines. Files in
// partials/ are shared by all layouts.
//
// Markdown bodies may link to other items with a ref: URL, either
// ref:<kind>/<slug> or ref:<slug> for an item of the same kind, optionally
// followed by #fragment. After rendering, every internal link on every page
// is checked against the result; a dangling reference or link fails the
// render with an error wrapping errors.ErrUnresolvedReference.
package render
