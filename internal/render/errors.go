package render

import (
	"fmt"

	"github.com/thoreinstein/folio/internal/content"
	"github.com/thoreinstein/folio/internal/errors"
)

// ReferenceError reports a cross-reference whose target is not part of the
// generation, or a ref: used where it cannot be resolved. Reason is set in
// the second case.
type ReferenceError struct {
	Kind   content.Kind
	Slug   string
	Path   string
	Target string
	Reason string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q references %q: %s: %v", e.Kind, e.Slug, e.Target, e.Reason, errors.ErrUnresolvedReference)
	}
	return fmt.Sprintf("%s %q references %q: %v", e.Kind, e.Slug, e.Target, errors.ErrUnresolvedReference)
}

// Unwrap returns ErrUnresolvedReference.
func (e *ReferenceError) Unwrap() error {
	return errors.ErrUnresolvedReference
}

// LinkError reports an internal link on a rendered page that does not
// resolve to another page or asset of the generation.
type LinkError struct {
	Page string
	Link string
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("page %s links to %q: %v", e.Page, e.Link, errors.ErrUnresolvedReference)
}

// Unwrap returns ErrUnresolvedReference.
func (e *LinkError) Unwrap() error {
	return errors.ErrUnresolvedReference
}
