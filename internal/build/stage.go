package build

import (
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/collection"
	"github.com/thoreinstein/folio/internal/content"
	"github.com/thoreinstein/folio/internal/render"
)

// Stage names one step of a publish run.
type Stage string

const (
	StageSync     Stage = "sync"
	StageParse    Stage = "parse"
	StageAssemble Stage = "assemble"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
	StagePublish  Stage = "publish"
)

// StageError wraps the error that aborted a run with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Slug returns the slug of the content item the failure is attributed to,
// or "" when the failure is not tied to one item.
func (e *StageError) Slug() string {
	return SlugOf(e.Err)
}

// Path returns the source path of the offending item, when known.
func (e *StageError) Path() string {
	var itemErr *content.ItemError
	if errors.As(e.Err, &itemErr) {
		return itemErr.Path
	}
	var refErr *render.ReferenceError
	if errors.As(e.Err, &refErr) {
		return refErr.Path
	}
	var dupErr *collection.DuplicateError
	if errors.As(e.Err, &dupErr) {
		return dupErr.Second
	}
	return ""
}

// SlugOf extracts the offending item's slug from err.
func SlugOf(err error) string {
	var itemErr *content.ItemError
	if errors.As(err, &itemErr) {
		return itemErr.Slug
	}
	var refErr *render.ReferenceError
	if errors.As(err, &refErr) {
		return refErr.Slug
	}
	var dupErr *collection.DuplicateError
	if errors.As(err, &dupErr) {
		return dupErr.Slug
	}
	return ""
}

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Fail wraps err as a failure of stage. A nil err stays nil and an error that
// already carries a stage is returned unchanged.
func Fail(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
