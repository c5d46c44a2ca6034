package content

import (
	"strconv"
	"strings"
)

// ItemError describes a failure to load a single content file.
type ItemError struct {
	Kind  Kind
	Slug  string
	Path  string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Field != "" {
		b.WriteString(": field ")
		b.WriteString(strconv.Quote(e.Field))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ItemError) Unwrap() error {
	return e.Err
}
