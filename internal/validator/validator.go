package validator

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Severity represents the impact of an issue.
type Severity int

const (
	// SeverityError blocks a publish.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not block a publish.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return errors.Newf("unknown severity %q", text)
	}
	return nil
}

// Issue is a single content problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Kind is the error taxonomy name, e.g. "DuplicateSlug". Warnings have none.
	Kind string `json:"kind,omitempty"`
	// Field is the front matter field at fault, or "ref" and "link" for
	// reference and link problems.
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Value is the offending value, such as a dangling ref target.
	Value any `json:"value,omitempty"`
	// Context locates the issue. Item problems carry path, slug, and
	// collection; rendered-page problems carry page.
	Context map[string]string `json:"context,omitempty"`
}

// Location returns the content file or rendered page the issue is about,
// or "" for site-wide problems.
func (i Issue) Location() string {
	if p := i.Context["path"]; p != "" {
		return p
	}
	return i.Context["page"]
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	if loc := i.Location(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(": ")
	}
	if i.Kind != "" {
		fmt.Fprintf(&sb, "[%s] ", i.Kind)
	}
	if i.Field != "" {
		fmt.Fprintf(&sb, "%s: ", i.Field)
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", i.Value)
	}
	return sb.String()
}

// Result aggregates the issues found in one check.
type Result struct {
	// Files is the number of content files examined.
	Files int `json:"files"`
	// Items is the number of items that parsed.
	Items  int     `json:"items"`
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue blocks a publish.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings reports whether any warning was found.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// Errors returns the error issues in the order they were found.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning issues in the order they were found.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}
