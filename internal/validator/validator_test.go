package validator

import (
	"testing"
)

func TestSeverity_Text(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Severity
		if err := got.UnmarshalText(text); err != nil || got != s {
			t.Errorf("round trip of %v = %v, %v", s, got, err)
		}
	}
	if Severity(99).String() != "unknown" {
		t.Errorf("Severity(99) = %q", Severity(99).String())
	}
	var s Severity
	if err := s.UnmarshalText([]byte("fatal")); err == nil {
		t.Error("UnmarshalText(fatal) should fail")
	}
}

func TestIssue_Error(t *testing.T) {
	tests := []struct {
		name string
		i    Issue
		want string
	}{
		{
			name: "item error",
			i: Issue{
				Severity: SeverityError,
				Kind:     "MalformedMetadata",
				Field:    "date",
				Message:  "is not a date",
				Value:    "soon",
				Context:  map[string]string{"path": "posts/a.md"},
			},
			want: `posts/a.md: [MalformedMetadata] date: is not a date (got soon)`,
		},
		{
			name: "page link",
			i: Issue{
				Severity: SeverityError,
				Kind:     "UnresolvedReference",
				Field:    "link",
				Message:  "does not resolve",
				Context:  map[string]string{"page": "posts/a/index.html"},
			},
			want: `posts/a/index.html: [UnresolvedReference] link: does not resolve`,
		},
		{
			name: "site-wide",
			i:    Issue{Severity: SeverityError, Message: "layout failed"},
			want: "layout failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.i.Error(); got != tt.want {
				t.Errorf("Issue.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResult_Filters(t *testing.T) {
	r := &Result{Issues: []Issue{
		{Severity: SeverityWarning, Message: "w1"},
		{Severity: SeverityError, Message: "e1"},
		{Severity: SeverityError, Message: "e2"},
	}}

	if !r.HasErrors() || !r.HasWarnings() {
		t.Error("expected errors and warnings")
	}
	if errs := r.Errors(); len(errs) != 2 || errs[0].Message != "e1" || errs[1].Message != "e2" {
		t.Errorf("Errors() = %v", errs)
	}
	if w := r.Warnings(); len(w) != 1 {
		t.Errorf("Warnings() = %v", w)
	}

	clean := &Result{}
	if clean.HasErrors() || clean.HasWarnings() {
		t.Error("empty result should have no issues")
	}
}

func TestResult_NilSafety(t *testing.T) {
	var r *Result
	if r.HasErrors() || r.HasWarnings() {
		t.Error("nil result should have no issues")
	}
	if r.Errors() != nil || r.Warnings() != nil {
		t.Error("nil result should return nil slices")
	}
}
