package errors

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrDuplicateSlug, ExitUser),
			wantTarget: ErrDuplicateSlug,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewExitError(errors.Wrap(ErrEmptyBody, "posts/hello"), ExitUser),
			wantTarget: ErrEmptyBody,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrInvalidConfig,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"malformed metadata", errors.Wrap(ErrMalformedMetadata, "posts/a.md"), "MalformedMetadata"},
		{"empty body", errors.Wrapf(ErrEmptyBody, "slug %s", "a"), "EmptyBody"},
		{"duplicate slug", fmt.Errorf("assemble: %w", ErrDuplicateSlug), "DuplicateSlug"},
		{"unresolved reference", errors.Wrap(ErrUnresolvedReference, "ref:posts/missing"), "UnresolvedReference"},
		{"write failure", errors.Wrap(ErrWriteFailure, "disk full"), "WriteFailure"},
		{"marked error", errors.Mark(errors.New("no space left on device"), ErrWriteFailure), "WriteFailure"},
		{"other", errors.New("boom"), "Internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBuildError(t *testing.T) {
	if IsBuildError(nil) {
		t.Error("IsBuildError(nil) = true, want false")
	}
	if IsBuildError(errors.New("plain")) {
		t.Error("IsBuildError(plain) = true, want false")
	}
	if !IsBuildError(errors.Wrap(ErrDuplicateSlug, "projects")) {
		t.Error("IsBuildError(duplicate slug) = false, want true")
	}
}

func TestNewBuildError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"content problem", errors.Wrap(ErrMalformedMetadata, "missing title"), ExitUser},
		{"write failure", errors.Wrap(ErrWriteFailure, "rename"), ExitSystem},
		{"unknown", errors.New("boom"), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBuildError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("NewBuildError() should wrap the original error")
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrMalformedMetadata", ErrMalformedMetadata, "malformed metadata"},
		{"ErrEmptyBody", ErrEmptyBody, "empty body"},
		{"ErrDuplicateSlug", ErrDuplicateSlug, "duplicate slug"},
		{"ErrUnresolvedReference", ErrUnresolvedReference, "unresolved reference"},
		{"ErrWriteFailure", ErrWriteFailure, "write failure"},
		{"ErrNotFound", ErrNotFound, "resource not found"},
		{"ErrInvalidConfig", ErrInvalidConfig, "invalid configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}
}

func TestErrorWrappingChain(t *testing.T) {
	wrappedOnce := errors.Wrap(ErrInvalidConfig, "parsing folio.yaml")
	wrappedTwice := errors.Wrapf(wrappedOnce, "loading config %q", "site")
	exitErr := NewExitError(wrappedTwice, ExitUser)

	if !errors.Is(exitErr, ErrInvalidConfig) {
		t.Error("errors.Is() should find ErrInvalidConfig through wrapping chain")
	}

	var target *ExitError
	if !errors.As(exitErr, &target) {
		t.Error("errors.As() should find ExitError")
	}

	want := `loading config "site": parsing folio.yaml: invalid configuration`
	if got := exitErr.Error(); got != want {
		t.Errorf("ExitError.Error() = %q, want %q", got, want)
	}
}

func TestNewConstructors(t *testing.T) {
	t.Run("NewUserError", func(t *testing.T) {
		e := NewUserError(errors.New("user error"), "check input")
		if e.Code != ExitUser {
			t.Errorf("Code = %d, want %d", e.Code, ExitUser)
		}
		if e.Suggestion != "check input" {
			t.Errorf("Suggestion = %q, want 'check input'", e.Suggestion)
		}
	})

	t.Run("NewSystemError", func(t *testing.T) {
		e := NewSystemError(errors.New("system error"), "check logs")
		if e.Code != ExitSystem {
			t.Errorf("Code = %d, want %d", e.Code, ExitSystem)
		}
	})

	t.Run("NewConfigError", func(t *testing.T) {
		e := NewConfigError(errors.New("config error"))
		if e.Code != ExitUser {
			t.Errorf("Code = %d, want %d", e.Code, ExitUser)
		}
		if e.Suggestion == "" {
			t.Error("NewConfigError() should carry a suggestion")
		}
	})
}
