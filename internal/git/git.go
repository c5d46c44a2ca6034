// Package git wraps the git commands used to sync a content repository
// before a build.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// run executes git with args in dir and returns trimmed stdout. On failure
// the error carries git's stderr.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Never block a background build on a credential prompt
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", errors.Wrapf(err, "git %s", args[0])
		}
		return "", errors.Wrapf(err, "git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	out, err := run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// ValidateRepo returns ErrNotRepository when dir is not inside a git work
// tree.
func ValidateRepo(ctx context.Context, dir string) error {
	if !IsRepo(ctx, dir) {
		return errors.Wrapf(ErrNotRepository, "%s", dir)
	}
	return nil
}

// Pull performs a fast-forward-only pull in the repository containing dir.
// Stdin is not connected, so pulls requiring interactive authentication
// fail instead of hanging.
func Pull(ctx context.Context, dir string) error {
	if err := ValidateRepo(ctx, dir); err != nil {
		return err
	}
	if _, err := run(ctx, dir, "pull", "--ff-only"); err != nil {
		return errors.Wrap(err, "git pull failed")
	}
	return nil
}

// Head returns the commit hash checked out in the repository containing dir.
func Head(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", errors.Wrap(err, "reading HEAD")
	}
	return out, nil
}
