// Package editor opens content files in the user's text editor.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Open runs the user's editor on path and waits for it to exit. The
// editor inherits the terminal.
func Open(ctx context.Context, path string) error {
	argv := command(os.LookupEnv, exec.LookPath)
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// command picks the editor: $FOLIO_EDITOR, $VISUAL, $EDITOR, then nano if
// installed, then vi. Variables may carry arguments, e.g. "code --wait".
func command(lookup func(string) (string, bool), lookPath func(string) (string, error)) []string {
	for _, key := range []string{"FOLIO_EDITOR", "VISUAL", "EDITOR"} {
		if v, ok := lookup(key); ok {
			if fields := strings.Fields(v); len(fields) > 0 {
				return fields
			}
		}
	}
	if _, err := lookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
