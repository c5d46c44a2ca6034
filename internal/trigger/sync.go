package trigger

import (
	"context"
	"log/slog"

	"github.com/thoreinstein/folio/internal/git"
)

// Syncer brings the content directory up to date before a build and
// returns the commit being built, or "" when unknown.
type Syncer interface {
	Sync(ctx context.Context) (string, error)
}

// GitSyncer pulls the git repository containing Dir.
type GitSyncer struct {
	Dir string
	// Pull runs git pull --ff-only before reading HEAD.
	Pull   bool
	Logger *slog.Logger
}

// Sync implements Syncer. Directories outside a git work tree are built as
// they are.
func (g *GitSyncer) Sync(ctx context.Context) (string, error) {
	if !git.IsRepo(ctx, g.Dir) {
		if g.Pull {
			return "", git.ValidateRepo(ctx, g.Dir)
		}
		return "", nil
	}
	if g.Pull {
		if err := git.Pull(ctx, g.Dir); err != nil {
			return "", err
		}
	}
	commit, err := git.Head(ctx, g.Dir)
	if err != nil {
		return "", err
	}
	if g.Logger != nil {
		g.Logger.Debug("synced content", "dir", g.Dir, "commit", commit)
	}
	return commit, nil
}
