package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestValidateRepo(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()

	if err := ValidateRepo(t.Context(), filepath.Join(tmpDir, "nonexistent")); !errors.Is(err, ErrNotRepository) {
		t.Errorf("nonexistent path: error = %v, want ErrNotRepository", err)
	}
	if err := ValidateRepo(t.Context(), tmpDir); !errors.Is(err, ErrNotRepository) {
		t.Errorf("plain directory: error = %v, want ErrNotRepository", err)
	}

	repo := filepath.Join(tmpDir, "repo")
	createLocalGitRepo(t, repo)
	sub := filepath.Join(repo, "content")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := ValidateRepo(t.Context(), sub); err != nil {
		t.Errorf("subdirectory of a work tree: error = %v", err)
	}
}

func TestPullAndHead_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	requireGit(t)

	tmpDir := t.TempDir()
	sourceRepo := filepath.Join(tmpDir, "source")
	destRepo := filepath.Join(tmpDir, "dest")

	createLocalGitRepo(t, sourceRepo)
	runGit(t, tmpDir, "clone", "file://"+sourceRepo, destRepo)

	before, err := Head(t.Context(), destRepo)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if len(before) != 40 {
		t.Errorf("Head() = %q, want a full hash", before)
	}

	if err := os.WriteFile(filepath.Join(sourceRepo, "newfile.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, sourceRepo, "add", "newfile.txt")
	runGit(t, sourceRepo, "commit", "-m", "add newfile")

	if err := Pull(t.Context(), destRepo); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(destRepo, "newfile.txt")); err != nil {
		t.Errorf("pulled file missing: %v", err)
	}

	after, err := Head(t.Context(), destRepo)
	if err != nil {
		t.Fatal(err)
	}
	if after == before {
		t.Error("Head() should change after pulling a new commit")
	}
}

func TestPull_NotRepository(t *testing.T) {
	requireGit(t)
	if err := Pull(t.Context(), t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("Pull() error = %v, want ErrNotRepository", err)
	}
}

func TestPull_Cancelled(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "repo")
	createLocalGitRepo(t, repo)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := Pull(ctx, repo); err == nil {
		t.Error("Pull() with a cancelled context should fail")
	}
}

func createLocalGitRepo(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repo"), 0o644); err != nil {
		t.Fatal(err)
	}

	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "initial commit")
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s failed: %v\nOutput: %s", strings.Join(args, " "), err, out)
	}
}
