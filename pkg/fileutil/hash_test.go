package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHash(t *testing.T) {
	// sha256("hello\n")
	const want = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

	if got := HashBytes([]byte("hello\n")); got != want {
		t.Errorf("HashBytes() = %s, want %s", got, want)
	}

	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	if got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}
}

func TestHashFile_Missing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "gone.html")); err == nil {
		t.Error("expected error for a missing file")
	}
}
