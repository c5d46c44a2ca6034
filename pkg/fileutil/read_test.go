package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestReadFileWithLimit(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"small file", 100, false},
		{"exact limit", MaxFileSize, false},
		{"too large", MaxFileSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}

			// Write dummy data
			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			_, err = ReadFileWithLimit(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFileWithLimit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFileTooLarge) {
				t.Errorf("expected ErrFileTooLarge, got %v", err)
			}
		})
	}
}

func TestReadFileLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset.css")
	if err := os.WriteFile(path, []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFileLimit(path, 6)
	if err != nil {
		t.Fatalf("ReadFileLimit() error = %v", err)
	}
	if string(got) != "body{}" {
		t.Errorf("content = %q", got)
	}

	if _, err := ReadFileLimit(path, 5); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadFileLimit() error = %v, want ErrFileTooLarge", err)
	}

	if _, err := ReadFileLimit(filepath.Join(t.TempDir(), "missing"), 5); err == nil {
		t.Error("ReadFileLimit() expected error for missing file")
	}
}
