package publish

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetention is the number of generations kept when unset.
const DefaultRetention = 5

var (
	// ErrNoGenerations indicates nothing has been published yet.
	ErrNoGenerations = errors.New("no generations found")

	// ErrGenerationCorrupted indicates a stored file no longer matches the
	// hash recorded in its manifest.
	ErrGenerationCorrupted = errors.New("generation corrupted")

	// ErrNotSuccessful indicates an attempt to stage a build that did not
	// succeed.
	ErrNotSuccessful = errors.New("build output is not successful")
)

// Manifest describes one generation. It is stored as manifest.json next to
// the generation's site directory.
type Manifest struct {
	Version    int       `json:"version"`
	Generation uint64    `json:"generation"`
	CreatedAt  time.Time `json:"created_at"`
	// FolioVersion is the version of folio that rendered the generation.
	FolioVersion string `json:"folio_version"`
	// Commit is the content repository HEAD at build time, when known.
	Commit string `json:"commit,omitempty"`
	Files  []File `json:"files"`
}

// File is one entry of a manifest.
type File struct {
	// Path is slash-separated and relative to the site directory.
	Path       string `json:"path"`
	SHA256Hash string `json:"sha256_hash"`
	Size       int64  `json:"size"`
}

// Size returns the total size of the generation's files.
func (m *Manifest) Size() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.Size
	}
	return n
}

// Staged is a generation written to staging but not yet promoted.
type Staged struct {
	Manifest *Manifest
	// Dir is the staging directory holding manifest.json and site/.
	Dir string
}

// FailureReport records a failed publish run.
type FailureReport struct {
	Generation uint64    `json:"generation"`
	Time       time.Time `json:"time"`
	Trigger    string    `json:"trigger,omitempty"`
	Stage      string    `json:"stage"`
	Kind       string    `json:"kind"`
	Slug       string    `json:"slug,omitempty"`
	Path       string    `json:"path,omitempty"`
	Message    string    `json:"message"`
}

// state is the content of state.json.
type state struct {
	LastGeneration uint64    `json:"last_generation"`
	UpdatedAt      time.Time `json:"updated_at"`
}
