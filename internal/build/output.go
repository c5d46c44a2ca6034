package build

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// Status is the outcome of a build attempt.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailed
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Output is the rendered site of one generation.
type Output struct {
	Generation uint64
	// Pages maps slash-separated output paths to file contents.
	Pages  map[string][]byte
	Status Status
	// Items is the number of content items rendered.
	Items int
}

// Paths returns the page paths in sorted order.
func (o *Output) Paths() []string {
	keys := make([]string, 0, len(o.Pages))
	for k := range o.Pages {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Digest returns a SHA-256 over every path and its contents in sorted order.
// Two outputs with equal digests are byte-identical.
func (o *Output) Digest() string {
	h := sha256.New()
	for _, k := range o.Paths() {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write(o.Pages[k])
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
