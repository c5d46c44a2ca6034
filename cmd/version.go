// Package cmd holds folio's build metadata, injected via ldflags:
//
//	go build -ldflags "-X github.com/thoreinstein/folio/cmd.Version=v1.2.0" ./cmd/folio
package cmd

var (
	// Version is the release version. It is also recorded in every
	// generation manifest.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
