package publish

import (
	"path/filepath"
	"strconv"
)

const (
	currentLink   = "current"
	stateFile     = "state.json"
	manifestFile  = "manifest.json"
	siteDir       = "site"
	stagingDir    = "staging"
	generationDir = "generations"
	failuresDir   = "failures"
)

// CurrentPath returns the path of the current symlink.
func (s *Store) CurrentPath() string {
	return filepath.Join(s.root, currentLink)
}

func (s *Store) statePath() string {
	return filepath.Join(s.root, stateFile)
}

func (s *Store) stagingRoot() string {
	return filepath.Join(s.root, stagingDir)
}

func (s *Store) generationsRoot() string {
	return filepath.Join(s.root, generationDir)
}

func (s *Store) failuresRoot() string {
	return filepath.Join(s.root, failuresDir)
}

// GenerationPath returns the directory of generation id.
func (s *Store) GenerationPath(id uint64) string {
	return filepath.Join(s.generationsRoot(), genName(id))
}

// SitePath returns the site directory of generation id.
func (s *Store) SitePath(id uint64) string {
	return filepath.Join(s.GenerationPath(id), siteDir)
}

func (s *Store) failurePath(id uint64) string {
	return filepath.Join(s.failuresRoot(), genName(id)+".json")
}

// linkTarget is the relative target of the current symlink for id, so the
// serving root can be moved as a whole.
func linkTarget(id uint64) string {
	return filepath.Join(generationDir, genName(id), siteDir)
}

func genName(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func parseGenName(name string) (uint64, bool) {
	id, err := strconv.ParseUint(name, 10, 64)
	if err != nil || id == 0 || genName(id) != name {
		return 0, false
	}
	return id, true
}
