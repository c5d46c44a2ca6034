package render

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/pkg/fileutil"
)

// MaxAssetSize bounds the size of a single static asset.
const MaxAssetSize = 32 << 20

// staticAssets returns the embedded default assets overlaid with the files
// under dir, keyed by slash-separated path. Hidden files are skipped. A
// missing dir yields only the defaults.
func staticAssets(dir string) (map[string][]byte, error) {
	assets := make(map[string][]byte)

	root := "defaults/static"
	err := fs.WalkDir(defaults, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := defaults.ReadFile(p)
		if err != nil {
			return err
		}
		assets[strings.TrimPrefix(p, root+"/")] = data
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading default assets")
	}

	if dir == "" {
		return assets, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return assets, nil
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := fileutil.ReadFileLimit(p, MaxAssetSize)
		if err != nil {
			return errors.Wrapf(err, "reading asset %s", rel)
		}
		assets[path.Clean(filepath.ToSlash(rel))] = data
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking static directory %s", dir)
	}
	return assets, nil
}
