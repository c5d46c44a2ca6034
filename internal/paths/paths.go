package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName names folio's directories under the XDG base directories.
const AppName = "folio"

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
// Other paths, including "~user/...", are returned unchanged, as is the
// input when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Resolve expands "~" in p and anchors a relative result at base. Config
// files use it so their directories are relative to the file, not to the
// working directory. An empty p or base leaves p as is after expansion.
func Resolve(base, p string) string {
	p = ExpandHome(p)
	if p == "" || base == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ConfigHome returns the XDG config home directory: ~/.config on Linux,
// ~/Library/Application Support on macOS, %LOCALAPPDATA% on Windows.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory: ~/.local/share on Linux,
// ~/Library/Application Support on macOS, %LOCALAPPDATA% on Windows.
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns folio's user configuration directory,
// <ConfigHome>/folio.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DefaultServeRoot returns the serving root used when none is configured,
// <DataHome>/folio/site.
func DefaultServeRoot() string {
	return filepath.Join(DataHome(), AppName, "site")
}
