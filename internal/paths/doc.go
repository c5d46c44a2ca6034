// Package paths resolves folio's filesystem locations.
//
// Defaults follow the XDG base directory specification via
// github.com/adrg/xdg: configuration lives under [ConfigDir] and published
// generations under [DefaultServeRoot]. On macOS and Windows the platform
// equivalents are used.
package paths
