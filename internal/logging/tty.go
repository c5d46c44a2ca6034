package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Any writer with an Fd method is
// checked, so *os.File and wrappers around it both work.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor reports whether log output to w should be colorized.
//
// FOLIO_COLOR=always or never overrides detection. Otherwise NO_COLOR
// (https://no-color.org) and TERM=dumb disable color, and w must be a
// terminal.
func SupportsColor(w io.Writer) bool {
	return supportsColor(os.LookupEnv, IsTTY(w))
}

func supportsColor(lookup func(string) (string, bool), isTTY bool) bool {
	switch v, _ := lookup("FOLIO_COLOR"); v {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	return isTTY
}
