package console

import (
	"io"
	"os"

	"golang.org/x/term"
)

// console.go answers what a renderer needs to know about its output
// stream: whether it is an interactive terminal and how wide it is.

// Width reports the current column count of w when it is a terminal.
// For anything else, or when the size query fails, it reports fallback,
// so callers always get a usable width.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols < 1 {
		return fallback
	}
	return cols
}

// IsTerminal reports whether w is attached to an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
