//go:build !linux

package ui

// Available reports whether a display is reachable. Windows and macOS
// sessions always have one.
func Available() bool {
	return true
}
