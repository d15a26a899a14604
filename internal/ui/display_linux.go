//go:build linux

package ui

import "os"

// Available reports whether a display server is reachable. Without one,
// creating the fyne app aborts deep inside the GL driver, so the caller
// checks this first and exits with a clean error instead.
func Available() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
