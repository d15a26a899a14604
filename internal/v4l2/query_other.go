//go:build !linux

package v4l2

import "errors"

// Capability queries need V4L2 ioctls; on other platforms every candidate
// is kept as-is (fail open).
func queryDevice(path string) (string, bool, error) {
	return "", false, errors.New("capability query unsupported on this platform")
}
