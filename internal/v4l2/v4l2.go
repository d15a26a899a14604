// Package v4l2 enumerates local video capture devices. On Linux it globs
// /dev/video* and filters out nodes that report no video-capture
// capability (metadata-only nodes on UVC cameras); elsewhere it returns a
// fixed fallback pair.
package v4l2

import (
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Device describes one enumerated capture device.
type Device struct {
	Name string
	Path string
}

// fallbackDevices is returned when no candidate paths exist at all.
var fallbackDevices = []Device{
	{Name: "video0", Path: "/dev/video0"},
	{Name: "video1", Path: "/dev/video1"},
}

// probeFunc queries one device node. ok=false means the node exists but
// is not a video capture device; err means the query itself failed.
type probeFunc func(path string) (name string, ok bool, err error)

// FindDevices lists video capture devices, lexicographically by path.
// Never returns an empty slice: if filtering removes everything the
// unfiltered path set is returned, and if the glob matches nothing the
// hard-coded fallback pair is.
func FindDevices() []Device {
	paths, err := filepath.Glob("/dev/video*")
	if err != nil {
		paths = nil
	}
	return findDevices(paths, queryDevice)
}

func findDevices(paths []string, probe probeFunc) []Device {
	if len(paths) == 0 {
		return fallbackDevices
	}
	sort.Strings(paths)

	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		name, ok, err := probe(path)
		if err != nil {
			// Fail open: a device we cannot query may still work.
			log.Warnf("v4l2: query %s: %v (keeping)", path, err)
			devices = append(devices, Device{Name: displayName("", path), Path: path})
			continue
		}
		if !ok {
			continue
		}
		devices = append(devices, Device{Name: displayName(name, path), Path: path})
	}

	if len(devices) == 0 {
		// Filtering emptied the list; better to offer everything than
		// to hide a possibly valid device.
		for _, path := range paths {
			devices = append(devices, Device{Name: displayName("", path), Path: path})
		}
	}
	return devices
}

// displayName cleans up a V4L2 card name. UVC devices often repeat the
// name after a colon ("HD Webcam: HD Webcam"), so everything from the
// first colon on is dropped.
func displayName(card, path string) string {
	name := strings.TrimRight(card, "\x00")
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return filepath.Base(path)
	}
	return name
}
