//go:build linux

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// VIDIOC_QUERYCAP = _IOR('V', 0, struct v4l2_capability)
	vidiocQuerycap = 0x80685600

	capVideoCapture = 0x00000001 // V4L2_CAP_VIDEO_CAPTURE
	capDeviceCaps   = 0x80000000 // V4L2_CAP_DEVICE_CAPS
)

// capability must match the kernel's struct v4l2_capability layout
// (104 bytes).
type capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

// queryDevice issues VIDIOC_QUERYCAP against a device node and reports
// whether it exposes the video-capture capability.
func queryDevice(path string) (string, bool, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return "", false, err
	}
	defer unix.Close(fd)

	var cap capability
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(fd),
		uintptr(vidiocQuerycap),
		uintptr(unsafe.Pointer(&cap)),
	)
	if errno != 0 {
		return "", false, errno
	}

	// device_caps describes this node specifically; capabilities covers
	// the whole physical device. Prefer the former when present.
	caps := cap.capabilities
	if caps&capDeviceCaps != 0 {
		caps = cap.deviceCaps
	}
	return string(cap.card[:]), caps&capVideoCapture != 0, nil
}
