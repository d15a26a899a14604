package serialport

import (
	"slices"
	"strings"

	"go.bug.st/serial/enumerator"
)

// NoDevice in a picker means "keep the sender in dry mode".
const NoDevice = "none"

// byIDCH9329 is the stable by-id path most CH9329 boards (CH340 bridge)
// show up under. Always offered, even when enumeration sees the board
// under its /dev/ttyUSB* name.
const byIDCH9329 = "/dev/serial/by-id/usb-1a86_USB_Serial-if00-port0"

// defaultCandidates is offered when port enumeration is unavailable or
// finds nothing.
var defaultCandidates = []string{
	"/dev/ttyUSB0",
	"/dev/ttyUSB1",
	byIDCH9329,
	NoDevice,
}

// wchVendorID is the USB vendor ID of the CH340/CH9329 serial bridges.
// Case of the hex digits differs across platforms.
const wchVendorID = "1a86"

// Candidates lists serial device paths for the picker: likely HID
// injectors first, then other ports, the stable by-id path, and always
// NoDevice last. Never empty.
func Candidates() []string {
	ports, err := enumerator.GetDetailedPortsList()
	return candidates(ports, err)
}

func candidates(ports []*enumerator.PortDetails, err error) []string {
	if err != nil || len(ports) == 0 {
		return defaultCandidates
	}

	var injectors, others []string
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, wchVendorID) {
			injectors = append(injectors, p.Name)
		} else {
			others = append(others, p.Name)
		}
	}

	out := append(injectors, others...)
	if !slices.Contains(out, byIDCH9329) {
		out = append(out, byIDCH9329)
	}
	return append(out, NoDevice)
}
