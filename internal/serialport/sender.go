// Package serialport sends pasted text as raw UTF-8 bytes to a serial
// HID injector (CH9329-style). Interpretation of the bytes is entirely
// up to the receiving hardware.
package serialport

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const readTimeout = time.Second

// Port is the subset of the native serial connection the sender needs.
// go.bug.st/serial's Port satisfies it.
type Port interface {
	Write(p []byte) (int, error)
	Close() error
}

// OpenFunc acquires a serial connection. A nil OpenFunc puts the sender
// permanently in dry mode.
type OpenFunc func(device string, baud int) (Port, error)

// openReal opens via go.bug.st/serial with a fixed short read timeout.
func openReal(device string, baud int) (Port, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

// Sender owns at most one serial connection. Closed is the initial and
// the expected steady state; sends while closed are logged, not sent.
type Sender struct {
	device string
	baud   int
	open   OpenFunc
	port   Port
}

// Option configures a Sender.
type Option func(*Sender)

// WithOpenFunc replaces the backend opener. Pass nil for dry mode.
func WithOpenFunc(open OpenFunc) Option {
	return func(s *Sender) { s.open = open }
}

// New creates a closed Sender for the given device and baud rate. The
// device "none" (or "") selects dry mode: Open is a no-op and every send
// is logged instead of transmitted.
func New(device string, baud int, opts ...Option) *Sender {
	s := &Sender{device: device, baud: baud, open: openReal}
	if device == "" || device == "none" {
		s.open = nil
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Device returns the configured device path.
func (s *Sender) Device() string { return s.device }

// IsOpen reports whether a live connection is held.
func (s *Sender) IsOpen() bool { return s.port != nil }

// Open acquires the serial connection. Failure leaves the sender closed
// and logs; it is not an error the caller needs to unwind, the sender
// keeps working in its logged (dry) form.
func (s *Sender) Open() {
	if s.port != nil {
		return
	}
	if s.open == nil {
		log.Infof("serial: no backend for %q, sends will be logged only", s.device)
		return
	}
	port, err := s.open(s.device, s.baud)
	if err != nil {
		log.Warnf("serial: open %s @ %d: %v", s.device, s.baud, err)
		return
	}
	s.port = port
	log.Infof("serial: opened %s @ %d", s.device, s.baud)
}

// SendText writes the text as UTF-8 bytes. While closed (including dry
// mode) the text is logged instead. A write failure is logged and the
// connection kept; the next send tries again on the same handle.
func (s *Sender) SendText(text string) {
	if s.port == nil {
		log.Infof("serial (dry): %s", text)
		return
	}
	if _, err := s.port.Write([]byte(text)); err != nil {
		log.Errorf("serial: write to %s: %v", s.device, err)
	}
}

// Close releases the connection. Idempotent; closing a never-opened
// sender is a no-op.
func (s *Sender) Close() {
	if s.port == nil {
		return
	}
	if err := s.port.Close(); err != nil {
		log.Warnf("serial: close %s: %v", s.device, err)
	}
	s.port = nil
}
