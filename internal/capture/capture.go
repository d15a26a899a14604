// Package capture wraps a local video capture device: open by index or
// path, probe for the highest resolution the device actually delivers,
// and read single BGR frames.
package capture

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrNotOpen is returned by Read when the source has never been opened,
// failed to open, or has been released. This is a caller bug, not a
// device condition.
var ErrNotOpen = errors.New("capture: source is not open")

// Device is the native capture backend behind a Source. Implementations
// are not safe for concurrent use; a Source serializes access.
type Device interface {
	// SetSize requests a capture resolution. Drivers may silently
	// ignore the request; callers verify by reading frames back.
	SetSize(width, height int)
	// Size returns the currently configured capture resolution, or
	// zeros when the backend cannot report one.
	Size() (width, height int)
	// Read returns the next frame, or ok=false when none is ready.
	Read() (Frame, bool)
	Close() error
}

// Opener acquires a Device for a source identifier (int index or string
// path). It returns an error for ordinary open failures (busy, absent).
type Opener func(source any) (Device, error)

// resolution candidates probed from largest to smallest. The first one
// the device confirms by delivering matching frames wins.
var probeSizes = [][2]int{
	{3840, 2160},
	{2560, 1440},
	{1920, 1080},
	{1600, 900},
	{1280, 720},
	{1024, 768},
	{800, 600},
	{640, 480},
}

const probeReads = 3

// Source owns at most one live capture Device at a time. Zero value is
// not usable; construct with New.
type Source struct {
	source any
	open   Opener

	dev    Device
	width  int
	height int
}

// Option configures a Source.
type Option func(*Source)

// WithOpener replaces the default gocv-backed opener. Used by tests and
// by callers that bring their own backend.
func WithOpener(open Opener) Option {
	return func(s *Source) { s.open = open }
}

// New creates a Source for a device index (int) or path (string). The
// device is not opened until Open is called.
func New(source any, opts ...Option) *Source {
	s := &Source{source: source, open: openGoCV}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open acquires the capture device and then probes for the highest
// confirmed-working resolution. Open failure is an ordinary error, never
// a panic; the source stays closed and may be retried.
func (s *Source) Open() error {
	if s.dev != nil {
		return nil
	}
	dev, err := s.open(s.source)
	if err != nil {
		return fmt.Errorf("capture: open %v: %w", s.source, err)
	}
	s.dev = dev
	s.negotiate()
	return nil
}

// negotiate walks probeSizes from largest to smallest, requesting each
// size and verifying with up to probeReads reads. Best effort: if no
// candidate round-trips, the pre-probe resolution is requested back so
// the device is left at whatever it defaulted to.
func (s *Source) negotiate() {
	savedW, savedH := s.dev.Size()
	for _, size := range probeSizes {
		w, h := size[0], size[1]
		s.dev.SetSize(w, h)
		for i := 0; i < probeReads; i++ {
			frame, ok := s.dev.Read()
			if !ok || frame.Empty() {
				continue
			}
			if frame.Width == w && frame.Height == h {
				s.width, s.height = w, h
				log.Infof("capture: %v confirmed %dx%d", s.source, w, h)
				return
			}
		}
	}
	if savedW > 0 && savedH > 0 {
		s.dev.SetSize(savedW, savedH)
	}
	log.Warnf("capture: %v accepted no probed resolution, keeping driver default", s.source)
}

// Read returns the next frame from the device. An empty frame with a nil
// error means nothing was ready this tick. ErrNotOpen means Open was
// never called (or Release already was).
func (s *Source) Read() (Frame, error) {
	if s.dev == nil {
		return Frame{}, ErrNotOpen
	}
	frame, ok := s.dev.Read()
	if !ok {
		return Frame{}, nil
	}
	return frame, nil
}

// Size returns the resolution confirmed during negotiation, or zeros if
// no candidate round-tripped.
func (s *Source) Size() (width, height int) {
	return s.width, s.height
}

// Release closes the device handle. Idempotent: releasing a closed or
// never-opened source is a no-op.
func (s *Source) Release() {
	if s.dev == nil {
		return
	}
	if err := s.dev.Close(); err != nil {
		log.Warnf("capture: close %v: %v", s.source, err)
	}
	s.dev = nil
}
