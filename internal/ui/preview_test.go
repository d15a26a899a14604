package ui

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"minikvm/internal/capture"
)

type testDevice struct {
	w, h int
	reqW int
	reqH int
	// when set, frames come back 4-channel and cannot be converted
	bad    atomic.Bool
	reads  atomic.Int32
	closed atomic.Int32
}

func (d *testDevice) SetSize(w, h int) { d.reqW, d.reqH = w, h }

func (d *testDevice) Size() (int, int) { return 0, 0 }

func (d *testDevice) Read() (capture.Frame, bool) {
	d.reads.Add(1)
	if d.reqW != d.w || d.reqH != d.h {
		return capture.Frame{}, false
	}
	channels := 3
	if d.bad.Load() {
		channels = 4
	}
	return capture.Frame{
		Data:     make([]byte, d.w*d.h*channels),
		Width:    d.w,
		Height:   d.h,
		Channels: channels,
	}, true
}

func (d *testDevice) Close() error {
	d.closed.Add(1)
	return nil
}

func newTestSource(dev *testDevice) *capture.Source {
	return capture.New(0, capture.WithOpener(func(any) (capture.Device, error) {
		return dev, nil
	}))
}

func failingSource() *capture.Source {
	return capture.New(-99, capture.WithOpener(func(any) (capture.Device, error) {
		return nil, errors.New("device absent")
	}))
}

func waitForFrame(t *testing.T, p *Preview) (int, int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w, h, ok := p.LastFrameSize(); ok {
			return w, h
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("no frame arrived")
	return 0, 0
}

func TestPreviewStartAndTick(t *testing.T) {
	test.NewApp()
	dev := &testDevice{w: 640, h: 480}
	p := NewPreview(newTestSource(dev), WithInterval(time.Millisecond))

	if _, _, ok := p.LastFrameSize(); ok {
		t.Fatal("size known before first frame")
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	w, h := waitForFrame(t, p)
	if w != 640 || h != 480 {
		t.Fatalf("last frame size %dx%d, want 640x480", w, h)
	}
}

func TestPreviewKeepsLastImageOnConvertFailure(t *testing.T) {
	test.NewApp()
	dev := &testDevice{w: 640, h: 480}
	p := NewPreview(newTestSource(dev), WithInterval(time.Millisecond))

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForFrame(t, p)

	// Wait until a frame has actually been rendered, then make every
	// further frame unconvertible.
	deadline := time.Now().Add(2 * time.Second)
	for p.image.Image == nil && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if p.image.Image == nil {
		t.Fatal("no frame was rendered")
	}
	dev.bad.Store(true)
	readsBefore := dev.reads.Load()
	time.Sleep(50 * time.Millisecond)
	if dev.reads.Load() <= readsBefore {
		t.Fatal("polling stopped after conversion failures")
	}

	p.Stop()
	time.Sleep(5 * time.Millisecond) // let an in-flight tick drain

	if p.image.Image == nil {
		t.Fatal("previous image was dropped on conversion failure")
	}
	// Bad frames still tick through: their size is cached, only the
	// render is skipped, and the loop keeps running.
	if w, h, ok := p.LastFrameSize(); !ok || w != 640 || h != 480 {
		t.Fatalf("last frame size %dx%d ok=%v, want 640x480", w, h, ok)
	}
}

func TestPreviewStartFailure(t *testing.T) {
	test.NewApp()
	p := NewPreview(failingSource(), WithInterval(time.Millisecond))

	if err := p.Start(); err == nil {
		t.Fatal("Start should fail when the source cannot open")
	}
	// Stopping a never-started preview must be safe.
	p.Stop()
	p.Stop()
}

func TestPreviewStopReleasesSource(t *testing.T) {
	test.NewApp()
	dev := &testDevice{w: 640, h: 480}
	p := NewPreview(newTestSource(dev), WithInterval(time.Millisecond))

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	p.Stop()
	p.Stop()
	if got := dev.closed.Load(); got != 1 {
		t.Fatalf("device closed %d times, want 1", got)
	}
}

func TestSetSourceWhileRunning(t *testing.T) {
	test.NewApp()
	oldDev := &testDevice{w: 640, h: 480}
	newDev := &testDevice{w: 1280, h: 720}
	p := NewPreview(newTestSource(oldDev), WithInterval(time.Millisecond))

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()
	waitForFrame(t, p)

	if err := p.SetSource(newTestSource(newDev)); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if oldDev.closed.Load() != 1 {
		t.Fatal("old device was not released on swap")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w, h, _ := p.LastFrameSize(); w == 1280 && h == 720 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("no frame from the new source")
}

func TestSetSourceWhileStopped(t *testing.T) {
	test.NewApp()
	dev := &testDevice{w: 640, h: 480}
	p := NewPreview(failingSource(), WithInterval(time.Millisecond))

	// Swapping a stopped preview must not open the new source.
	if err := p.SetSource(newTestSource(dev)); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if _, _, ok := p.LastFrameSize(); ok {
		t.Fatal("stopped preview should not poll")
	}
}

func TestSetSourceOpenFailureLeavesStopped(t *testing.T) {
	test.NewApp()
	dev := &testDevice{w: 640, h: 480}
	p := NewPreview(newTestSource(dev), WithInterval(time.Millisecond))

	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForFrame(t, p)

	if err := p.SetSource(failingSource()); err == nil {
		t.Fatal("SetSource should surface the open failure")
	}
	if dev.closed.Load() != 1 {
		t.Fatal("old device should be released even when the swap fails")
	}
	// A failed swap leaves the preview stopped; Stop stays a no-op.
	p.Stop()
}
