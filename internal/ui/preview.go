package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"minikvm/internal/capture"
)

const defaultTickInterval = 30 * time.Millisecond

// Preview owns exactly one capture source and renders its frames onto a
// canvas image on a periodic tick. All state is guarded by one mutex;
// stopping flips a flag (and cancels the loop context) that the next
// tick observes, so at most one more tick runs after Stop returns.
type Preview struct {
	mu       sync.Mutex
	source   *capture.Source
	running  bool
	cancel   context.CancelFunc
	interval time.Duration

	image  *canvas.Image
	noFeed *widget.Label
	stack  *fyne.Container

	// last-known frame size, cached for the status bar
	lastW, lastH int

	showStats   bool
	frameCount  int
	lastFPSTime time.Time
	fps         float64
}

// PreviewOption configures a Preview.
type PreviewOption func(*Preview)

// WithInterval overrides the tick interval. Used by tests.
func WithInterval(d time.Duration) PreviewOption {
	return func(p *Preview) { p.interval = d }
}

// NewPreview creates a stopped preview around the given source.
func NewPreview(source *capture.Source, opts ...PreviewOption) *Preview {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleFastest

	noFeed := widget.NewLabel("No Video Feed")
	noFeed.Alignment = fyne.TextAlignCenter

	p := &Preview{
		source:   source,
		interval: defaultTickInterval,
		image:    img,
		noFeed:   noFeed,
		stack:    container.NewStack(noFeed, img),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Object returns the renderable preview area.
func (p *Preview) Object() fyne.CanvasObject {
	return p.stack
}

// SetShowStats toggles the on-frame stats overlay.
func (p *Preview) SetShowStats(show bool) {
	p.mu.Lock()
	p.showStats = show
	p.mu.Unlock()
}

// Start opens the source and begins polling. An open failure is returned
// to the caller and the preview stays stopped.
func (p *Preview) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startLocked()
}

func (p *Preview) startLocked() error {
	if p.running {
		return nil
	}
	if err := p.source.Open(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	p.frameCount = 0
	p.lastFPSTime = time.Now()
	go p.loop(ctx)
	return nil
}

// Stop halts polling and releases the source. Idempotent.
func (p *Preview) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Preview) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.running = false
	p.source.Release()
}

// SetSource swaps the active capture source: stop polling, release the
// old source, adopt the new one, and resume only if the preview was
// running before. An open failure during the swap leaves the preview
// stopped and is returned for the shell to report.
func (p *Preview) SetSource(source *capture.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wasRunning := p.running
	p.stopLocked()
	p.source = source
	if !wasRunning {
		return nil
	}
	return p.startLocked()
}

// LastFrameSize returns the cached size of the most recent frame.
// ok is false before the first frame arrives.
func (p *Preview) LastFrameSize() (width, height int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastW, p.lastH, p.lastW > 0 && p.lastH > 0
}

func (p *Preview) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick reads one frame, converts it and renders it. A failed conversion
// skips the tick and keeps the previous image on screen; an empty read
// just waits for the next tick.
func (p *Preview) tick(ctx context.Context) {
	p.mu.Lock()
	if !p.running || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	frame, err := p.source.Read()
	if err != nil || frame.Empty() {
		p.mu.Unlock()
		if err != nil {
			log.Debugf("preview: read: %v", err)
		}
		return
	}
	p.lastW, p.lastH = frame.Width, frame.Height

	p.frameCount++
	now := time.Now()
	if d := now.Sub(p.lastFPSTime); d >= 500*time.Millisecond {
		p.fps = float64(p.frameCount) / d.Seconds()
		p.lastFPSTime = now
		p.frameCount = 0
	}
	var stats string
	if p.showStats {
		stats = fmt.Sprintf("%dx%d @ %.1f fps", frame.Width, frame.Height, p.fps)
	}
	p.mu.Unlock()

	img, err := frame.ToRGBA()
	if err != nil {
		log.Debugf("preview: convert: %v", err)
		return
	}
	drawStats(img, stats)

	p.image.Image = img
	p.image.Refresh()
	if p.noFeed.Visible() {
		p.noFeed.Hide()
	}
}
