// Package ui is the application shell: a fyne window wiring the video
// preview, the device pickers and the serial text sender together.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"minikvm/internal/capture"
	"minikvm/internal/serialport"
	"minikvm/internal/v4l2"
)

const statusInterval = 500 * time.Millisecond

var baudRates = []string{"9600", "19200", "38400", "57600", "115200"}

// Config carries the CLI flags into the shell.
type Config struct {
	Device any // capture device: int index or path string
	Serial string
	Baud   int
}

// App is the main window plus the two device-owning halves (preview and
// serial sender). All mutation happens from fyne callbacks and the one
// status goroutine; senderMu covers the sender swaps.
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	preview *Preview

	senderMu sync.Mutex
	sender   *serialport.Sender

	videoSelect  *widget.Select
	videoPaths   map[string]string // select label -> device path
	baudSelect   *widget.Select
	serialSelect *widget.Select
	serialButton *widget.Button
	serialState  *widget.Label
	statsCheck   *widget.Check
	resLabel     *widget.Label

	cancelStatus context.CancelFunc
}

// New builds the window. Nothing is opened yet; Run does that.
func New(cfg Config) *App {
	fa := app.New()
	w := fa.NewWindow("minikvm")

	a := &App{
		fyneApp: fa,
		window:  w,
		preview: NewPreview(capture.New(cfg.Device)),
		sender:  serialport.New(cfg.Serial, cfg.Baud),
	}

	a.initUI(cfg)
	w.SetContent(a.createContent())
	w.Resize(fyne.NewSize(1000, 700))
	w.SetOnClosed(a.onClosing)

	return a
}

func (a *App) initUI(cfg Config) {
	a.videoPaths = make(map[string]string)
	var videoLabels []string
	for _, d := range v4l2.FindDevices() {
		label := fmt.Sprintf("%s (%s)", d.Name, d.Path)
		a.videoPaths[label] = d.Path
		videoLabels = append(videoLabels, label)
	}
	a.videoSelect = widget.NewSelect(videoLabels, a.videoChanged)
	a.videoSelect.PlaceHolder = fmt.Sprint(cfg.Device)

	a.baudSelect = widget.NewSelect(baudRates, a.baudChanged)
	a.baudSelect.Selected = strconv.Itoa(cfg.Baud)

	a.serialSelect = widget.NewSelect(serialport.Candidates(), a.serialChanged)
	a.serialSelect.Selected = cfg.Serial

	a.serialButton = widget.NewButton("Open Serial", a.toggleSerial)
	a.serialState = widget.NewLabel("Serial: closed")

	a.statsCheck = widget.NewCheck("Show stats", a.preview.SetShowStats)
	a.statsCheck.SetChecked(true)
	a.preview.SetShowStats(true)

	a.resLabel = widget.NewLabel("Resolution: N/A")
}

func (a *App) createContent() fyne.CanvasObject {
	controls := widget.NewCard("Devices", "", container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewLabel("Video:"), a.videoSelect,
			widget.NewLabel("Serial:"), a.serialSelect,
			widget.NewLabel("Baud:"), a.baudSelect,
		),
		container.NewHBox(a.serialButton, a.serialState),
		widget.NewSeparator(),
		widget.NewButton("Paste & Send", a.pasteAndSend),
		a.statsCheck,
	))

	status := container.NewHBox(a.resLabel)

	split := container.NewHSplit(container.NewVBox(controls), a.preview.Object())
	split.SetOffset(0.3)

	return container.NewBorder(nil, status, nil, nil, split)
}

// videoChanged swaps the active capture source. An open failure leaves
// the preview stopped; the shell stays up.
func (a *App) videoChanged(label string) {
	path, known := a.videoPaths[label]
	if !known {
		path = label
	}
	log.Infof("ui: switching video source to %s", path)
	if err := a.preview.SetSource(capture.New(path)); err != nil {
		log.Errorf("ui: switch video source: %v", err)
		dialog.ShowError(fmt.Errorf("open %s: %w", path, err), a.window)
	}
}

// baudChanged re-arms the sender at the new rate, keeping the open/closed
// state it had.
func (a *App) baudChanged(rate string) {
	baud, err := strconv.Atoi(rate)
	if err != nil {
		return
	}
	a.senderMu.Lock()
	defer a.senderMu.Unlock()
	wasOpen := a.sender.IsOpen()
	device := a.sender.Device()
	a.sender.Close()
	a.sender = serialport.New(device, baud)
	if wasOpen {
		a.sender.Open()
	}
}

// serialChanged closes the old sender and arms a new one for the picked
// device. "none" leaves a closed dry sender.
func (a *App) serialChanged(device string) {
	baud := a.currentBaud()

	a.senderMu.Lock()
	a.sender.Close()
	a.sender = serialport.New(device, baud)
	if device != serialport.NoDevice {
		a.sender.Open()
	}
	a.senderMu.Unlock()

	a.refreshSerialState()
}

func (a *App) toggleSerial() {
	a.senderMu.Lock()
	if a.sender.IsOpen() {
		a.sender.Close()
	} else {
		a.sender.Open()
	}
	a.senderMu.Unlock()

	a.refreshSerialState()
}

func (a *App) currentBaud() int {
	baud, err := strconv.Atoi(a.baudSelect.Selected)
	if err != nil {
		return 9600
	}
	return baud
}

// pasteAndSend asks for text and forwards it as raw UTF-8 bytes. With no
// open port the sender logs instead, so this is always safe to invoke.
func (a *App) pasteAndSend() {
	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Text to send as keystrokes")
	d := dialog.NewCustomConfirm("Paste text", "Send", "Cancel", entry, func(send bool) {
		if !send || entry.Text == "" {
			return
		}
		a.senderMu.Lock()
		a.sender.SendText(entry.Text)
		a.senderMu.Unlock()
	}, a.window)
	d.Resize(fyne.NewSize(400, 200))
	d.Show()
}

func (a *App) refreshSerialState() {
	a.senderMu.Lock()
	open := a.sender.IsOpen()
	a.senderMu.Unlock()

	if open {
		a.serialState.SetText("Serial: open")
		a.serialButton.SetText("Close Serial")
	} else {
		a.serialState.SetText("Serial: closed")
		a.serialButton.SetText("Open Serial")
	}
}

// statusLoop refreshes the resolution label and serial state every half
// second, independent of the frame tick.
func (a *App) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w, h, ok := a.preview.LastFrameSize(); ok {
				a.resLabel.SetText(fmt.Sprintf("Resolution: %dx%d", w, h))
			} else {
				a.resLabel.SetText("Resolution: N/A")
			}
			a.refreshSerialState()
		}
	}
}

// Run opens the devices, shows the window and blocks in the event loop.
// Returns the process exit code.
func (a *App) Run() int {
	a.senderMu.Lock()
	if a.sender.Device() != serialport.NoDevice {
		a.sender.Open()
	}
	a.senderMu.Unlock()

	if err := a.preview.Start(); err != nil {
		// Not fatal: the window stays up with the No Video Feed
		// placeholder and the user can pick another device.
		log.Errorf("ui: start preview: %v", err)
		dialog.ShowError(err, a.window)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelStatus = cancel
	go a.statusLoop(ctx)

	a.window.ShowAndRun()
	return 0
}

func (a *App) onClosing() {
	log.Info("ui: window closed, releasing devices")
	if a.cancelStatus != nil {
		a.cancelStatus()
	}
	a.preview.Stop()

	a.senderMu.Lock()
	a.sender.Close()
	a.senderMu.Unlock()
}
