// minikvm previews a local capture device and forwards pasted text as
// raw bytes to a serial HID injector.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"minikvm/internal/ui"
)

var (
	flagDevice = flag.String("device", "0", "video capture device index or path")
	flagSerial = flag.String("serial", "/dev/ttyUSB0", `serial device path, or "none" to only log sends`)
	flagBaud   = flag.Int("baud", 9600, "serial baud rate")
	flagName   = flag.String("name", "", "operator name for the startup greeting")
	flagNoGUI  = flag.Bool("nogui", false, "print the greeting and exit without starting the GUI")
)

func main() {
	flag.Parse()

	if *flagBaud <= 0 {
		log.Fatal("--baud must be > 0")
	}

	if *flagName != "" {
		fmt.Printf("hello, %s\n", *flagName)
	} else {
		fmt.Println("minikvm")
	}
	if *flagNoGUI {
		return
	}

	if !ui.Available() {
		log.Error("no display available (DISPLAY/WAYLAND_DISPLAY unset)")
		os.Exit(2)
	}

	// A numeric --device is a capture index, anything else is a path.
	var device any = *flagDevice
	if n, err := strconv.Atoi(*flagDevice); err == nil {
		device = n
	}

	app := ui.New(ui.Config{
		Device: device,
		Serial: *flagSerial,
		Baud:   *flagBaud,
	})
	os.Exit(app.Run())
}
