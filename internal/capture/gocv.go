package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// gocvDevice adapts gocv.VideoCapture to the Device interface. It reuses
// one Mat across reads; frames are copied out so callers never see the
// Mat's backing store after the next Read.
type gocvDevice struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// openGoCV is the default Opener. source is an int index or string path,
// both of which gocv accepts directly.
func openGoCV(source any) (Device, error) {
	cap, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, err
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("device %v did not open", source)
	}
	return &gocvDevice{cap: cap, mat: gocv.NewMat()}, nil
}

func (d *gocvDevice) SetSize(width, height int) {
	d.cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	d.cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
}

func (d *gocvDevice) Size() (int, int) {
	w := int(d.cap.Get(gocv.VideoCaptureFrameWidth))
	h := int(d.cap.Get(gocv.VideoCaptureFrameHeight))
	return w, h
}

func (d *gocvDevice) Read() (Frame, bool) {
	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return Frame{}, false
	}
	data := d.mat.ToBytes()
	return Frame{
		Data:     data,
		Width:    d.mat.Cols(),
		Height:   d.mat.Rows(),
		Channels: d.mat.Channels(),
	}, true
}

func (d *gocvDevice) Close() error {
	d.mat.Close()
	return d.cap.Close()
}
