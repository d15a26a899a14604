package capture

import (
	"errors"
	"image"
)

// ErrBadFrame is returned when a frame buffer cannot be converted to an
// image, e.g. an empty read or a channel count other than 3.
var ErrBadFrame = errors.New("capture: frame is empty or not 3-channel BGR")

// Frame is a single captured picture: a packed BGR byte buffer plus its
// dimensions. Frames are value types; the buffer is only valid until the
// next Read on the owning Source.
type Frame struct {
	Data     []byte
	Width    int
	Height   int
	Channels int
}

// Empty reports whether the frame holds no pixels. Read returns an empty
// frame (and no error) when the device had nothing ready.
func (f Frame) Empty() bool {
	return len(f.Data) == 0 || f.Width <= 0 || f.Height <= 0
}

// ToRGBA converts the BGR buffer into an image suitable for display.
// The only transformation is channel reordering: B,G,R -> R,G,B with an
// opaque alpha. No resize, no color-space math.
func (f Frame) ToRGBA() (*image.RGBA, error) {
	if f.Empty() || f.Channels != 3 {
		return nil, ErrBadFrame
	}
	if len(f.Data) < f.Width*f.Height*3 {
		return nil, ErrBadFrame
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := y * f.Width * 3
		dst := y * img.Stride
		for x := 0; x < f.Width; x++ {
			b := f.Data[src]
			g := f.Data[src+1]
			r := f.Data[src+2]
			img.Pix[dst] = r
			img.Pix[dst+1] = g
			img.Pix[dst+2] = b
			img.Pix[dst+3] = 0xff
			src += 3
			dst += 4
		}
	}
	return img, nil
}
