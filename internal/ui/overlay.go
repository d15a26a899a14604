package ui

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawStats burns a stats line (resolution, FPS) onto the top-left corner
// of a frame. The frame is already a private copy, so drawing in place is
// fine. For nicer type, load a TTF via golang.org/x/image/font/opentype.
func drawStats(img *image.RGBA, text string) {
	if img == nil || text == "" {
		return
	}

	col := color.RGBA{R: 255, G: 255, A: 255} // yellow

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(10), Y: fixed.I(20)},
	}
	d.DrawString(text)
}
