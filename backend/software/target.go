package software

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// Target is a render target holding RGBA8 pixels.
type Target struct {
	width  uint32
	height uint32
	data   []uint8 // RGBA, 4 bytes per pixel, rows packed
}

// NewTarget creates a transparent black target.
func NewTarget(width, height uint32) *Target {
	return &Target{
		width:  width,
		height: height,
		data:   make([]uint8, int(width)*int(height)*4),
	}
}

// Width returns the width of the target.
func (t *Target) Width() uint32 {
	return t.width
}

// Height returns the height of the target.
func (t *Target) Height() uint32 {
	return t.height
}

// Format returns the GPU texture format of the pixel store.
func (t *Target) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Data returns the raw pixel data.
func (t *Target) Data() []uint8 {
	return t.data
}

// SetPixel sets the color of a single pixel. Out of range writes are ignored.
func (t *Target) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= int(t.width) || y < 0 || y >= int(t.height) {
		return
	}
	i := (y*int(t.width) + x) * 4
	t.data[i+0] = c.R
	t.data[i+1] = c.G
	t.data[i+2] = c.B
	t.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
func (t *Target) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= int(t.width) || y < 0 || y >= int(t.height) {
		return color.RGBA{}
	}
	i := (y*int(t.width) + x) * 4
	return color.RGBA{R: t.data[i+0], G: t.data[i+1], B: t.data[i+2], A: t.data[i+3]}
}

// Clear fills the entire target with a color.
func (t *Target) Clear(c color.RGBA) {
	for i := 0; i < len(t.data); i += 4 {
		t.data[i+0] = c.R
		t.data[i+1] = c.G
		t.data[i+2] = c.B
		t.data[i+3] = c.A
	}
}

// ToImage copies the target into an image.RGBA.
func (t *Target) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(t.width), int(t.height)))
	copy(img.Pix, t.data)
	return img
}

// row returns the pixels of row y.
func (t *Target) row(y uint32) []uint8 {
	start := y * t.width * 4
	return t.data[start : start+t.width*4]
}
