package gxm

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gxm/guest"
)

// ColorFormat is the in-memory pixel layout of a color surface.
type ColorFormat uint8

const (
	// ColorFormatU8U8U8U8ABGR stores R, G, B, A bytes in that order.
	ColorFormatU8U8U8U8ABGR ColorFormat = iota
	// ColorFormatU8U8U8U8ARGB stores B, G, R, A bytes in that order.
	ColorFormatU8U8U8U8ARGB
	// ColorFormatU5U6U5BGR is 16-bit packed RGB.
	ColorFormatU5U6U5BGR
	// ColorFormatU1U5U5U5ABGR is 16-bit packed RGB with a 1-bit alpha.
	ColorFormatU1U5U5U5ABGR
	// ColorFormatU4U4U4U4ABGR is 16-bit packed RGBA.
	ColorFormatU4U4U4U4ABGR
	// ColorFormatF16F16F16F16RGBA is four half floats.
	ColorFormatF16F16F16F16RGBA
	// ColorFormatF32R is a single 32-bit float channel.
	ColorFormatF32R
	// ColorFormatU8R is a single byte channel.
	ColorFormatU8R
)

var colorFormatNames = [...]string{
	ColorFormatU8U8U8U8ABGR:     "U8U8U8U8_ABGR",
	ColorFormatU8U8U8U8ARGB:     "U8U8U8U8_ARGB",
	ColorFormatU5U6U5BGR:        "U5U6U5_BGR",
	ColorFormatU1U5U5U5ABGR:     "U1U5U5U5_ABGR",
	ColorFormatU4U4U4U4ABGR:     "U4U4U4U4_ABGR",
	ColorFormatF16F16F16F16RGBA: "F16F16F16F16_RGBA",
	ColorFormatF32R:             "F32_R",
	ColorFormatU8R:              "U8_R",
}

// String returns the format name.
func (f ColorFormat) String() string {
	if int(f) < len(colorFormatNames) {
		return colorFormatNames[f]
	}
	return "Unknown"
}

// BytesPerPixel returns the size of one pixel, or 0 for unknown formats.
func (f ColorFormat) BytesPerPixel() uint32 {
	switch f {
	case ColorFormatU8U8U8U8ABGR, ColorFormatU8U8U8U8ARGB, ColorFormatF32R:
		return 4
	case ColorFormatU5U6U5BGR, ColorFormatU1U5U5U5ABGR, ColorFormatU4U4U4U4ABGR:
		return 2
	case ColorFormatF16F16F16F16RGBA:
		return 8
	case ColorFormatU8R:
		return 1
	default:
		return 0
	}
}

// StrideInBytes converts a row stride in pixels to bytes.
func (f ColorFormat) StrideInBytes(strideInPixels uint32) uint64 {
	return uint64(strideInPixels) * uint64(f.BytesPerPixel())
}

// TextureFormat returns the equivalent GPU texture format.
// Packed 16-bit formats have no direct equivalent and map to
// TextureFormatUndefined; backends convert them on upload.
func (f ColorFormat) TextureFormat() gputypes.TextureFormat {
	switch f {
	case ColorFormatU8U8U8U8ABGR:
		return gputypes.TextureFormatRGBA8Unorm
	case ColorFormatU8U8U8U8ARGB:
		return gputypes.TextureFormatBGRA8Unorm
	case ColorFormatF16F16F16F16RGBA:
		return gputypes.TextureFormatRGBA16Float
	case ColorFormatF32R:
		return gputypes.TextureFormatR32Float
	case ColorFormatU8R:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// ColorSurface describes a guest-memory color buffer.
//
// A ColorSurface is a plain value: it is copied into render context state
// and never shared between the producer and the dispatcher.
type ColorSurface struct {
	Width          uint32
	Height         uint32
	StrideInPixels uint32
	Format         ColorFormat
	Data           guest.Address

	// Disabled means no color write target is bound.
	Disabled bool
}

// ByteSize returns the size of the pixel buffer in guest memory.
// Buffers larger than the 32-bit guest space saturate at math.MaxUint32
// and fail Validate.
func (s *ColorSurface) ByteSize() uint32 {
	n := s.byteSize()
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func (s *ColorSurface) byteSize() uint64 {
	return uint64(s.Height) * s.Format.StrideInBytes(s.StrideInPixels)
}

// Validate checks that the surface describes a usable buffer.
func (s *ColorSurface) Validate() error {
	switch {
	case s.Width == 0 || s.Height == 0:
		return fmt.Errorf("%w: zero size %dx%d", ErrInvalidSurface, s.Width, s.Height)
	case s.Format.BytesPerPixel() == 0:
		return fmt.Errorf("%w: unknown format %d", ErrInvalidSurface, s.Format)
	case s.StrideInPixels < s.Width:
		return fmt.Errorf("%w: stride %d smaller than width %d", ErrInvalidSurface, s.StrideInPixels, s.Width)
	case s.byteSize() > math.MaxUint32:
		return fmt.Errorf("%w: %dx%d stride %d exceeds guest address space",
			ErrInvalidSurface, s.Width, s.Height, s.StrideInPixels)
	}
	return nil
}

// DepthStencilSurface describes depth and stencil buffers in guest memory.
// Depth and Stencil are independently optional; a null address means the
// buffer is not bound.
type DepthStencilSurface struct {
	Format  gputypes.TextureFormat
	Depth   guest.Address
	Stencil guest.Address
}

// HasDepth reports whether a depth buffer is bound.
func (s *DepthStencilSurface) HasDepth() bool { return !s.Depth.IsNull() }

// HasStencil reports whether a stencil buffer is bound.
func (s *DepthStencilSurface) HasStencil() bool { return !s.Stencil.IsNull() }

// ResetDepth unbinds the depth buffer.
func (s *DepthStencilSurface) ResetDepth() { s.Depth = 0 }

// ResetStencil unbinds the stencil buffer.
func (s *DepthStencilSurface) ResetStencil() { s.Stencil = 0 }
