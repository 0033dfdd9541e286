package software

import (
	"fmt"

	"github.com/gogpu/gxm"
)

// storeRow converts RGBA8 pixels src into dst encoded as format.
func storeRow(dst, src []uint8, width uint32, format gxm.ColorFormat) error {
	switch format {
	case gxm.ColorFormatU8U8U8U8ABGR:
		copy(dst[:width*4], src[:width*4])
	case gxm.ColorFormatU8U8U8U8ARGB:
		for x := uint32(0); x < width; x++ {
			i := x * 4
			dst[i+0], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i+0], src[i+3]
		}
	case gxm.ColorFormatU8R:
		for x := uint32(0); x < width; x++ {
			dst[x] = src[x*4]
		}
	case gxm.ColorFormatU5U6U5BGR:
		for x := uint32(0); x < width; x++ {
			i := x * 4
			v := uint16(src[i+0]>>3)<<11 | uint16(src[i+1]>>2)<<5 | uint16(src[i+2]>>3)
			dst[x*2+0] = uint8(v)
			dst[x*2+1] = uint8(v >> 8)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}

// loadRow converts src encoded as format into RGBA8 pixels dst.
func loadRow(dst, src []uint8, width uint32, format gxm.ColorFormat) error {
	switch format {
	case gxm.ColorFormatU8U8U8U8ABGR:
		copy(dst[:width*4], src[:width*4])
	case gxm.ColorFormatU8U8U8U8ARGB:
		for x := uint32(0); x < width; x++ {
			i := x * 4
			dst[i+0], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i+0], src[i+3]
		}
	case gxm.ColorFormatU8R:
		for x := uint32(0); x < width; x++ {
			i := x * 4
			dst[i+0], dst[i+1], dst[i+2], dst[i+3] = src[x], 0, 0, 0xFF
		}
	case gxm.ColorFormatU5U6U5BGR:
		for x := uint32(0); x < width; x++ {
			v := uint16(src[x*2+0]) | uint16(src[x*2+1])<<8
			r, g, b := uint8(v>>11), uint8(v>>5)&0x3F, uint8(v)&0x1F
			i := x * 4
			dst[i+0] = r<<3 | r>>2
			dst[i+1] = g<<2 | g>>4
			dst[i+2] = b<<3 | b>>2
			dst[i+3] = 0xFF
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}
