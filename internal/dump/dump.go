// Package dump persists color surfaces as image files for debugging.
package dump

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Errors returned by Writer.
var (
	// ErrUnsupportedFormat is returned for an unknown image format.
	ErrUnsupportedFormat = errors.New("dump: unsupported format")

	// ErrInvalidImage is returned when dimensions, channels or stride do
	// not describe the pixel buffer.
	ErrInvalidImage = errors.New("dump: invalid image")
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ParseFormat parses a format name, case-insensitively. An empty name
// selects PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatPNG, nil
	case FormatPNG, FormatBMP, FormatTIFF:
		return f, nil
	case "tif":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Writer writes surface images into Dir.
type Writer struct {
	Dir    string
	Format Format
}

// WriteImage writes a width x height image with the given channel count.
// Rows in pixels are stride bytes apart. filename gets the writer's
// extension and is placed in Dir.
func (w *Writer) WriteImage(filename string, width, height, channels int, pixels []byte, stride int) error {
	img, err := toImage(width, height, channels, pixels, stride)
	if err != nil {
		return err
	}

	format := w.Format
	if format == "" {
		format = FormatPNG
	}
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return fmt.Errorf("dump: create dir: %w", err)
		}
	}

	path := filepath.Join(w.Dir, filepath.Base(filename)+format.Ext())
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("dump: create file: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img to out in format.
func Encode(out io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(out, img)
	case FormatBMP:
		err = bmp.Encode(out, img)
	case FormatTIFF:
		err = tiff.Encode(out, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("dump: encode %s: %w", format, err)
	}
	return nil
}

// Decode reads an image written by Writer. The format is detected from
// the content.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("dump: decode: %w", err)
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out, nil
}

// toImage copies the strided pixel buffer into an image. Four channels
// are RGBA, three RGB, one gray.
func toImage(width, height, channels int, pixels []byte, stride int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidImage, width, height)
	}
	if stride < width*channels {
		return nil, fmt.Errorf("%w: stride %d for %d pixels of %d channels", ErrInvalidImage, stride, width, channels)
	}
	if need := stride*(height-1) + width*channels; len(pixels) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrInvalidImage, len(pixels), need)
	}

	rect := image.Rect(0, 0, width, height)
	switch channels {
	case 4:
		img := image.NewNRGBA(rect)
		for y := range height {
			copy(img.Pix[y*img.Stride:], pixels[y*stride:y*stride+width*4])
		}
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for y := range height {
			row := pixels[y*stride:]
			for x := range width {
				off := y*img.Stride + x*4
				img.Pix[off] = row[x*3]
				img.Pix[off+1] = row[x*3+1]
				img.Pix[off+2] = row[x*3+2]
				img.Pix[off+3] = 255
			}
		}
		return img, nil
	case 1:
		img := image.NewGray(rect)
		for y := range height {
			copy(img.Pix[y*img.Stride:], pixels[y*stride:y*stride+width])
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidImage, channels)
	}
}
