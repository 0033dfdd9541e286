package gxm

import (
	"errors"
	"testing"
)

func TestParseColorFormat(t *testing.T) {
	for _, f := range []ColorFormat{ColorFormatU8U8U8U8ABGR, ColorFormatU5U6U5BGR, ColorFormatU8R} {
		got, err := ParseColorFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseColorFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if got, err := ParseColorFormat("u8u8u8u8_argb"); err != nil || got != ColorFormatU8U8U8U8ARGB {
		t.Errorf("lowercase parse = %v, %v", got, err)
	}
	if _, err := ParseColorFormat("RGB565"); !errors.Is(err, ErrUnknownName) {
		t.Errorf("ParseColorFormat(RGB565) error = %v, want ErrUnknownName", err)
	}
}

func TestParsePrimitiveType(t *testing.T) {
	got, err := ParsePrimitiveType("triangle_fan")
	if err != nil || got != PrimitiveTriangleFan {
		t.Errorf("ParsePrimitiveType(triangle_fan) = %v, %v", got, err)
	}
	if _, err := ParsePrimitiveType("quads"); !errors.Is(err, ErrUnknownName) {
		t.Errorf("error = %v, want ErrUnknownName", err)
	}
}

func TestParseIndexFormat(t *testing.T) {
	tests := map[string]IndexFormat{"u16": IndexFormatU16, "Uint32": IndexFormatU32, "U32": IndexFormatU32}
	for in, want := range tests {
		if got, err := ParseIndexFormat(in); err != nil || got != want {
			t.Errorf("ParseIndexFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseIndexFormat("u8"); !errors.Is(err, ErrUnknownName) {
		t.Errorf("error = %v, want ErrUnknownName", err)
	}
}
