package gxm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownName is returned when parsing an unknown format or primitive name.
var ErrUnknownName = errors.New("gxm: unknown name")

// ParseColorFormat parses a name as returned by ColorFormat.String.
// Matching ignores case and underscores.
func ParseColorFormat(s string) (ColorFormat, error) {
	for f, name := range colorFormatNames {
		if normalizeName(name) == normalizeName(s) {
			return ColorFormat(f), nil
		}
	}
	return 0, fmt.Errorf("%w: color format %q", ErrUnknownName, s)
}

// ParsePrimitiveType parses a name as returned by PrimitiveType.String.
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	for p, name := range primitiveTypeNames {
		if normalizeName(name) == normalizeName(s) {
			return PrimitiveType(p), nil
		}
	}
	return 0, fmt.Errorf("%w: primitive type %q", ErrUnknownName, s)
}

// ParseIndexFormat accepts "u16"/"uint16" and "u32"/"uint32".
func ParseIndexFormat(s string) (IndexFormat, error) {
	switch normalizeName(s) {
	case "u16", "uint16":
		return IndexFormatU16, nil
	case "u32", "uint32":
		return IndexFormatU32, nil
	default:
		return 0, fmt.Errorf("%w: index format %q", ErrUnknownName, s)
	}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}
