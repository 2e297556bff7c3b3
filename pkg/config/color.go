package config

import (
	"fmt"
	"image/color"
	"strings"
)

// ParseColor parses #rgb, #rrggbb or #rrggbbaa. The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var digits []uint8
	for i := 0; i < len(hex); i++ {
		v, ok := hexValue(hex[i])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		digits = append(digits, v)
	}

	switch len(digits) {
	case 3:
		return color.NRGBA{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: 255}, nil
	case 6:
		return color.NRGBA{R: pair(digits[0:2]), G: pair(digits[2:4]), B: pair(digits[4:6]), A: 255}, nil
	case 8:
		return color.NRGBA{R: pair(digits[0:2]), G: pair(digits[2:4]), B: pair(digits[4:6]), A: pair(digits[6:8])}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
}

func pair(d []uint8) uint8 {
	return d[0]<<4 | d[1]
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
