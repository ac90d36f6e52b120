package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/kevinmichaelchen/folio/internal/shared"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	LightText = "#fff"
	DarkText  = "#333"
)

// ParseHex accepts #RRGGBB (the leading # is optional) and returns the
// 8-bit channels.
func ParseHex(hex string) (r, g, b uint8, err error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 || strings.IndexFunc(s[1:], notHex) != -1 {
		return 0, 0, 0, fmt.Errorf("%w: %q is not #RRGGBB", shared.ErrInvalidColor, hex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q: %v", shared.ErrInvalidColor, hex, err)
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}

func notHex(r rune) bool {
	return !strings.ContainsRune("0123456789abcdefABCDEF", r)
}

// Luminance is the WCAG relative luminance of an sRGB color.
func Luminance(r, g, b uint8) float64 {
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

func linear(v uint8) float64 {
	c := float64(v) / 255.0
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastColor picks readable text for a background: white below 0.5
// relative luminance, dark gray otherwise.
func ContrastColor(hex string) (string, error) {
	r, g, b, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	if Luminance(r, g, b) < 0.5 {
		return LightText, nil
	}
	return DarkText, nil
}
