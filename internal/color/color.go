package color

import (
	"errors"
	"fmt"
	stdcolor "image/color"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a hex string cannot be parsed into a Color.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is an 8-bit RGB triple. It is a value type; frames are built from
// fresh Colors every tick and never shared mutably.
type Color struct{ R, G, B uint8 }

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
	Red   = Color{R: 255}
	Green = Color{G: 255}
)

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// FromHSV builds a Color from hue in degrees (wrapped into [0,360)) and
// saturation/value in [0,1].
func FromHSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := hsvToRGB(h/360, clamp01(s), clamp01(v))
	return Color{R: channel(r * 255), G: channel(g * 255), B: channel(b * 255)}
}

// HSV returns hue in degrees [0,360), saturation and value in [0,1].
func (c Color) HSV() (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	d := mx - mn
	v = mx
	if mx > 0 {
		s = d / mx
	}
	if d == 0 {
		return 0, s, v
	}
	switch mx {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// Scale multiplies every channel by f, rounding to nearest and clamping to
// [0,255]. It is the dimming primitive used before every dispatch.
func (c Color) Scale(f float64) Color {
	return Color{
		R: channel(float64(c.R) * f),
		G: channel(float64(c.G) * f),
		B: channel(float64(c.B) * f),
	}
}

// Hex formats the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// NRGBA converts to an opaque image/color value for display drawers.
func (c Color) NRGBA() stdcolor.NRGBA {
	return stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseHex accepts "#RRGGBB", "RRGGBB" and the short "#RGB" form.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Black, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Fill returns n copies of c.
func Fill(c Color, n int) []Color {
	if n <= 0 {
		return nil
	}
	out := make([]Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// ScaleAll dims a frame into a new slice; src is left untouched.
func ScaleAll(src []Color, f float64) []Color {
	out := make([]Color, len(src))
	for i, c := range src {
		out[i] = c.Scale(f)
	}
	return out
}

// h in [0,1)
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func channel(x float64) uint8 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(math.Round(x))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
