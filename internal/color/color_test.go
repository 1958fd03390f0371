package color_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	. "github.com/coreman2200/arcaluminis-fx/internal/color"
)

var TestHexParsesToExpectedColor = []struct {
	In     string
	Expect Color
}{
	{"#FF0000", Color{R: 255}},
	{"00ff00", Color{G: 255}},
	{"#0000FF", Color{B: 255}},
	{"#123456", Color{R: 0x12, G: 0x34, B: 0x56}},
	{"#fff", White},
	{"  #000000 ", Black},
}

var TestHSVIsExpectedColor = []struct {
	H, S, V float64
	Expect  Color
}{
	{0, 1, 1, Color{R: 255}},
	{120, 1, 1, Color{G: 255}},
	{240, 1, 1, Color{B: 255}},
	{360, 1, 1, Color{R: 255}},
	{-120, 1, 1, Color{B: 255}},
	{60, 1, 1, Color{R: 255, G: 255}},
	{0, 0, 1, White},
	{200, 1, 0, Black},
}

func TestParseHex(t *testing.T) {
	for _, v := range TestHexParsesToExpectedColor {
		t.Run(v.In, func(t *testing.T) {
			got, err := ParseHex(v.In)
			require.NoError(t, err)
			assert.Equal(t, v.Expect, got)
		})
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "#GG0000", "#1234567", "red"} {
		_, err := ParseHex(in)
		assert.ErrorIs(t, err, ErrInvalidHex, in)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Color{R: 0xAB, G: 0x03, B: 0x7F}
	assert.Equal(t, "#AB037F", c.Hex())

	var back Color
	require.NoError(t, back.UnmarshalText([]byte(c.Hex())))
	assert.Equal(t, c, back)
}

func TestFromHSV(t *testing.T) {
	for _, v := range TestHSVIsExpectedColor {
		got := FromHSV(v.H, v.S, v.V)
		assert.Equal(t, v.Expect, got, "hsv(%v,%v,%v)", v.H, v.S, v.V)
	}
}

func TestHSVInverse(t *testing.T) {
	h, s, v := Color{R: 255, G: 128}.HSV()
	assert.InDelta(t, 30.1, h, 0.5)
	assert.InDelta(t, 1.0, s, 1e-9)
	assert.InDelta(t, 1.0, v, 1e-9)

	c := FromHSV(h, s, v)
	assert.Equal(t, Color{R: 255, G: 128}, c)
}

func TestScaleClamps(t *testing.T) {
	c := Color{R: 200, G: 100, B: 1}
	assert.Equal(t, Color{R: 255, G: 200, B: 2}, c.Scale(2))
	assert.Equal(t, Black, c.Scale(-1))
	assert.Equal(t, Black, c.Scale(math.NaN()))
	assert.Equal(t, Color{R: 100, G: 50, B: 1}, c.Scale(0.5))
}

func TestFillAndScaleAll(t *testing.T) {
	frame := Fill(Red, 3)
	assert.Len(t, frame, 3)
	assert.Nil(t, Fill(Red, 0))

	dim := ScaleAll(frame, 0.25)
	assert.Equal(t, Color{R: 64}, dim[0])
	assert.Equal(t, Red, frame[0], "source frame must not be modified")
}

func TestScalePropertyMatchesComponentwise(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Color{
			R: rapid.Uint8().Draw(t, "r"),
			G: rapid.Uint8().Draw(t, "g"),
			B: rapid.Uint8().Draw(t, "b"),
		}
		f := rapid.Float64Range(-2, 4).Draw(t, "f")
		got := c.Scale(f)

		want := func(x uint8) uint8 {
			return uint8(math.Max(0, math.Min(255, math.Round(float64(x)*f))))
		}
		if got.R != want(c.R) || got.G != want(c.G) || got.B != want(c.B) {
			t.Fatalf("Scale(%v) of %v = %v", f, c, got)
		}
	})
}

func TestFromHSVPropertyStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.Float64Range(-720, 720).Draw(t, "h")
		s := rapid.Float64Range(-1, 2).Draw(t, "s")
		v := rapid.Float64Range(-1, 2).Draw(t, "v")
		c := FromHSV(h, s, v)
		hh, _, _ := c.HSV()
		if hh < 0 || hh >= 360 {
			t.Fatalf("hue out of range: %v", hh)
		}
	})
}
