package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const N = NoLED

func keyboard() *Device {
	return NewDevice(0, "kbd", DeviceKeyboard, []Zone{
		{
			Name: "keys",
			Type: ZoneMatrix,
			LEDs: Span(0, 8),
			Matrix: &MatrixMap{Width: 4, Height: 3, Cells: [][]int{
				{0, 1, N, N},
				{2, 3, N, N},
				{4, 5, 6, 7},
			}},
		},
		{Name: "underglow", Type: ZoneLinear, LEDs: Span(8, 6)},
	})
}

func TestGridConcatenatesZones(t *testing.T) {
	d := NewDevice(0, "strip+logo", DeviceLEDStrip, []Zone{
		{Name: "strip", Type: ZoneLinear, LEDs: Span(0, 5)},
		{Name: "logo", Type: ZoneSingle, LEDs: Span(5, 1)},
	})
	require.NoError(t, d.Validate())

	g := d.Grid()
	assert.Equal(t, [][]int{
		{0, 1, 2, 3, 4},
		{5, N, N, N, N},
	}, g)
}

func TestGridMergesTailColumns(t *testing.T) {
	g := keyboard().Grid()
	require.Len(t, g, 4)

	// columns 2 and 3 only exist in the bottom row, so the matrix narrows
	// to two columns and the bottom row spans the old bottom row's LEDs.
	assert.Equal(t, []int{0, 1}, g[0][:2])
	assert.Equal(t, []int{2, 3}, g[1][:2])
	bottom := g[2][:2]
	assert.InDelta(t, 4, bottom[0], 1)
	assert.InDelta(t, 7, bottom[1], 1)
	for _, v := range g[0][2:] {
		assert.Equal(t, N, v, "narrowed rows are padded to the widest zone")
	}
	assert.Equal(t, []int{8, 9, 10, 11, 12, 13}, g[3])
}

func TestGridKeepsFullMatrix(t *testing.T) {
	d := NewPanel(1, "panel", Layout{Width: 3, Height: 2})
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, d.Grid())
}

func TestGridMirrorsMouse(t *testing.T) {
	d := NewDevice(2, "mouse", DeviceMouse, []Zone{
		{Name: "wheel", Type: ZoneSingle, LEDs: Span(0, 1)},
		{Name: "logo", Type: ZoneSingle, LEDs: Span(1, 1)},
		{Name: "side", Type: ZoneLinear, LEDs: Span(2, 3)},
	})
	// offset = 5 - 3 = 2
	assert.Equal(t, [][]int{{2, N, N}, {1, N, N}, {0, 1, 2}}, d.Grid())
}

func TestGridInvalidDevice(t *testing.T) {
	assert.Nil(t, NewDevice(0, "empty", DeviceUnknown, nil).Grid())

	bad := NewDevice(0, "bad", DeviceKeyboard, []Zone{{
		Name: "keys", Type: ZoneMatrix, LEDs: Span(0, 2),
		Matrix: &MatrixMap{Width: 2, Height: 1, Cells: [][]int{{0, 5}}},
	}})
	assert.ErrorIs(t, bad.Validate(), ErrInvalidMatrix)
	assert.Nil(t, bad.Grid())
	assert.Nil(t, bad.Ratios())
}

func TestValidateZeroWidthZone(t *testing.T) {
	d := NewDevice(0, "zero", DeviceKeyboard, []Zone{
		{Name: "ok", Type: ZoneLinear, LEDs: Span(0, 2)},
		{Name: "keys", Type: ZoneMatrix, LEDs: Span(2, 1), Matrix: &MatrixMap{}},
	})
	assert.ErrorIs(t, d.Validate(), ErrInvalidMatrix)
}

func TestRatios(t *testing.T) {
	d := NewDevice(0, "mixed", DeviceKeyboard, []Zone{
		{Name: "keys", Type: ZoneMatrix, LEDs: Span(0, 3), Matrix: &MatrixMap{
			Width: 4, Height: 1, Cells: [][]int{{0, N, 1, 2}},
		}},
		{Name: "strip", Type: ZoneLinear, LEDs: Span(3, 2)},
	})
	assert.Equal(t, []LEDRatio{
		{LED: 0, Ratio: 0, Zone: ZoneMatrix},
		{LED: 1, Ratio: 0.5, Zone: ZoneMatrix},
		{LED: 2, Ratio: 0.75, Zone: ZoneMatrix},
		{LED: 3, Ratio: 0, Zone: ZoneLinear},
		{LED: 4, Ratio: 0.5, Zone: ZoneLinear},
	}, d.Ratios())
}

func TestLongestZone(t *testing.T) {
	devs := []*Device{
		keyboard(),
		NewStrip(1, "strip", 30),
		NewDevice(2, "empty", DeviceUnknown, nil),
	}
	assert.Equal(t, 30, LongestZone(devs))
	assert.Equal(t, 0, LongestZone(nil))
}

func TestSerpentineIndex(t *testing.T) {
	l := Layout{Width: 3, Height: 3, Order: Serpentine{XFlipEveryRow: true}}
	assert.Equal(t, 0, l.Index(0, 0))
	assert.Equal(t, 5, l.Index(0, 1))
	assert.Equal(t, 3, l.Index(2, 1))
	assert.Equal(t, 6, l.Index(0, 2))
	assert.Equal(t, 9, l.Count())

	m := l.Matrix()
	require.NoError(t, m.Validate(9))
	assert.Equal(t, []int{5, 4, 3}, m.Cells[1])
}

func TestParseZoneType(t *testing.T) {
	z, err := ParseZoneType(2)
	require.NoError(t, err)
	assert.Equal(t, ZoneMatrix, z)
	assert.Equal(t, "matrix", z.String())

	_, err = ParseZoneType(7)
	assert.ErrorIs(t, err, ErrUnknownZoneType)
}

func TestEnabledFlag(t *testing.T) {
	d := NewStrip(0, "s", 1)
	assert.True(t, d.Enabled())
	d.SetEnabled(false)
	assert.False(t, d.Enabled())
	assert.Equal(t, ZoneSingle, d.Zones[0].Type)
}
