package wave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

func TestNewGradient(t *testing.T) {
	assert.Equal(t, Gradient{48, 36, 24, 12}, NewGradient(4))
	for _, h := range NewGradient(40) {
		assert.Less(t, h, 360)
	}
}

func TestRotated(t *testing.T) {
	assert.Equal(t, Gradient{60, 48, 36, 24}, Rotated(4, 1))
	assert.Equal(t, Gradient{24}, Rotated(1, 1), "a single slot still advances")
	assert.Equal(t, NewGradient(30), Rotated(30, 30))
	assert.Empty(t, Rotated(0, 5))

	// one rotation moves every hue one slot right
	prev, next := Rotated(7, 11), Rotated(7, 12)
	assert.Equal(t, prev[:6], next[1:])
	assert.Equal(t, (prev[0]+Step)%360, next[0])
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func session(devs []*topology.Device, c *clock) *Session {
	s := New().Begin(devs).(*Session)
	s.start, s.now = c.t, c.now
	return s
}

func TestDevicesShareOnePhase(t *testing.T) {
	a, b := topology.NewStrip(0, "a", 6), topology.NewStrip(1, "b", 6)
	c := &clock{t: time.Unix(1000, 0)}
	s := session([]*topology.Device{a, b}, c)
	wa, wb := s.Worker(a, nil), s.Worker(b, nil)

	for range 5 {
		_, wait, _ := wa.Next(effect.Params{})
		c.t = c.t.Add(wait)
	}
	// b was disabled until now and comes back on the shared phase
	fa, _, _ := wa.Next(effect.Params{})
	fb, _, _ := wb.Next(effect.Params{})
	assert.Equal(t, fa, fb)
	k, _ := s.Phase()
	assert.Equal(t, 5, k)
}

func TestWaitAlignsToStep(t *testing.T) {
	dev := topology.NewStrip(0, "s", 10)
	c := &clock{t: time.Unix(0, 0)}
	s := session([]*topology.Device{dev}, c)
	w := s.Worker(dev, nil)

	c.t = c.t.Add(s.Step() + s.Step()/4)
	_, wait, _ := w.Next(effect.Params{})
	assert.Equal(t, s.Step()-s.Step()/4, wait)
	k, _ := s.Phase()
	assert.Equal(t, 1, k)
}

func TestIndexClamps(t *testing.T) {
	g := NewGradient(10)
	assert.Equal(t, 9, g.Index(topology.LEDRatio{Ratio: 0.96, Zone: topology.ZoneMatrix}))
	assert.Equal(t, 9, g.Index(topology.LEDRatio{Ratio: 0.96, Zone: topology.ZoneLinear}))
	assert.Equal(t, 5, g.Index(topology.LEDRatio{Ratio: 0.46, Zone: topology.ZoneMatrix}))
	assert.Equal(t, 4, g.Index(topology.LEDRatio{Ratio: 0.46, Zone: topology.ZoneLinear}))
}

func TestGradientSizedAtStart(t *testing.T) {
	devs := []*topology.Device{
		topology.NewStrip(0, "short", 8),
		topology.NewPanel(1, "panel", topology.Layout{Width: 20, Height: 2}),
	}
	s := New().Begin(devs).(*Session)
	require.Equal(t, 20, s.Len())

	assert.Equal(t, Sweep/20, s.Step())

	w := s.Worker(devs[0], nil)
	for range 50 {
		_, wait, done := w.Next(effect.Params{})
		assert.False(t, done)
		assert.LessOrEqual(t, wait, Sweep/20)
		assert.Positive(t, wait)
	}
	assert.Equal(t, 20, s.Len())
}

func TestFrameIsFullySaturated(t *testing.T) {
	dev := topology.NewStrip(0, "strip", 6)
	w := session([]*topology.Device{dev}, &clock{t: time.Unix(0, 0)}).Worker(dev, nil)
	frame, _, _ := w.Next(effect.Params{})
	require.Len(t, frame, 6)
	g := NewGradient(6)
	for i, c := range frame {
		assert.Equal(t, color.FromHSV(float64(g[i]), 1, 1), c)
	}
}

func TestEmptyRunFinishes(t *testing.T) {
	w := New().Begin(nil).Worker(topology.NewStrip(0, "s", 2), nil)
	frame, wait, done := w.Next(effect.Params{})
	assert.True(t, done)
	assert.Zero(t, wait)
	assert.Equal(t, color.Fill(color.Black, 2), frame)
}
