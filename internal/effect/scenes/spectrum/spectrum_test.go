package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

func TestHueWrapsAfterFullTurn(t *testing.T) {
	dev := topology.NewStrip(0, "strip", 3)
	w := New().Worker(dev, nil).(*Worker)

	first, wait, done := w.Next(effect.Params{})
	assert.Equal(t, Tick, wait)
	assert.False(t, done)
	assert.Equal(t, color.Fill(color.Red, 3), first)

	for range 359 {
		w.Next(effect.Params{})
	}
	require.Zero(t, w.Hue())
	again, _, _ := w.Next(effect.Params{})
	assert.Equal(t, first, again)
}

func TestUniformAcrossLEDs(t *testing.T) {
	w := New().Worker(topology.NewStrip(0, "strip", 5), nil)
	for range 100 {
		w.Next(effect.Params{})
	}
	frame, _, _ := w.Next(effect.Params{})
	for _, c := range frame {
		assert.Equal(t, color.FromHSV(100, 1, 1), c)
	}
}
