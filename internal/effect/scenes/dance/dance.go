// Package dance lights every LED with an independent random, well saturated hue.
package dance

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const (
	Name = "Dance floor"
	Tick = 500 * time.Millisecond

	// MinSaturation is the lower bound of the random saturation, in percent.
	MinSaturation = 80
)

type Dance struct{}

func New() *Dance { return &Dance{} }

func (*Dance) Name() string                              { return Name }
func (*Dance) DefaultColor() (color.Color, bool)         { return color.Color{}, false }
func (*Dance) Sampling() time.Duration                   { return 0 }
func (d *Dance) Begin([]*topology.Device) effect.Session { return d }

func (*Dance) Worker(dev *topology.Device, rng *rand.Rand) effect.Worker {
	return worker{rng: rng, n: dev.LEDCount}
}

type worker struct {
	rng *rand.Rand
	n   int
}

func (w worker) Next(effect.Params) ([]color.Color, time.Duration, bool) {
	out := make([]color.Color, w.n)
	for i := range out {
		h := float64(w.rng.IntN(360))
		s := float64(MinSaturation+w.rng.IntN(100-MinSaturation+1)) / 100
		out[i] = color.FromHSV(h, s, 1)
	}
	return out, Tick, false
}
