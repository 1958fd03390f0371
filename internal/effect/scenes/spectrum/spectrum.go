// Package spectrum cycles every LED of every device through the hue wheel.
package spectrum

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const (
	Name = "Spectrum cycle"
	Tick = 20 * time.Millisecond
)

type Spectrum struct{}

func New() *Spectrum { return &Spectrum{} }

func (*Spectrum) Name() string                              { return Name }
func (*Spectrum) DefaultColor() (color.Color, bool)         { return color.Color{}, false }
func (*Spectrum) Sampling() time.Duration                   { return 0 }
func (s *Spectrum) Begin([]*topology.Device) effect.Session { return s }

// Worker starts at hue 0, so devices started together stay in phase.
func (*Spectrum) Worker(dev *topology.Device, _ *rand.Rand) effect.Worker {
	return &Worker{n: dev.LEDCount}
}

type Worker struct {
	hue int
	n   int
}

// Hue is the hue of the next frame.
func (w *Worker) Hue() int { return w.hue }

func (w *Worker) Next(effect.Params) ([]color.Color, time.Duration, bool) {
	out := color.Fill(color.FromHSV(float64(w.hue), 1, 1), w.n)
	w.hue = (w.hue + 1) % 360
	return out, Tick, false
}
