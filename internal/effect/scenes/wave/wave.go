// Package wave implements the rainbow wave: a hue gradient as wide as the
// longest zone scrolls across every device.
package wave

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const (
	Name = "Rainbow wave"

	// Step is the hue distance between neighbouring gradient slots.
	Step = 12
	// Sweep is how long one full pass over the gradient takes.
	Sweep = 3 * time.Second
)

// Gradient is a ring of hues in degrees.
type Gradient []int

func NewGradient(n int) Gradient { return Rotated(n, 0) }

// Rotated is the n-slot gradient after k rotations. Each rotation shifts every
// hue one slot right and seeds slot 0 one step ahead of its new neighbour, so
// slot i holds (n+k-i)·Step.
func Rotated(n, k int) Gradient {
	g := make(Gradient, n)
	for i := range g {
		g[i] = ((n + k - i) * Step) % 360
	}
	return g
}

// Index maps a position ratio in [0,1) to a gradient slot. Matrix columns
// round, linear positions floor.
func (g Gradient) Index(r topology.LEDRatio) int {
	x := float64(len(g)) * r.Ratio
	i := int(math.Floor(x))
	if r.Zone == topology.ZoneMatrix {
		i = int(math.Round(x))
	}
	return max(0, min(i, len(g)-1))
}

type Wave struct{}

func New() *Wave { return &Wave{} }

func (*Wave) Name() string                      { return Name }
func (*Wave) DefaultColor() (color.Color, bool) { return color.Color{}, false }
func (*Wave) Sampling() time.Duration           { return 0 }

// Begin sizes the gradient once for the whole run. All devices share the
// run's clock, so a device that was disabled for a while rejoins in phase.
func (*Wave) Begin(devs []*topology.Device) effect.Session {
	return &Session{n: topology.LongestZone(devs), start: time.Now(), now: time.Now}
}

type Session struct {
	n     int
	start time.Time
	now   func() time.Time
}

// Len is the gradient length chosen at start.
func (s *Session) Len() int { return s.n }

// Step is the time between two rotations.
func (s *Session) Step() time.Duration { return Sweep / time.Duration(s.n) }

// Phase returns the rotations completed since the run began and the time
// left until the next one.
func (s *Session) Phase() (int, time.Duration) {
	step := s.Step()
	elapsed := max(0, s.now().Sub(s.start))
	return int(elapsed / step), step - elapsed%step
}

func (s *Session) Worker(dev *topology.Device, _ *rand.Rand) effect.Worker {
	return &worker{s: s, ratios: dev.Ratios(), n: dev.LEDCount}
}

type worker struct {
	s      *Session
	ratios []topology.LEDRatio
	n      int
}

func (w *worker) Next(effect.Params) ([]color.Color, time.Duration, bool) {
	out := color.Fill(color.Black, w.n)
	if w.s.n == 0 {
		return out, 0, true
	}
	k, wait := w.s.Phase()
	g := Rotated(w.s.n, k)
	for _, r := range w.ratios {
		if r.LED >= 0 && r.LED < w.n {
			out[r.LED] = color.FromHSV(float64(g[g.Index(r)]), 1, 1)
		}
	}
	return out, wait, false
}
