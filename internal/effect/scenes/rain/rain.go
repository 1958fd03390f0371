// Package rain implements the digital rain effect: drops fall down each column
// of a device's flattened grid, leaving a fading trail. Busier machines get
// more, shorter and faster drops.
package rain

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const (
	Name = "Digital rain"

	// MaxIntensity is the brightest a freshly spawned drop can be.
	MaxIntensity = 15
	// Tick is the frame period at zero load.
	Tick = 70 * time.Millisecond
	// Stagger bounds the random delay before a device's first drop.
	Stagger = 500 * time.Millisecond

	freeRows = 3
)

var DefaultColor = color.Green

// falloff[i] = sin²(i/(MaxIntensity+2) · π/2) for the dim end of a trail.
var falloff = func() []float64 {
	t := make([]float64, 2*MaxIntensity/3)
	for i := range t {
		s := math.Sin(float64(i) / (MaxIntensity + 2) * math.Pi / 2)
		t[i] = s * s
	}
	return t
}()

// Falloff returns a copy of the trail attenuation table.
func Falloff() []float64 { return append([]float64(nil), falloff...) }

type Rain struct{}

func New() *Rain { return &Rain{} }

func (*Rain) Name() string                              { return Name }
func (*Rain) DefaultColor() (color.Color, bool)         { return DefaultColor, true }
func (*Rain) Sampling() time.Duration                   { return 2 * Tick }
func (r *Rain) Begin([]*topology.Device) effect.Session { return r }

func (*Rain) Worker(dev *topology.Device, rng *rand.Rand) effect.Worker {
	return &worker{field: NewField(dev), rng: rng, n: dev.LEDCount}
}

type worker struct {
	field   *Field
	rng     *rand.Rand
	n       int
	started bool
}

func (w *worker) Next(p effect.Params) ([]color.Color, time.Duration, bool) {
	if !w.started {
		w.started = true
		return color.Fill(color.Black, w.n), time.Duration(w.rng.Int64N(int64(Stagger) + 1)), false
	}
	w.field.Decay()
	w.field.Spawn(p.Load, w.rng)
	return w.field.Colorize(p.Color, w.n), Period(p.Load), false
}

// Period is the frame period at the given load.
func Period(load float64) time.Duration {
	return time.Duration(math.Round(float64(Tick) * (1 - 0.4*load)))
}
