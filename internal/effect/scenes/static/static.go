// Package static paints every LED one color, once.
package static

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const Name = "Static"

var DefaultColor = color.Red

type Static struct{}

func New() *Static { return &Static{} }

func (*Static) Name() string                              { return Name }
func (*Static) DefaultColor() (color.Color, bool)         { return DefaultColor, true }
func (*Static) Sampling() time.Duration                   { return 0 }
func (s *Static) Begin([]*topology.Device) effect.Session { return s }

func (*Static) Worker(dev *topology.Device, _ *rand.Rand) effect.Worker {
	return worker(dev.LEDCount)
}

type worker int

func (n worker) Next(p effect.Params) ([]color.Color, time.Duration, bool) {
	return color.Fill(p.Color, int(n)), 0, true
}
