package effect

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// Sink applies a full frame to a device. Failures are soft: the caller logs
// them and tries again on the next tick.
type Sink interface {
	SetDeviceColors(ctx context.Context, dev *topology.Device, colors []color.Color, force bool) error
}

// Provider lists the devices effects can drive.
type Provider interface {
	ListDevices(ctx context.Context) ([]*topology.Device, error)
}

// Params are the live inputs of one tick, read once per tick.
type Params struct {
	Color color.Color
	Load  float64
}

// Algorithm is a procedural animation. It owns no goroutines: the Effect
// that wraps it drives one Worker per device.
type Algorithm interface {
	Name() string
	// DefaultColor is the base color for colorable effects; ok is false when
	// the effect picks its own colors.
	DefaultColor() (c color.Color, ok bool)
	// Sampling is the load sampling period, or 0 when the effect ignores load.
	Sampling() time.Duration
	// Begin is called once per Start with every device of the run.
	Begin(devs []*topology.Device) Session
}

// Session holds state shared by all devices of one run.
type Session interface {
	Worker(dev *topology.Device, rng *rand.Rand) Worker
}

// Worker produces the frames of one device. Next returns the frame, how long
// to wait before the following tick, and done when the animation has reached
// its terminal frame.
type Worker interface {
	Next(p Params) (frame []color.Color, wait time.Duration, done bool)
}

// State of the lifecycle controller.
type State int32

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}
