// Package fake has an in-memory sink and a trivial algorithm for tests.
package fake

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// Frame is one recorded sink call.
type Frame struct {
	Device int
	Colors []color.Color
}

// Sink records every frame and notices overlapping calls.
type Sink struct {
	// Delay is slept inside each call to widen race windows.
	Delay time.Duration
	// Fail makes calls for the given device index return an error.
	Fail map[int]error

	inside   atomic.Int32
	overlaps atomic.Int32

	mu     sync.Mutex
	frames []Frame
}

func (s *Sink) SetDeviceColors(ctx context.Context, dev *topology.Device, colors []color.Color, _ bool) error {
	if s.inside.Add(1) > 1 {
		s.overlaps.Add(1)
	}
	defer s.inside.Add(-1)

	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	if err := s.Fail[dev.Index]; err != nil {
		return err
	}
	s.mu.Lock()
	s.frames = append(s.frames, Frame{Device: dev.Index, Colors: append([]color.Color(nil), colors...)})
	s.mu.Unlock()
	return nil
}

func (s *Sink) Overlaps() int { return int(s.overlaps.Load()) }

func (s *Sink) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Frame(nil), s.frames...)
}

func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Last returns the latest frame written to device idx.
func (s *Sink) Last(idx int) ([]color.Color, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Device == idx {
			return s.frames[i].Colors, true
		}
	}
	return nil, false
}

func (s *Sink) Reset() {
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

// Provider returns a fixed device list.
type Provider struct {
	Devices []*topology.Device
	Err     error
}

func (p *Provider) ListDevices(context.Context) ([]*topology.Device, error) {
	return p.Devices, p.Err
}

// Solid fills every LED with the live color. With a zero Tick it paints once
// and finishes.
type Solid struct {
	ID    string
	Base  color.Color
	Tick  time.Duration
	Every time.Duration // load sampling period, 0 for none

	ticks atomic.Int64
}

func (s *Solid) Name() string                            { return s.ID }
func (s *Solid) DefaultColor() (color.Color, bool)       { return s.Base, true }
func (s *Solid) Sampling() time.Duration                 { return s.Every }
func (s *Solid) Begin([]*topology.Device) effect.Session { return s }

// Ticks counts frames computed across all devices.
func (s *Solid) Ticks() int64 { return s.ticks.Load() }

func (s *Solid) Worker(dev *topology.Device, _ *rand.Rand) effect.Worker {
	return worker{s: s, n: dev.LEDCount}
}

type worker struct {
	s *Solid
	n int
}

func (w worker) Next(p effect.Params) ([]color.Color, time.Duration, bool) {
	w.s.ticks.Add(1)
	return color.Fill(p.Color, w.n), w.s.Tick, w.s.Tick == 0
}
