package effect

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/load"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// SubSleep bounds every sleep of a worker, so stop requests and parameter
// changes are observed at least this often.
const SubSleep = 100 * time.Millisecond

var ErrNoColor = errors.New("effect does not support color")

// Effect is the lifecycle controller around one Algorithm: it owns the worker
// goroutines, the live brightness and color, and serializes dispatch to the sink.
type Effect struct {
	algo    Algorithm
	sink    Sink
	log     zerolog.Logger
	warn    zerolog.Logger
	sampler func(time.Duration) *load.Sampler
	seed    func() uint64

	// life serializes Start, Stop and brightness restarts.
	life   sync.Mutex
	devs   []*topology.Device
	cancel context.CancelFunc
	group  *errgroup.Group

	// send is held for the duration of one sink call.
	send sync.Mutex

	state   atomic.Int32
	running atomic.Bool
	level   atomic.Int32
	rgb     atomic.Uint32
	frames  atomic.Uint64
	load    atomic.Pointer[load.Sampler]

	wakeMu sync.Mutex
	wake   chan struct{}
}

type Option func(*Effect)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Effect) { e.log = l }
}

// WithSampler replaces the CPU load sampler, mostly for tests.
func WithSampler(f func(interval time.Duration) *load.Sampler) Option {
	return func(e *Effect) { e.sampler = f }
}

// WithSeed makes per-device random streams reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Effect) { e.seed = func() uint64 { return seed } }
}

func New(algo Algorithm, sink Sink, opts ...Option) *Effect {
	e := &Effect{
		algo: algo,
		sink: sink,
		log:  zerolog.Nop(),
		seed: rand.Uint64,
		wake: make(chan struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With().Str("component", "effect").Str("effect", algo.Name()).Logger()
	e.warn = e.log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 5 * time.Second})
	if e.sampler == nil {
		log := e.log
		e.sampler = func(iv time.Duration) *load.Sampler { return load.NewSampler(load.CPU, iv, log) }
	}
	if c, ok := algo.DefaultColor(); ok {
		e.storeColor(c)
	}
	e.level.Store(int32(Max))
	return e
}

func (e *Effect) Name() string      { return e.algo.Name() }
func (e *Effect) State() State      { return State(e.state.Load()) }
func (e *Effect) Brightness() Level { return Level(e.level.Load()) }

// Frames counts frames accepted by the sink since construction.
func (e *Effect) Frames() uint64 { return e.frames.Load() }

func (e *Effect) SupportsColor() bool {
	_, ok := e.algo.DefaultColor()
	return ok
}

// Color returns the live base color; ok is false for effects without one.
func (e *Effect) Color() (color.Color, bool) {
	if !e.SupportsColor() {
		return color.Color{}, false
	}
	return e.loadColor(), true
}

// Start launches one worker per device. A running effect is stopped first.
// At Off a single black frame is written to every device and no worker runs.
func (e *Effect) Start(devs []*topology.Device, level Level, c color.Color) error {
	if !level.Valid() {
		return ErrUnknownBrightness
	}
	e.life.Lock()
	defer e.life.Unlock()

	e.stopLocked()
	if e.SupportsColor() {
		e.storeColor(c)
	}
	e.startLocked(devs, level)
	return nil
}

func (e *Effect) startLocked(devs []*topology.Device, level Level) {
	e.devs = devs
	e.level.Store(int32(level))
	e.running.Store(true)
	e.state.Store(int32(Running))

	ctx, cancel := context.WithCancel(context.Background())
	if level == Off {
		for _, dev := range devs {
			e.dispatch(ctx, dev, color.Fill(color.Black, dev.LEDCount))
		}
		e.cancel = cancel
		e.log.Info().Int("devices", len(devs)).Msg("effect off")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	e.load.Store(nil)
	if iv := e.algo.Sampling(); iv > 0 {
		s := e.sampler(iv)
		e.load.Store(s)
		g.Go(func() error { return s.Run(gctx) })
	}

	sess := e.algo.Begin(devs)
	workers := 0
	for i, dev := range devs {
		if err := dev.Validate(); err != nil {
			e.log.Warn().Err(err).Stringer("device", dev).Msg("skipping device")
			continue
		}
		w := sess.Worker(dev, rand.New(rand.NewPCG(e.seed(), uint64(i))))
		g.Go(func() error {
			e.work(gctx, dev, w)
			return nil
		})
		workers++
	}
	e.cancel, e.group = cancel, g
	e.log.Info().
		Stringer("brightness", level).
		Int("devices", len(devs)).
		Int("workers", workers).
		Msg("effect started")
}

// Stop ends all workers and waits for them. It is a no-op when not running.
func (e *Effect) Stop() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stopLocked()
}

func (e *Effect) stopLocked() {
	if !e.running.Load() {
		return
	}
	e.state.Store(int32(Stopping))
	e.running.Store(false)
	if e.cancel != nil {
		e.cancel()
	}
	if e.group != nil {
		_ = e.group.Wait()
	}
	e.cancel, e.group = nil, nil
	e.state.Store(int32(Idle))
	e.log.Info().Msg("effect stopped")
}

// SetBrightness swaps the live dimming level. Moving into or out of Off
// restarts the effect on the same devices.
func (e *Effect) SetBrightness(level Level) error {
	if !level.Valid() {
		return ErrUnknownBrightness
	}
	e.life.Lock()
	defer e.life.Unlock()

	prev := Level(e.level.Swap(int32(level)))
	if !e.running.Load() || prev == level {
		return nil
	}
	if prev == Off || level == Off {
		devs := e.devs
		e.stopLocked()
		e.startLocked(devs, level)
		return nil
	}
	e.log.Debug().Stringer("from", prev).Stringer("to", level).Msg("brightness")
	e.notify()
	return nil
}

func (e *Effect) SetColor(c color.Color) error {
	if !e.SupportsColor() {
		return ErrNoColor
	}
	e.storeColor(c)
	e.notify()
	return nil
}

func (e *Effect) storeColor(c color.Color) {
	e.rgb.Store(uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

func (e *Effect) loadColor() color.Color {
	v := e.rgb.Load()
	return color.RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

func (e *Effect) params() Params {
	p := Params{Color: e.loadColor(), Load: load.Neutral}
	if s := e.load.Load(); s != nil {
		p.Load = s.Load()
	}
	return p
}

// notify wakes every sleeping worker so it re-dispatches its frame.
func (e *Effect) notify() {
	e.wakeMu.Lock()
	close(e.wake)
	e.wake = make(chan struct{})
	e.wakeMu.Unlock()
}

func (e *Effect) wakeCh() <-chan struct{} {
	e.wakeMu.Lock()
	defer e.wakeMu.Unlock()
	return e.wake
}

func (e *Effect) live(ctx context.Context) bool {
	return e.running.Load() && ctx.Err() == nil
}

func (e *Effect) work(ctx context.Context, dev *topology.Device, w Worker) {
	var last []color.Color
	for e.live(ctx) {
		wake := e.wakeCh()
		if !dev.Enabled() {
			e.nap(ctx, wake, SubSleep)
			continue
		}
		p := e.params()
		frame, wait, done := w.Next(p)
		if frame != nil {
			last = frame
		}
		e.dispatch(ctx, dev, last)
		if done {
			e.log.Info().Stringer("device", dev).Msg("effect finished")
			e.park(ctx, dev, w, wake, last, p.Color)
			return
		}
		for left := wait; left > 0 && e.live(ctx); {
			var woke bool
			if left, woke = e.nap(ctx, wake, left); woke {
				wake = e.wakeCh()
				e.dispatch(ctx, dev, last)
			}
		}
	}
}

// park holds a finished worker's last frame, re-dispatching it when
// brightness or color change.
func (e *Effect) park(ctx context.Context, dev *topology.Device, w Worker, wake <-chan struct{}, last []color.Color, shown color.Color) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
		}
		wake = e.wakeCh()
		if !e.running.Load() {
			return
		}
		if p := e.params(); p.Color != shown {
			if f, _, _ := w.Next(p); f != nil {
				last = f
			}
			shown = p.Color
		}
		e.dispatch(ctx, dev, last)
	}
}

// nap sleeps d in sub-sleeps of at most SubSleep. It returns early with the
// time left when wake fires, and with zero when the effect is stopping.
func (e *Effect) nap(ctx context.Context, wake <-chan struct{}, d time.Duration) (time.Duration, bool) {
	for d > 0 {
		step := min(d, SubSleep)
		start := time.Now()
		t := time.NewTimer(step)
		select {
		case <-ctx.Done():
			t.Stop()
			return 0, false
		case <-wake:
			t.Stop()
			return d - time.Since(start), true
		case <-t.C:
		}
		d -= step
		if !e.running.Load() {
			return 0, false
		}
	}
	return 0, false
}

func (e *Effect) dispatch(ctx context.Context, dev *topology.Device, frame []color.Color) {
	if len(frame) == 0 || !e.running.Load() {
		return
	}
	e.send.Lock()
	defer e.send.Unlock()
	if !e.running.Load() {
		return
	}
	out := color.ScaleAll(frame, e.Brightness().Scalar())
	if err := e.sink.SetDeviceColors(ctx, dev, out, true); err != nil {
		if ctx.Err() == nil {
			e.warn.Warn().Err(err).Stringer("device", dev).Msg("set device colors")
		}
		return
	}
	e.frames.Add(1)
}
