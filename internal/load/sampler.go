package load

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
)

const (
	// Neutral is reported until the first sample and whenever sampling fails.
	Neutral = 0.5
	// Floor keeps an idle machine from reading as exactly zero load.
	Floor = 0.01

	DefaultSmoothing = 0.5
)

var ErrNoSample = errors.New("no cpu sample")

// Source returns the instantaneous system load as a fraction in [0,1].
type Source func(ctx context.Context) (float64, error)

// CPU samples overall utilisation since the previous call.
func CPU(ctx context.Context) (float64, error) {
	p, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, ErrNoSample
	}
	return p[0] / 100, nil
}

// Sampler periodically reads a Source and publishes an exponentially smoothed
// value. One goroutine writes; any number of effect workers read.
type Sampler struct {
	src      Source
	interval time.Duration
	alpha    float64
	log      zerolog.Logger

	bits   atomic.Uint64
	primed bool
}

func NewSampler(src Source, interval time.Duration, log zerolog.Logger) *Sampler {
	if src == nil {
		src = CPU
	}
	s := &Sampler{
		src:      src,
		interval: interval,
		alpha:    DefaultSmoothing,
		log:      log.With().Str("component", "load").Logger(),
	}
	s.store(Neutral)
	return s
}

// Load returns the latest smoothed value. Staleness of one interval is expected.
func (s *Sampler) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

func (s *Sampler) store(v float64) { s.bits.Store(math.Float64bits(v)) }

// Sample takes one reading and folds it into the published value.
func (s *Sampler) Sample(ctx context.Context) {
	v, err := s.src(ctx)
	if err != nil || math.IsNaN(v) {
		s.log.Debug().Err(err).Msg("load sample unavailable; using neutral load")
		s.primed = false
		s.store(Neutral)
		return
	}
	v = math.Max(Floor, math.Min(1, v))
	if s.primed {
		v = s.alpha*v + (1-s.alpha)*s.Load()
	}
	s.primed = true
	s.store(v)
}

// Run samples every interval until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		s.Sample(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
