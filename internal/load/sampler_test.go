package load

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func seq(vals ...float64) Source {
	var i atomic.Int32
	return func(context.Context) (float64, error) {
		n := int(i.Add(1)) - 1
		if n >= len(vals) {
			n = len(vals) - 1
		}
		return vals[n], nil
	}
}

func TestSamplerStartsNeutral(t *testing.T) {
	s := NewSampler(seq(1), time.Second, zerolog.Nop())
	assert.Equal(t, Neutral, s.Load())
}

func TestSamplerSmooths(t *testing.T) {
	s := NewSampler(seq(0.8, 0.2, 0.2), time.Second, zerolog.Nop())
	ctx := context.Background()

	s.Sample(ctx)
	assert.InDelta(t, 0.8, s.Load(), 1e-9, "first sample is taken as-is")
	s.Sample(ctx)
	assert.InDelta(t, 0.5, s.Load(), 1e-9)
	s.Sample(ctx)
	assert.InDelta(t, 0.35, s.Load(), 1e-9)
}

func TestSamplerClampsAndFloors(t *testing.T) {
	s := NewSampler(seq(0), time.Second, zerolog.Nop())
	s.Sample(context.Background())
	assert.Equal(t, Floor, s.Load())

	s = NewSampler(seq(3), time.Second, zerolog.Nop())
	s.Sample(context.Background())
	assert.Equal(t, 1.0, s.Load())
}

func TestSamplerFailureIsNeutral(t *testing.T) {
	fail := func(context.Context) (float64, error) { return 0, errors.New("no /proc/stat") }
	s := NewSampler(fail, time.Second, zerolog.Nop())
	s.Sample(context.Background())
	assert.Equal(t, Neutral, s.Load())
}

func TestSamplerRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	src := func(context.Context) (float64, error) {
		calls.Add(1)
		return 0.3, nil
	}
	s := NewSampler(src, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 0.3, s.Load(), 1e-9)
}
