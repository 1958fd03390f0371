package scenes

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/fake"
	"github.com/coreman2200/arcaluminis-fx/internal/load"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

func TestRegistryOrder(t *testing.T) {
	r := Registry(&fake.Sink{})
	assert.Equal(t, []string{"Static", "Digital rain", "Rainbow wave", "Spectrum cycle", "Dance floor"}, r.Names())
	assert.Equal(t, "Static", r.Next("Dance floor"))
}

func TestColorSupport(t *testing.T) {
	want := map[string]bool{
		"Static":         true,
		"Digital rain":   true,
		"Rainbow wave":   false,
		"Spectrum cycle": false,
		"Dance floor":    false,
	}
	r := Registry(&fake.Sink{})
	for name, ok := range want {
		e, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, ok, e.SupportsColor(), name)
	}
}

// Every built-in effect runs against a mixed topology, emits frames of the
// right size and stops cleanly.
func TestAllEffectsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	calm := func(iv time.Duration) *load.Sampler {
		return load.NewSampler(func(context.Context) (float64, error) { return 0.2, nil }, iv, zerolog.Nop())
	}
	devs := []*topology.Device{
		topology.NewStrip(0, "strip", 12),
		topology.NewPanel(1, "panel", topology.Layout{Width: 5, Height: 4}),
		topology.NewStrip(2, "logo", 1),
	}
	for _, a := range All() {
		t.Run(a.Name(), func(t *testing.T) {
			sink := &fake.Sink{}
			e := effect.New(a, sink, effect.WithSampler(calm), effect.WithSeed(42))
			require.NoError(t, e.Start(devs, effect.High, color.RGB(10, 200, 30)))
			require.Eventually(t, func() bool {
				for _, d := range devs {
					if _, ok := sink.Last(d.Index); !ok {
						return false
					}
				}
				return true
			}, 2*time.Second, time.Millisecond)
			e.Stop()

			assert.Zero(t, sink.Overlaps())
			for _, f := range sink.Frames() {
				assert.Len(t, f.Colors, devs[f.Device].LEDCount)
			}
		})
	}
}
