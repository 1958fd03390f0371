package effect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/fake"
)

func registry(names ...string) *Registry {
	r := NewRegistry()
	for _, n := range names {
		r.Register(New(&fake.Solid{ID: n}, &fake.Sink{}))
	}
	return r
}

func TestRegistryKeepsOrder(t *testing.T) {
	r := registry("rain", "wave", "spectrum")
	assert.Equal(t, []string{"rain", "wave", "spectrum"}, r.Names())
	assert.Equal(t, 3, r.Len())

	r.Register(New(&fake.Solid{ID: "Wave"}, &fake.Sink{}))
	assert.Equal(t, 3, r.Len(), "re-registering replaces in place")
}

func TestRegistryGet(t *testing.T) {
	r := registry("rain")
	e, err := r.Get("RAIN")
	require.NoError(t, err)
	assert.Equal(t, "rain", e.Name())

	_, err = r.Get("plasma")
	assert.ErrorIs(t, err, ErrUnknownEffect)
}

func TestRegistryNextWraps(t *testing.T) {
	r := registry("rain", "wave", "spectrum")
	assert.Equal(t, "wave", r.Next("rain"))
	assert.Equal(t, "rain", r.Next("spectrum"))
	assert.Equal(t, "rain", r.Next(""))
	assert.Equal(t, "rain", r.Next("plasma"))
	assert.Equal(t, "", NewRegistry().Next("rain"))
}

func TestRegistryStopAll(t *testing.T) {
	r := NewRegistry()
	sink := &fake.Sink{}
	devs := strips(1, 2)
	for _, n := range []string{"a", "b"} {
		e := New(&fake.Solid{ID: n, Tick: 5 * time.Millisecond}, sink)
		r.Register(e)
		require.NoError(t, e.Start(devs, Max, grey))
	}
	r.StopAll()
	for _, n := range r.Names() {
		e, err := r.Get(n)
		require.NoError(t, err)
		assert.Equal(t, Idle, e.State(), n)
	}
	n := sink.Count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, sink.Count(), "no frames after StopAll")
}
