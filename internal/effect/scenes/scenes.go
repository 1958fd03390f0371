// Package scenes lists the built-in effects.
package scenes

import (
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes/dance"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes/rain"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes/spectrum"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes/static"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes/wave"
)

// All returns one instance of every built-in algorithm, in cycling order.
func All() []effect.Algorithm {
	return []effect.Algorithm{
		static.New(),
		rain.New(),
		wave.New(),
		spectrum.New(),
		dance.New(),
	}
}

// Registry builds a registry with every built-in effect driving sink.
func Registry(sink effect.Sink, opts ...effect.Option) *effect.Registry {
	r := effect.NewRegistry()
	for _, a := range All() {
		r.Register(effect.New(a, sink, opts...))
	}
	return r
}
