package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

var ErrUnknownDevice = errors.New("device not listed by any source")

// Backend is a device source that also accepts frames, e.g. the OpenRGB
// client or the local LED bank.
type Backend interface {
	effect.Provider
	effect.Sink
}

// customModer is implemented by backends that must be switched into direct
// control before frames show up.
type customModer interface {
	SetCustomMode(ctx context.Context, dev *topology.Device) error
}

type source struct {
	name string
	b    Backend
}

// Multi merges several backends into one provider and sink. Frames are routed
// to the backend that listed the device, so device indices may overlap.
type Multi struct {
	log     zerolog.Logger
	sources []source

	mu    sync.RWMutex
	owner map[*topology.Device]Backend
}

func NewMulti(log zerolog.Logger) *Multi {
	return &Multi{
		log:   log.With().Str("component", "devices").Logger(),
		owner: map[*topology.Device]Backend{},
	}
}

func (m *Multi) Add(name string, b Backend) {
	m.sources = append(m.sources, source{name: name, b: b})
}

// ListDevices concatenates every backend's devices. A failing backend is
// skipped; the call fails only when every backend does.
func (m *Multi) ListDevices(ctx context.Context) ([]*topology.Device, error) {
	var (
		out   []*topology.Device
		errs  []error
		owner = map[*topology.Device]Backend{}
	)
	for _, s := range m.sources {
		devs, err := s.b.ListDevices(ctx)
		if err != nil {
			m.log.Warn().Err(err).Str("source", s.name).Msg("list devices")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		for _, d := range devs {
			owner[d] = s.b
		}
		out = append(out, devs...)
	}
	if len(errs) > 0 && len(errs) == len(m.sources) {
		return nil, errors.Join(errs...)
	}
	m.mu.Lock()
	m.owner = owner
	m.mu.Unlock()
	return out, nil
}

func (m *Multi) backend(dev *topology.Device) (Backend, error) {
	m.mu.RLock()
	b, ok := m.owner[dev]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, dev)
	}
	return b, nil
}

func (m *Multi) SetDeviceColors(ctx context.Context, dev *topology.Device, colors []color.Color, force bool) error {
	b, err := m.backend(dev)
	if err != nil {
		return err
	}
	return b.SetDeviceColors(ctx, dev, colors, force)
}

// SetCustomMode forwards to the owning backend when it has such a mode.
func (m *Multi) SetCustomMode(ctx context.Context, dev *topology.Device) error {
	b, err := m.backend(dev)
	if err != nil {
		return err
	}
	if cm, ok := b.(customModer); ok {
		return cm.SetCustomMode(ctx, dev)
	}
	return nil
}
