package led

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

var ErrUnknownDevice = errors.New("no driver for device")

// Bank pairs local devices with their drivers. It serves as both the device
// provider and the frame sink for locally attached LEDs.
type Bank struct {
	log zerolog.Logger

	mu      sync.RWMutex
	devices []*topology.Device
	drivers map[int]Driver
}

func NewBank(log zerolog.Logger) *Bank {
	return &Bank{
		log:     log.With().Str("component", "led").Logger(),
		drivers: map[int]Driver{},
	}
}

// Add registers dev, which must have as many LEDs as drv.
func (b *Bank) Add(dev *topology.Device, drv Driver) error {
	if dev.LEDCount != drv.Len() {
		return fmt.Errorf("%s: %w: device %d, driver %d", dev, ErrFrameLength, dev.LEDCount, drv.Len())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.drivers[dev.Index]; dup {
		return fmt.Errorf("duplicate device index %d", dev.Index)
	}
	b.devices = append(b.devices, dev)
	b.drivers[dev.Index] = drv
	b.log.Info().Stringer("device", dev).Int("leds", dev.LEDCount).Msg("local device")
	return nil
}

func (b *Bank) ListDevices(context.Context) ([]*topology.Device, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.devices), nil
}

func (b *Bank) SetDeviceColors(_ context.Context, dev *topology.Device, colors []color.Color, _ bool) error {
	b.mu.RLock()
	drv, ok := b.drivers[dev.Index]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, dev)
	}
	return drv.Write(colors)
}

// Close blanks and closes every driver.
func (b *Bank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for _, dev := range b.devices {
		drv := b.drivers[dev.Index]
		_ = drv.Write(color.Fill(color.Black, drv.Len()))
		if err := drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dev, err))
		}
	}
	b.devices = nil
	clear(b.drivers)
	return errors.Join(errs...)
}
