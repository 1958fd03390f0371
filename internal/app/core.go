// Package app selects the active effect and keeps the user's brightness and
// color across effect changes.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

var ErrNoEffect = errors.New("no effect selected")

type Core struct {
	log      zerolog.Logger
	provider effect.Provider
	reg      *effect.Registry

	mu      sync.Mutex
	current string
	active  *effect.Effect
	level   effect.Level
	color   color.Color
	custom  bool // color set by the user
	devices []*topology.Device
}

// Snapshot is the selector state as reported over HTTP.
type Snapshot struct {
	Effect        string   `json:"effect"`
	State         string   `json:"state"`
	Brightness    string   `json:"brightness"`
	Color         string   `json:"color,omitempty"`
	SupportsColor bool     `json:"supports_color"`
	Frames        uint64   `json:"frames"`
	Devices       int      `json:"devices"`
	Effects       []string `json:"effects"`
}

func New(provider effect.Provider, reg *effect.Registry, log zerolog.Logger) *Core {
	return &Core{
		log:      log.With().Str("component", "app").Logger(),
		provider: provider,
		reg:      reg,
		level:    effect.Max,
	}
}

// Apply stops the active effect and starts name on a fresh device list.
func (c *Core) Apply(ctx context.Context, name string) error {
	e, err := c.reg.Get(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ctx, e)
}

func (c *Core) applyLocked(ctx context.Context, e *effect.Effect) error {
	devs, err := c.provider.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	if cm, ok := c.provider.(customModer); ok {
		for _, d := range devs {
			if err := cm.SetCustomMode(ctx, d); err != nil {
				c.log.Warn().Err(err).Stringer("device", d).Msg("custom mode")
			}
		}
	}
	if c.active != nil {
		c.active.Stop()
	}
	col, _ := e.Color()
	if c.custom {
		col = c.color
	}
	if err := e.Start(devs, c.level, col); err != nil {
		return err
	}
	c.active = e
	c.current = e.Name()
	c.devices = devs
	c.log.Info().Str("effect", c.current).Int("devices", len(devs)).Msg("effect applied")
	return nil
}

// Next applies the effect after the current one, wrapping around.
func (c *Core) Next(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := c.reg.Next(c.current)
	if name == "" {
		return "", ErrNoEffect
	}
	e, err := c.reg.Get(name)
	if err != nil {
		return "", err
	}
	return name, c.applyLocked(ctx, e)
}

// SetBrightness stores level and pushes it to the running effect.
func (c *Core) SetBrightness(_ context.Context, level effect.Level) error {
	if !level.Valid() {
		return effect.ErrUnknownBrightness
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brightnessLocked(level)
}

func (c *Core) brightnessLocked(level effect.Level) error {
	c.level = level
	if c.active == nil {
		return nil
	}
	return c.active.SetBrightness(level)
}

// StepBrightness moves delta levels up or down, clamped to Off..Max.
func (c *Core) StepBrightness(_ context.Context, delta int) (effect.Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	level := c.level.Step(delta)
	return level, c.brightnessLocked(level)
}

// SetColor parses hex and applies it. Effects without a color keep their
// own palette, but the choice is remembered for the next one that has one.
func (c *Core) SetColor(_ context.Context, hex string) error {
	col, err := color.ParseHex(hex)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color, c.custom = col, true
	if c.active == nil || !c.active.SupportsColor() {
		return nil
	}
	return c.active.SetColor(col)
}

// Stop halts the active effect. The selection is kept for Next.
func (c *Core) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.Stop()
		c.active = nil
	}
}

// Devices returns the device list the current effect was started on.
func (c *Core) Devices() []*topology.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.devices)
}

func (c *Core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Effect:     c.current,
		State:      effect.Idle.String(),
		Brightness: c.level.String(),
		Devices:    len(c.devices),
		Effects:    c.reg.Names(),
	}
	if c.custom {
		s.Color = c.color.Hex()
	}
	if e := c.active; e != nil {
		s.State = e.State().String()
		s.Frames = e.Frames()
		s.SupportsColor = e.SupportsColor()
		if col, ok := e.Color(); ok {
			s.Color = col.Hex()
		}
	}
	return s
}
