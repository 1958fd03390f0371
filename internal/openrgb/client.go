package openrgb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

const (
	DefaultTimeout = 2 * time.Second
	// RedialInterval throttles reconnect attempts from the frame loop.
	RedialInterval = 2 * time.Second
)

// Client is a single SDK connection. It implements effect.Provider and
// effect.Sink and is safe for concurrent use; requests are serialized.
type Client struct {
	addr    string
	name    string
	timeout time.Duration
	log     zerolog.Logger
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)

	mu       sync.Mutex
	conn     net.Conn
	proto    uint32
	lastDial time.Time
	devices  []*topology.Device
	sent     map[int][]color.Color
}

type ClientOption func(*Client)

// WithDialer replaces net.Dialer, e.g. with a net.Pipe in tests.
func WithDialer(f func(ctx context.Context, network, addr string) (net.Conn, error)) ClientOption {
	return func(c *Client) { c.dial = f }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func NewClient(addr, name string, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		addr:    addr,
		name:    name,
		timeout: DefaultTimeout,
		log:     log.With().Str("component", "openrgb").Str("addr", addr).Logger(),
		sent:    map[int][]color.Color{},
	}
	var d net.Dialer
	c.dial = d.DialContext
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connect dials the server and negotiates the protocol revision.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	c.lastDial = time.Now()
	conn, err := c.dial(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	c.conn = conn

	if err := c.writeLocked(ctx, 0, SetClientName, encodeName(c.name)); err != nil {
		c.dropLocked()
		return err
	}
	c.proto = 0
	if err := c.writeLocked(ctx, 0, RequestProtocolVersion, encodeU32(ClientProtocol)); err != nil {
		c.dropLocked()
		return err
	}
	// Servers older than revision 1 never answer the version request.
	reply, err := c.readLocked(ctx, RequestProtocolVersion)
	switch {
	case err == nil:
		d := decoder{b: reply}
		c.proto = min(ClientProtocol, d.u32())
	case isTimeout(err):
		c.log.Warn().Msg("server did not report a protocol version; assuming 0")
	default:
		c.dropLocked()
		return err
	}
	c.log.Info().Uint32("protocol", c.proto).Msg("connected")
	return nil
}

// Protocol is the negotiated protocol revision.
func (c *Client) Protocol() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proto
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	clear(c.sent)
}

// ensureLocked reconnects a dropped connection, at most once per RedialInterval.
func (c *Client) ensureLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	if time.Since(c.lastDial) < RedialInterval {
		return ErrNotConnected
	}
	return c.connectLocked(ctx)
}

func (c *Client) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(c.timeout)
}

func (c *Client) writeLocked(ctx context.Context, dev, id uint32, payload []byte) error {
	_ = c.conn.SetWriteDeadline(c.deadline(ctx))
	return WritePacket(c.conn, dev, id, payload)
}

// readLocked returns the payload of the next packet with the given ID,
// skipping unsolicited notifications.
func (c *Client) readLocked(ctx context.Context, id uint32) ([]byte, error) {
	_ = c.conn.SetReadDeadline(c.deadline(ctx))
	for {
		h, payload, err := ReadPacket(c.conn)
		if err != nil {
			return nil, err
		}
		if h.ID == id {
			return payload, nil
		}
		if h.ID == DeviceListUpdated {
			c.log.Info().Msg("server device list changed")
		}
	}
}

func (c *Client) request(ctx context.Context, dev, id uint32, payload []byte) ([]byte, error) {
	if err := c.writeLocked(ctx, dev, id, payload); err != nil {
		c.dropLocked()
		return nil, err
	}
	reply, err := c.readLocked(ctx, id)
	if err != nil {
		c.dropLocked()
		return nil, err
	}
	return reply, nil
}

// ListDevices enumerates controllers. Devices whose name and size did not
// change keep their identity, and with it their enabled flag.
func (c *Client) ListDevices(ctx context.Context) ([]*topology.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return nil, err
	}
	reply, err := c.request(ctx, 0, RequestControllerCount, nil)
	if err != nil {
		return nil, fmt.Errorf("controller count: %w", err)
	}
	d := decoder{b: reply}
	n := int(d.u32())
	if d.err != nil {
		return nil, d.err
	}

	var req []byte
	if c.proto > 0 {
		req = encodeU32(c.proto)
	}
	devs := make([]*topology.Device, 0, n)
	for i := 0; i < n; i++ {
		reply, err := c.request(ctx, uint32(i), RequestControllerData, req)
		if err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		ctrl, err := DecodeController(reply, c.proto)
		if err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		dev, err := ctrl.Device(i)
		if err != nil {
			c.log.Warn().Err(err).Int("controller", i).Msg("skipping controller")
			continue
		}
		if old := c.known(i); old != nil && old.Name == dev.Name && old.LEDCount == dev.LEDCount {
			dev = old
		}
		devs = append(devs, dev)
		c.log.Debug().Stringer("device", dev).Int("leds", dev.LEDCount).Int("zones", len(dev.Zones)).Msg("controller")
	}
	c.devices = devs
	return slices.Clone(devs), nil
}

func (c *Client) known(i int) *topology.Device {
	for _, d := range c.devices {
		if d.Index == i {
			return d
		}
	}
	return nil
}

// SetCustomMode switches a controller to direct (software) control.
func (c *Client) SetCustomMode(ctx context.Context, dev *topology.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return err
	}
	if err := c.writeLocked(ctx, uint32(dev.Index), SetCustomMode, nil); err != nil {
		c.dropLocked()
		return err
	}
	return nil
}

// SetDeviceColors streams a full frame. Unless force is set, a frame equal
// to the last one sent to the device is skipped.
func (c *Client) SetDeviceColors(ctx context.Context, dev *topology.Device, colors []color.Color, force bool) error {
	if len(colors) != dev.LEDCount {
		return fmt.Errorf("%w: %s has %d leds, got %d", ErrUnknownDevice, dev, dev.LEDCount, len(colors))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(ctx); err != nil {
		return err
	}
	if !force && slices.Equal(c.sent[dev.Index], colors) {
		return nil
	}
	if err := c.writeLocked(ctx, uint32(dev.Index), UpdateLEDs, EncodeColors(colors)); err != nil {
		c.log.Warn().Err(err).Stringer("device", dev).Msg("connection lost")
		c.dropLocked()
		return err
	}
	c.sent[dev.Index] = slices.Clone(colors)
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
