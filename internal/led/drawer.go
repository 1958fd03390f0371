package led

import (
	"fmt"
	"image"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

// RefreshRate is the WS2812 bit rate; the SPI clock runs at three times it.
const RefreshRate physic.Frequency = 800 * physic.KiloHertz

const DefaultFreq = RefreshRate*3 + 100*physic.KiloHertz

// Drawer writes frames through a periph display.Drawer, one pixel per LED.
type Drawer struct {
	mu     sync.Mutex
	d      display.Drawer
	closer io.Closer
	img    *image.NRGBA
}

// NewDrawer wraps d. closer, if set, is closed after the drawer halts.
func NewDrawer(d display.Drawer, n int, closer io.Closer) *Drawer {
	return &Drawer{d: d, closer: closer, img: image.NewNRGBA(image.Rect(0, 0, n, 1))}
}

// OpenSPI opens a WS2812 strip on an SPI port ("" for the first one). A zero
// freq selects DefaultFreq.
func OpenSPI(dev string, freq physic.Frequency, n int) (*Drawer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", n)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	d, err := NewNRZ(port, freq, n)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	d.closer = port
	return d, nil
}

// NewNRZ encodes frames for WS2812 over an already open SPI port.
func NewNRZ(port spi.Port, freq physic.Frequency, n int) (*Drawer, error) {
	if freq == 0 {
		freq = DefaultFreq
	}
	opts := nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return NewDrawer(d, n, nil), nil
}

// NewTerminal renders frames as colored blocks on stdout.
func NewTerminal(n int) *Drawer {
	return NewDrawer(screen.New(n), n, nil)
}

func (d *Drawer) Len() int { return d.img.Rect.Dx() }

func (d *Drawer) Write(frame []color.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return ErrClosed
	}
	if err := checkLen(frame, d.Len()); err != nil {
		return err
	}
	for i, c := range frame {
		d.img.SetNRGBA(i, 0, c.NRGBA())
	}
	return d.d.Draw(d.d.Bounds(), d.img, image.Point{})
}

// Close blanks the LEDs and releases the port.
func (d *Drawer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.d == nil {
		return nil
	}
	err := d.d.Halt()
	d.d = nil
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
