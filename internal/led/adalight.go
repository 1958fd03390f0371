package led

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

const DefaultBaud = 115200

// Adalight streams frames to an Arduino-style controller: "Ada", the LED
// count minus one as a big endian u16, a checksum byte, then RGB triplets.
type Adalight struct {
	mu  sync.Mutex
	w   io.WriteCloser
	n   int
	buf []byte
}

func NewAdalight(w io.WriteCloser, n int) *Adalight {
	a := &Adalight{w: w, n: n, buf: make([]byte, 6+3*n)}
	hi, lo := byte((n-1)>>8), byte(n-1)
	copy(a.buf, []byte{'A', 'd', 'a', hi, lo, hi ^ lo ^ 0x55})
	return a
}

// OpenAdalight opens a serial port at baud, 8N1.
func OpenAdalight(port string, baud, n int) (*Adalight, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", n)
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return NewAdalight(p, n), nil
}

func (a *Adalight) Len() int { return a.n }

func (a *Adalight) Write(frame []color.Color) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.w == nil {
		return ErrClosed
	}
	if err := checkLen(frame, a.n); err != nil {
		return err
	}
	for i, c := range frame {
		copy(a.buf[6+3*i:], []byte{c.R, c.G, c.B})
	}
	if _, err := a.w.Write(a.buf); err != nil {
		return fmt.Errorf("adalight write: %w", err)
	}
	return nil
}

func (a *Adalight) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.w == nil {
		return nil
	}
	err := a.w.Close()
	a.w = nil
	return err
}
