// Package led drives LED hardware attached to this machine: WS2812 strips on
// SPI, Adalight controllers on a serial port, and in-memory or terminal
// stand-ins for development.
package led

import (
	"errors"
	"fmt"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

var (
	ErrClosed      = errors.New("led driver closed")
	ErrFrameLength = errors.New("frame length does not match led count")
)

// Driver abstracts an LED output.
type Driver interface {
	// Write pushes one frame. len(frame) must equal Len().
	Write(frame []color.Color) error
	Len() int
	Close() error
}

func checkLen(frame []color.Color, n int) error {
	if len(frame) != n {
		return fmt.Errorf("%w: got %d want %d", ErrFrameLength, len(frame), n)
	}
	return nil
}
