package led

import (
	"math"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

// Capped limits per-LED power: any pixel whose R+G+B exceeds
// cap*3*255 is scaled down to that sum. Hue is preserved.
type Capped struct {
	Driver
	limit float64
}

// WithWhiteCap wraps drv. A cap outside (0,1) disables limiting and returns
// drv unchanged.
func WithWhiteCap(drv Driver, whiteCap float64) Driver {
	if whiteCap <= 0 || whiteCap >= 1 {
		return drv
	}
	return &Capped{Driver: drv, limit: whiteCap * 3 * 255}
}

func (c *Capped) Write(frame []color.Color) error {
	out := make([]color.Color, len(frame))
	for i, px := range frame {
		s := float64(px.R) + float64(px.G) + float64(px.B)
		if s <= c.limit {
			out[i] = px
			continue
		}
		k := c.limit / s
		out[i] = color.RGB(
			uint8(math.Round(float64(px.R)*k)),
			uint8(math.Round(float64(px.G)*k)),
			uint8(math.Round(float64(px.B)*k)),
		)
	}
	return c.Driver.Write(out)
}
