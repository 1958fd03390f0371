package topology

// Serpentine describes how a physical matrix panel is wired.
type Serpentine struct {
	XFlipEveryRow bool
}

// Layout is a width x height LED panel driven as one chain.
type Layout struct {
	Width  int
	Height int
	Order  Serpentine
}

// Index maps x,y -> linear LED index (0..N-1)
func (l Layout) Index(x, y int) int {
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Width - 1 - x
	}
	return y*l.Width + xx
}

func (l Layout) Count() int {
	return l.Width * l.Height
}

// Matrix builds the zone matrix map for the panel.
func (l Layout) Matrix() *MatrixMap {
	m := &MatrixMap{Width: l.Width, Height: l.Height, Cells: make([][]int, l.Height)}
	for y := 0; y < l.Height; y++ {
		m.Cells[y] = make([]int, l.Width)
		for x := 0; x < l.Width; x++ {
			m.Cells[y][x] = l.Index(x, y)
		}
	}
	return m
}

// Span returns the device-global indices [start, start+n).
func Span(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// NewStrip is a device with a single linear zone of n LEDs.
func NewStrip(index int, name string, n int) *Device {
	typ := ZoneLinear
	if n == 1 {
		typ = ZoneSingle
	}
	return NewDevice(index, name, DeviceLEDStrip, []Zone{{Name: name, Type: typ, LEDs: Span(0, n)}})
}

// NewPanel is a device with a single matrix zone wired per l.
func NewPanel(index int, name string, l Layout) *Device {
	return NewDevice(index, name, DeviceLEDStrip, []Zone{{
		Name:   name,
		Type:   ZoneMatrix,
		LEDs:   Span(0, l.Count()),
		Matrix: l.Matrix(),
	}})
}
