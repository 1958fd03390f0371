package topology

import "math"

// Grid flattens a device into one rectangular row-major grid of LED targets.
// Matrix zones contribute their rows, linear and single zones one row each.
// Rows narrower than the widest zone are padded with NoLED.
//
// A matrix zone whose columns are populated only in the bottom row (the
// detached keys of a keyboard's last row, say) would render as isolated
// columns; those columns are dropped and the bottom row is re-spread across
// the remaining width by linear interpolation.
func (d *Device) Grid() [][]int {
	if d.Validate() != nil {
		return nil
	}
	var rows [][]int
	for i := range d.Zones {
		z := &d.Zones[i]
		switch z.Type {
		case ZoneMatrix:
			rows = append(rows, matrixRows(z)...)
		case ZoneLinear, ZoneSingle:
			row := make([]int, len(z.LEDs))
			copy(row, z.LEDs)
			rows = append(rows, row)
		}
	}

	if d.Type == DeviceMouse {
		mirrorTargets(rows, d)
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, NoLED)
		}
		rows[i] = r
	}
	return rows
}

func matrixRows(z *Zone) [][]int {
	m := z.Matrix
	rows := make([][]int, m.Height)
	for r := 0; r < m.Height; r++ {
		rows[r] = make([]int, m.Width)
		for c := 0; c < m.Width; c++ {
			rows[r][c] = z.Target(r, c)
		}
	}

	tail := tailColumns(m)
	if len(tail) == 0 || len(tail) == m.Width {
		return rows
	}

	last := rows[m.Height-1]
	var seq []int
	for _, t := range last {
		if t != NoLED {
			seq = append(seq, t)
		}
	}

	kept := make([][]int, m.Height)
	for r := range rows {
		for c, t := range rows[r] {
			if !tail[c] {
				kept[r] = append(kept[r], t)
			}
		}
	}

	w := len(kept[0])
	bottom := kept[m.Height-1]
	for c := range bottom {
		bottom[c] = seq[spread(c, w, len(seq))]
	}
	return kept
}

// tailColumns marks columns populated only in the last row. Single-row
// matrices have no tail.
func tailColumns(m *MatrixMap) map[int]bool {
	if m.Height < 2 {
		return nil
	}
	tail := map[int]bool{}
	for c := 0; c < m.Width; c++ {
		if m.At(m.Height-1, c) == NoLED {
			continue
		}
		only := true
		for r := 0; r < m.Height-1; r++ {
			if m.At(r, c) != NoLED {
				only = false
				break
			}
		}
		if only {
			tail[c] = true
		}
	}
	return tail
}

// spread maps position c of a w-wide row onto an n-long sequence.
func spread(c, w, n int) int {
	if w <= 1 || n <= 1 {
		return 0
	}
	i := int(math.Round(float64(c) * float64(n-1) / float64(w-1)))
	if i >= n {
		i = n - 1
	}
	return i
}

// mirrorTargets flips targets around the start of the device's last zone so
// the animation runs front to back on mice.
func mirrorTargets(rows [][]int, d *Device) {
	off := d.LEDCount - len(d.Zones[len(d.Zones)-1].LEDs)
	for _, r := range rows {
		for c, t := range r {
			if t == NoLED {
				continue
			}
			v := t - off
			if v < 0 {
				v = -v
			}
			r[c] = v
		}
	}
}

// LEDRatio locates one LED along its zone's width.
type LEDRatio struct {
	LED   int
	Ratio float64
	Zone  ZoneType
}

// Ratios lists every populated LED with its fractional position along its
// zone: column/width for matrices, position/count otherwise.
func (d *Device) Ratios() []LEDRatio {
	if d.Validate() != nil {
		return nil
	}
	var out []LEDRatio
	for i := range d.Zones {
		z := &d.Zones[i]
		switch z.Type {
		case ZoneMatrix:
			m := z.Matrix
			for r := 0; r < m.Height; r++ {
				for c := 0; c < m.Width; c++ {
					if t := z.Target(r, c); t != NoLED {
						out = append(out, LEDRatio{LED: t, Ratio: float64(c) / float64(m.Width), Zone: z.Type})
					}
				}
			}
		case ZoneLinear, ZoneSingle:
			n := len(z.LEDs)
			for l, t := range z.LEDs {
				out = append(out, LEDRatio{LED: t, Ratio: float64(l) / float64(n), Zone: z.Type})
			}
		}
	}
	return out
}
