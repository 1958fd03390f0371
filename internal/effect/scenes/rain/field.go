package rain

import (
	"math"
	"math/rand/v2"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// Status is one grid cell. Target is the device LED it lights, or
// topology.NoLED for padding cells that still carry a falling drop.
type Status struct {
	Target  int
	Max     int
	Current int
}

// Field is the per-device automaton state, row-major.
type Field struct {
	Cells [][]Status
}

func NewField(dev *topology.Device) *Field {
	grid := dev.Grid()
	f := &Field{Cells: make([][]Status, len(grid))}
	for r, row := range grid {
		f.Cells[r] = make([]Status, len(row))
		for c, t := range row {
			f.Cells[r][c] = Status{Target: t, Max: MaxIntensity}
		}
	}
	return f
}

func (f *Field) Width() int {
	if len(f.Cells) == 0 {
		return 0
	}
	return len(f.Cells[0])
}

// Decay moves every drop one row down and fades the top row by one step.
// Cells keep their own Target.
func (f *Field) Decay() {
	for r := len(f.Cells) - 1; r >= 0; r-- {
		for c := range f.Cells[r] {
			cell := &f.Cells[r][c]
			if r == 0 {
				switch {
				case cell.Current > 0:
					cell.Current--
				case cell.Current < 0:
					cell.Current++
				}
				continue
			}
			above := f.Cells[r-1][c]
			cell.Max, cell.Current = above.Max, above.Current
		}
	}
}

// Free lists columns whose top rows are at rest.
func (f *Field) Free() []int {
	var free []int
	for c := 0; c < f.Width(); c++ {
		if f.columnFree(c) {
			free = append(free, c)
		}
	}
	return free
}

func (f *Field) columnFree(c int) bool {
	for r := 0; r < min(freeRows, len(f.Cells)); r++ {
		if f.Cells[r][c].Current != 0 {
			return false
		}
	}
	return true
}

// Spawn starts at most one new drop in a random free column when fewer
// than max(1, ceil(width·load)) columns are busy. It returns the column, or -1.
func (f *Field) Spawn(load float64, rng *rand.Rand) int {
	free := f.Free()
	if len(free) == 0 {
		return -1
	}
	w := f.Width()
	allowed := max(1, int(math.Ceil(float64(w)*load)))
	if allowed <= w-len(free) {
		return -1
	}
	c := free[rng.IntN(len(free))]
	top := &f.Cells[0][c]
	top.Max = SpawnMax(load)
	top.Current = top.Max
	return c
}

// SpawnMax is the intensity of a new drop at the given load.
func SpawnMax(load float64) int {
	return int(math.Round(MaxIntensity * (1 - 0.25*load)))
}

// Colorize renders the field into an n-LED frame. The head of a drop is
// white, the upper third of the trail is base, and the rest fades out.
func (f *Field) Colorize(base color.Color, n int) []color.Color {
	out := color.Fill(color.Black, n)
	for _, row := range f.Cells {
		for _, s := range row {
			if s.Target < 0 || s.Target >= n {
				continue
			}
			out[s.Target] = Shade(s, base)
		}
	}
	return out
}

// Shade is the color of a single cell.
func Shade(s Status, base color.Color) color.Color {
	switch {
	case s.Current < 0:
		return color.Black
	case s.Current == s.Max:
		return color.White
	case s.Current >= 2*s.Max/3:
		return base
	}
	i := int(math.Round(float64(s.Current) * float64(s.Max) / MaxIntensity))
	i = max(0, min(i, len(falloff)-1))
	return base.Scale(falloff[i])
}
