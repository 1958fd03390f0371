package topology

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// NoLED marks an unpopulated matrix cell or a grid cell with no target.
const NoLED = -1

var (
	ErrInvalidMatrix   = errors.New("invalid matrix map")
	ErrUnknownZoneType = errors.New("unknown zone type")
	ErrEmptyDevice     = errors.New("device has no leds")
)

// ZoneType is the layout tag of a zone. Values match the controller wire
// encoding (0 single, 1 linear, 2 matrix).
type ZoneType int32

const (
	ZoneSingle ZoneType = iota
	ZoneLinear
	ZoneMatrix
)

func (t ZoneType) String() string {
	switch t {
	case ZoneSingle:
		return "single"
	case ZoneLinear:
		return "linear"
	case ZoneMatrix:
		return "matrix"
	}
	return fmt.Sprintf("zone(%d)", int32(t))
}

// ParseZoneType validates a raw zone type coming off the wire or from config.
func ParseZoneType(v int32) (ZoneType, error) {
	switch t := ZoneType(v); t {
	case ZoneSingle, ZoneLinear, ZoneMatrix:
		return t, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownZoneType, v)
}

// DeviceType mirrors the controller's device classification. Only the values
// the engine reacts to are named.
type DeviceType int32

const (
	DeviceMotherboard DeviceType = 0
	DeviceLEDStrip    DeviceType = 4
	DeviceKeyboard    DeviceType = 5
	DeviceMouse       DeviceType = 6
	DeviceVirtual     DeviceType = 13
	DeviceLaptop      DeviceType = 19
	DeviceUnknown     DeviceType = 21
)

// MatrixMap maps grid cells to zone-local LED positions. Cells holds Height
// rows of Width entries; NoLED marks empty cells.
type MatrixMap struct {
	Width  int
	Height int
	Cells  [][]int
}

// At returns the zone-local LED position at (row, col), or NoLED.
func (m *MatrixMap) At(row, col int) int {
	if m == nil || row < 0 || row >= len(m.Cells) || col < 0 || col >= len(m.Cells[row]) {
		return NoLED
	}
	return m.Cells[row][col]
}

// Validate checks the grid shape and that every populated cell indexes into a
// zone with n LEDs.
func (m *MatrixMap) Validate(n int) error {
	if m == nil {
		return fmt.Errorf("%w: missing map", ErrInvalidMatrix)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidMatrix, m.Width, m.Height)
	}
	if len(m.Cells) != m.Height {
		return fmt.Errorf("%w: %d rows, want %d", ErrInvalidMatrix, len(m.Cells), m.Height)
	}
	for r, row := range m.Cells {
		if len(row) != m.Width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMatrix, r, len(row), m.Width)
		}
		for c, v := range row {
			if v != NoLED && (v < 0 || v >= n) {
				return fmt.Errorf("%w: cell (%d,%d)=%d out of %d leds", ErrInvalidMatrix, r, c, v, n)
			}
		}
	}
	return nil
}

// Zone is a group of LEDs sharing a layout. LEDs holds device-global LED
// indices in zone order; Matrix is set only for ZoneMatrix.
type Zone struct {
	Name   string
	Type   ZoneType
	LEDs   []int
	Matrix *MatrixMap
}

// Width is the matrix width for matrix zones and the LED count otherwise.
func (z *Zone) Width() int {
	switch z.Type {
	case ZoneMatrix:
		if z.Matrix != nil {
			return z.Matrix.Width
		}
		return 0
	case ZoneLinear, ZoneSingle:
		return len(z.LEDs)
	}
	return 0
}

// Target resolves a matrix cell to a device-global LED index.
func (z *Zone) Target(row, col int) int {
	p := z.Matrix.At(row, col)
	if p == NoLED || p >= len(z.LEDs) {
		return NoLED
	}
	return z.LEDs[p]
}

func (z *Zone) Validate(ledCount int) error {
	if len(z.LEDs) == 0 {
		return fmt.Errorf("zone %q: %w", z.Name, ErrEmptyDevice)
	}
	for _, l := range z.LEDs {
		if l < 0 || l >= ledCount {
			return fmt.Errorf("zone %q: led %d out of %d", z.Name, l, ledCount)
		}
	}
	switch z.Type {
	case ZoneMatrix:
		if err := z.Matrix.Validate(len(z.LEDs)); err != nil {
			return fmt.Errorf("zone %q: %w", z.Name, err)
		}
	case ZoneLinear, ZoneSingle:
	default:
		return fmt.Errorf("zone %q: %w", z.Name, ErrUnknownZoneType)
	}
	return nil
}

// Device is a read-only description of one physical device. Only the enabled
// flag may change while an effect runs; it is read once per tick.
type Device struct {
	Index    int
	Name     string
	Type     DeviceType
	Zones    []Zone
	LEDCount int

	enabled atomic.Bool
}

// NewDevice builds an enabled device; LEDCount is the sum of zone sizes.
func NewDevice(index int, name string, typ DeviceType, zones []Zone) *Device {
	d := &Device{Index: index, Name: name, Type: typ, Zones: zones}
	for _, z := range zones {
		d.LEDCount += len(z.LEDs)
	}
	d.enabled.Store(true)
	return d
}

func (d *Device) Enabled() bool      { return d.enabled.Load() }
func (d *Device) SetEnabled(on bool) { d.enabled.Store(on) }

func (d *Device) String() string {
	return fmt.Sprintf("%d:%s", d.Index, d.Name)
}

// Validate reports topologies effects cannot render. Effects treat an invalid
// device as a no-op rather than failing.
func (d *Device) Validate() error {
	if d == nil || d.LEDCount <= 0 || len(d.Zones) == 0 {
		return ErrEmptyDevice
	}
	for i := range d.Zones {
		if err := d.Zones[i].Validate(d.LEDCount); err != nil {
			return fmt.Errorf("device %s: %w", d, err)
		}
	}
	return nil
}

// LongestZone returns the widest zone across devices (matrix width or LED
// count), skipping invalid devices.
func LongestZone(devs []*Device) int {
	longest := 0
	for _, d := range devs {
		if d.Validate() != nil {
			continue
		}
		for i := range d.Zones {
			if w := d.Zones[i].Width(); w > longest {
				longest = w
			}
		}
	}
	return longest
}
