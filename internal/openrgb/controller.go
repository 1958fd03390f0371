package openrgb

import (
	"fmt"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// Mode is a hardware effect offered by a controller. Only its name and
// value matter here; the rest is kept so packets can be re-encoded.
type Mode struct {
	Name          string
	Value         int32
	Flags         uint32
	SpeedMin      uint32
	SpeedMax      uint32
	BrightnessMin uint32
	BrightnessMax uint32
	ColorsMin     uint32
	ColorsMax     uint32
	Speed         uint32
	Brightness    uint32
	Direction     uint32
	ColorMode     uint32
	Colors        []color.Color
}

type Zone struct {
	Name    string
	Type    int32
	LEDsMin uint32
	LEDsMax uint32
	Count   uint32
	// Matrix is row-major, Height rows of Width zone-local LED indices.
	Height, Width uint32
	Matrix        []uint32
}

type LED struct {
	Name  string
	Value uint32
}

// Controller is the decoded RequestControllerData reply.
type Controller struct {
	Type        int32
	Name        string
	Vendor      string
	Description string
	Version     string
	Serial      string
	Location    string
	ActiveMode  int32
	Modes       []Mode
	Zones       []Zone
	LEDs        []LED
	Colors      []color.Color
}

// DecodeController parses controller data for the given protocol revision.
func DecodeController(b []byte, proto uint32) (*Controller, error) {
	d := &decoder{b: b}
	d.u32() // data size
	c := &Controller{Type: d.i32(), Name: d.str()}
	if proto >= 1 {
		c.Vendor = d.str()
	}
	c.Description = d.str()
	c.Version = d.str()
	c.Serial = d.str()
	c.Location = d.str()

	n := int(d.u16())
	c.ActiveMode = d.i32()
	for i := 0; i < n && d.err == nil; i++ {
		c.Modes = append(c.Modes, decodeMode(d, proto))
	}
	n = int(d.u16())
	for i := 0; i < n && d.err == nil; i++ {
		c.Zones = append(c.Zones, decodeZone(d))
	}
	n = int(d.u16())
	for i := 0; i < n && d.err == nil; i++ {
		c.LEDs = append(c.LEDs, LED{Name: d.str(), Value: d.u32()})
	}
	c.Colors = d.colors()
	if d.err != nil {
		return nil, fmt.Errorf("controller data: %w", d.err)
	}
	return c, nil
}

func decodeMode(d *decoder, proto uint32) Mode {
	m := Mode{Name: d.str(), Value: d.i32(), Flags: d.u32(), SpeedMin: d.u32(), SpeedMax: d.u32()}
	if proto >= 3 {
		m.BrightnessMin, m.BrightnessMax = d.u32(), d.u32()
	}
	m.ColorsMin, m.ColorsMax, m.Speed = d.u32(), d.u32(), d.u32()
	if proto >= 3 {
		m.Brightness = d.u32()
	}
	m.Direction, m.ColorMode = d.u32(), d.u32()
	m.Colors = d.colors()
	return m
}

func decodeZone(d *decoder) Zone {
	z := Zone{Name: d.str(), Type: d.i32(), LEDsMin: d.u32(), LEDsMax: d.u32(), Count: d.u32()}
	if d.u16() > 0 {
		z.Height, z.Width = d.u32(), d.u32()
		cells := uint64(z.Height) * uint64(z.Width)
		if cells*4 > uint64(len(d.b)-d.off) {
			d.err = ErrShortPacket
			return z
		}
		z.Matrix = make([]uint32, cells)
		for i := range z.Matrix {
			z.Matrix[i] = d.u32()
		}
	}
	return z
}

// Encode is the inverse of DecodeController, as a server would send it.
func (c *Controller) Encode(proto uint32) []byte {
	e := &encoder{}
	e.u32(0)
	e.i32(c.Type)
	e.str(c.Name)
	if proto >= 1 {
		e.str(c.Vendor)
	}
	for _, s := range []string{c.Description, c.Version, c.Serial, c.Location} {
		e.str(s)
	}
	e.u16(uint16(len(c.Modes)))
	e.i32(c.ActiveMode)
	for _, m := range c.Modes {
		e.str(m.Name)
		e.i32(m.Value)
		e.u32(m.Flags)
		e.u32(m.SpeedMin)
		e.u32(m.SpeedMax)
		if proto >= 3 {
			e.u32(m.BrightnessMin)
			e.u32(m.BrightnessMax)
		}
		e.u32(m.ColorsMin)
		e.u32(m.ColorsMax)
		e.u32(m.Speed)
		if proto >= 3 {
			e.u32(m.Brightness)
		}
		e.u32(m.Direction)
		e.u32(m.ColorMode)
		e.colors(m.Colors)
	}
	e.u16(uint16(len(c.Zones)))
	for _, z := range c.Zones {
		e.str(z.Name)
		e.i32(z.Type)
		e.u32(z.LEDsMin)
		e.u32(z.LEDsMax)
		e.u32(z.Count)
		if len(z.Matrix) == 0 {
			e.u16(0)
			continue
		}
		e.u16(uint16(8 + 4*len(z.Matrix)))
		e.u32(z.Height)
		e.u32(z.Width)
		for _, v := range z.Matrix {
			e.u32(v)
		}
	}
	e.u16(uint16(len(c.LEDs)))
	for _, l := range c.LEDs {
		e.str(l.Name)
		e.u32(l.Value)
	}
	e.colors(c.Colors)
	copy(e.b, encodeU32(uint32(len(e.b))))
	return e.b
}

// Device converts the controller into the engine's topology. Zone LED
// ranges are laid out back to back in zone order. Empty zones are dropped and
// matrix zones without a map are treated as linear. A zone of unknown type
// fails the whole controller.
func (c *Controller) Device(index int) (*topology.Device, error) {
	zones := make([]topology.Zone, 0, len(c.Zones))
	offset := 0
	for _, z := range c.Zones {
		typ, err := topology.ParseZoneType(z.Type)
		if err != nil {
			return nil, fmt.Errorf("%s zone %q: %w", c.Name, z.Name, err)
		}
		if z.Count == 0 {
			continue
		}
		if typ == topology.ZoneMatrix && len(z.Matrix) == 0 {
			typ = topology.ZoneLinear
		}
		tz := topology.Zone{Name: z.Name, Type: typ, LEDs: topology.Span(offset, int(z.Count))}
		if typ == topology.ZoneMatrix {
			m := &topology.MatrixMap{Width: int(z.Width), Height: int(z.Height), Cells: make([][]int, z.Height)}
			for r := range m.Cells {
				m.Cells[r] = make([]int, z.Width)
				for col := range m.Cells[r] {
					v := z.Matrix[r*int(z.Width)+col]
					m.Cells[r][col] = topology.NoLED
					if v != noMatrixLED {
						m.Cells[r][col] = int(v)
					}
				}
			}
			tz.Matrix = m
		}
		zones = append(zones, tz)
		offset += int(z.Count)
	}
	return topology.NewDevice(index, c.Name, topology.DeviceType(c.Type), zones), nil
}
