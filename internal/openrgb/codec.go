package openrgb

import (
	"encoding/binary"
	"strings"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

// decoder reads little endian fields and remembers the first error.
type decoder struct {
	b   []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.b)-d.off < n {
		d.err = ErrShortPacket
		return nil
	}
	p := d.b[d.off : d.off+n]
	d.off += n
	return p
}

func (d *decoder) u16() uint16 {
	if p := d.take(2); p != nil {
		return binary.LittleEndian.Uint16(p)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if p := d.take(4); p != nil {
		return binary.LittleEndian.Uint32(p)
	}
	return 0
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

// str reads a u16 length followed by that many bytes, NUL included.
func (d *decoder) str() string {
	n := int(d.u16())
	return strings.TrimRight(string(d.take(n)), "\x00")
}

func (d *decoder) color() color.Color {
	p := d.take(4)
	if p == nil {
		return color.Color{}
	}
	return color.RGB(p[0], p[1], p[2])
}

func (d *decoder) colors() []color.Color {
	n := int(d.u16())
	if d.err != nil || n*4 > len(d.b)-d.off {
		d.err = ErrShortPacket
		return nil
	}
	if n == 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = d.color()
	}
	return out
}

type encoder struct{ b []byte }

func (e *encoder) u16(v uint16) { e.b = binary.LittleEndian.AppendUint16(e.b, v) }
func (e *encoder) u32(v uint32) { e.b = binary.LittleEndian.AppendUint32(e.b, v) }
func (e *encoder) i32(v int32)  { e.u32(uint32(v)) }

func (e *encoder) str(s string) {
	e.u16(uint16(len(s) + 1))
	e.b = append(e.b, s...)
	e.b = append(e.b, 0)
}

func (e *encoder) color(c color.Color) { e.b = append(e.b, c.R, c.G, c.B, 0) }

func (e *encoder) colors(cs []color.Color) {
	e.u16(uint16(len(cs)))
	for _, c := range cs {
		e.color(c)
	}
}

// EncodeColors builds an UpdateLEDs payload.
func EncodeColors(cs []color.Color) []byte {
	e := encoder{b: make([]byte, 0, 6+4*len(cs))}
	e.u32(uint32(4 + 2 + 4*len(cs)))
	e.colors(cs)
	return e.b
}

// DecodeColors parses an UpdateLEDs payload.
func DecodeColors(b []byte) ([]color.Color, error) {
	d := decoder{b: b}
	d.u32()
	cs := d.colors()
	return cs, d.err
}

func encodeU32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func encodeName(s string) []byte { return append([]byte(s), 0) }
