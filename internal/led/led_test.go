package led

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestNRZEncodesFrame(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewNRZ(spitest.NewRecordRaw(&buf), 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	buf.Reset()
	require.NoError(t, d.Write(color.Fill(color.Red, 4)))
	red := append([]byte(nil), buf.Bytes()...)
	assert.GreaterOrEqual(t, len(red), 4*9, "three bits per data bit")

	buf.Reset()
	require.NoError(t, d.Write(color.Fill(color.Green, 4)))
	assert.NotEqual(t, red, buf.Bytes())

	assert.ErrorIs(t, d.Write(color.Fill(color.Red, 3)), ErrFrameLength)
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Write(color.Fill(color.Red, 4)), ErrClosed)
}

func TestAdalightFraming(t *testing.T) {
	var buf bytes.Buffer
	a := NewAdalight(nopCloser{&buf}, 2)
	require.NoError(t, a.Write([]color.Color{color.RGB(1, 2, 3), color.RGB(4, 5, 6)}))
	assert.Equal(t, []byte{'A', 'd', 'a', 0, 1, 0x54, 1, 2, 3, 4, 5, 6}, buf.Bytes())

	big := NewAdalight(nopCloser{io.Discard}, 300)
	assert.Equal(t, []byte{'A', 'd', 'a', 0x01, 0x2b, 0x01 ^ 0x2b ^ 0x55}, big.buf[:6])

	require.NoError(t, a.Close())
	assert.ErrorIs(t, a.Write(color.Fill(color.Red, 2)), ErrClosed)
}

func TestBankRoutesByIndex(t *testing.T) {
	b := NewBank(zerolog.Nop())
	strip := topology.NewStrip(0, "strip", 3)
	panel := topology.NewPanel(1, "panel", topology.Layout{Width: 2, Height: 2})
	s0, s1 := NewSim(3), NewSim(4)
	require.NoError(t, b.Add(strip, s0))
	require.NoError(t, b.Add(panel, s1))
	assert.ErrorIs(t, b.Add(topology.NewStrip(2, "x", 5), NewSim(4)), ErrFrameLength)
	assert.Error(t, b.Add(topology.NewStrip(1, "dup", 4), NewSim(4)))

	devs, err := b.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*topology.Device{strip, panel}, devs)

	require.NoError(t, b.SetDeviceColors(context.Background(), panel, color.Fill(color.White, 4), true))
	last, n := s1.Last()
	assert.Equal(t, color.Fill(color.White, 4), last)
	assert.Equal(t, 1, n)
	_, n = s0.Last()
	assert.Zero(t, n)

	err = b.SetDeviceColors(context.Background(), topology.NewStrip(9, "ghost", 1), color.Fill(color.White, 1), true)
	assert.ErrorIs(t, err, ErrUnknownDevice)

	require.NoError(t, b.Close())
	last, _ = s1.Last()
	assert.Equal(t, color.Fill(color.Black, 4), last, "close blanks the LEDs")
}

func TestWhiteCap(t *testing.T) {
	sim := NewSim(3)
	assert.Same(t, Driver(sim), WithWhiteCap(sim, 0))
	assert.Same(t, Driver(sim), WithWhiteCap(sim, 1))

	d := WithWhiteCap(sim, 0.5)
	require.NoError(t, d.Write([]color.Color{color.White, color.Red, color.RGB(255, 255, 0)}))
	got, _ := sim.Last()
	assert.Equal(t, color.RGB(128, 128, 128), got[0], "white scaled to half the budget")
	assert.Equal(t, color.Red, got[1], "under the cap")
	assert.Equal(t, color.RGB(191, 191, 0), got[2])
	assert.Equal(t, 3, d.Len())
}
