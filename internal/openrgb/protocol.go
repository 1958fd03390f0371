// Package openrgb speaks the OpenRGB SDK protocol: enough of it to enumerate
// controllers, switch them to direct control and stream LED colors.
package openrgb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Packet IDs.
const (
	RequestControllerCount uint32 = 0
	RequestControllerData  uint32 = 1
	RequestProtocolVersion uint32 = 40
	SetClientName          uint32 = 50
	DeviceListUpdated      uint32 = 100
	UpdateLEDs             uint32 = 1050
	SetCustomMode          uint32 = 1100
)

const (
	// ClientProtocol is the newest protocol revision this client understands.
	ClientProtocol uint32 = 3

	HeaderSize    = 16
	MaxPacketSize = 16 << 20

	DefaultPort = 6742
	noMatrixLED = 0xFFFFFFFF
)

var magic = [4]byte{'O', 'R', 'G', 'B'}

var (
	ErrBadMagic      = errors.New("bad packet magic")
	ErrShortPacket   = errors.New("packet truncated")
	ErrPacketTooBig  = errors.New("packet too large")
	ErrNotConnected  = errors.New("not connected to openrgb server")
	ErrUnknownDevice = errors.New("unknown controller")
)

// Header precedes every packet in both directions. All integers are little endian.
type Header struct {
	Device uint32
	ID     uint32
	Size   uint32
}

func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	copy(b, magic[:])
	binary.LittleEndian.PutUint32(b[4:], h.Device)
	binary.LittleEndian.PutUint32(b[8:], h.ID)
	binary.LittleEndian.PutUint32(b[12:], h.Size)
	return b, nil
}

func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return ErrShortPacket
	}
	if [4]byte(b[:4]) != magic {
		return fmt.Errorf("%w: %q", ErrBadMagic, b[:4])
	}
	h.Device = binary.LittleEndian.Uint32(b[4:])
	h.ID = binary.LittleEndian.Uint32(b[8:])
	h.Size = binary.LittleEndian.Uint32(b[12:])
	return nil
}

// WritePacket writes header and payload in a single Write.
func WritePacket(w io.Writer, dev, id uint32, payload []byte) error {
	h, _ := Header{Device: dev, ID: id, Size: uint32(len(payload))}.MarshalBinary()
	if _, err := w.Write(append(h, payload...)); err != nil {
		return fmt.Errorf("write packet %d: %w", id, err)
	}
	return nil
}

// ReadPacket reads one packet.
func ReadPacket(r io.Reader) (Header, []byte, error) {
	var hb [HeaderSize]byte
	var h Header
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return h, nil, err
	}
	if err := h.UnmarshalBinary(hb[:]); err != nil {
		return h, nil, err
	}
	if h.Size > MaxPacketSize {
		return h, nil, fmt.Errorf("%w: %d", ErrPacketTooBig, h.Size)
	}
	payload := make([]byte, h.Size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return h, nil, ErrShortPacket
		}
		return h, nil, err
	}
	return h, payload, nil
}
