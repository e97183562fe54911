// Package stream frames packets over byte streams, e.g. TCP or serial.
package stream

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// DefaultMaxPacketSize bounds the packets accepted by ReadPacket.
// A full LaserScan of 1440 readings is about 12KB.
const DefaultMaxPacketSize = 1 << 20

// ErrPacketTooLarge is returned for packets exceeding MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements PacketReadWriter. Each packet is prefixed by its
// length in 4 bytes, little-endian.
type ReadWriter struct {
	Stream        io.ReadWriter
	MaxPacketSize uint32

	header [4]byte
}

// New creates a ReadWriter over a stream.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{Stream: s, MaxPacketSize: DefaultMaxPacketSize}
}

// ReadPacket implements PacketReader. It's not safe for concurrent use.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	if _, err := io.ReadFull(p.Stream, p.header[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(p.header[:])
	if p.MaxPacketSize > 0 && size > p.MaxPacketSize {
		return nil, errors.Wrapf(ErrPacketTooLarge, "%d bytes", size)
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.Stream, pkt); err != nil {
		return nil, errors.Wrap(err, "read packet")
	}
	return pkt, nil
}

// WritePacket implements PacketWriter. The length prefix and the packet
// are written at once so concurrent writers serialized by the caller
// never interleave.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if p.MaxPacketSize > 0 && uint32(len(pkt)) > p.MaxPacketSize {
		return errors.Wrapf(ErrPacketTooLarge, "%d bytes", len(pkt))
	}
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Stream.Write(buf)
	return err
}

// Close closes the underlying stream if it's closable.
func (p *ReadWriter) Close() error {
	if c, ok := p.Stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
