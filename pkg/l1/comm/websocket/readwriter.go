// Package websocket carries L1 packets over websocket binary frames, for
// direct connections without a broker.
package websocket

import "golang.org/x/net/websocket"

// MaxPacketSize bounds the frames accepted by ReadPacket.
const MaxPacketSize = 1 << 20

// ReadWriter implements PacketReadWriter, one packet per message.
type ReadWriter struct {
	Conn *websocket.Conn
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	conn.MaxPayloadBytes = MaxPacketSize
	return &ReadWriter{Conn: conn}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var pkt []byte
	if err := websocket.Message.Receive(p.Conn, &pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.Conn, pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.Conn.Close()
}
