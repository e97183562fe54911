package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketFraming(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte("hello")))
	require.NoError(t, rw.WritePacket(nil))
	assert.Equal(t, []byte{5, 0, 0, 0}, buf.Bytes()[:4])

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	assert.Empty(t, pkt)
	_, err = rw.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestPacketTooLarge(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	rw.MaxPacketSize = 4
	assert.ErrorIs(t, rw.WritePacket([]byte("hello")), ErrPacketTooLarge)
	assert.Zero(t, buf.Len())

	buf.Write([]byte{5, 0, 0, 0})
	buf.WriteString("hello")
	_, err := rw.ReadPacket()
	assert.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestTruncatedPacket(t *testing.T) {
	rw := New(bytes.NewBuffer([]byte{5, 0, 0, 0, 'h', 'e'}))
	_, err := rw.ReadPacket()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
