package mqtt

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/movebase.go/pkg/l1"
)

// PacketBacklog is the number of received packets buffered for ReadPacket.
const PacketBacklog = 16

// ReadWriter carries packets over a pair of topics: packets are read from
// SubTopic and written to PubTopic. It must be run as a Runnable to
// receive packets.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packets chan []byte
	done    chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:   q,
		packets: make(chan []byte, PacketBacklog),
		done:    make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector is the L2 side: TYPE/ID/msg is read and TYPE/ID/cmd written.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/msg", ref.Name()+"/cmd")
}

// ForController is the L1 side: TYPE/ID/cmd is read and TYPE/ID/msg written.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/cmd", ref.Name()+"/msg")
}

// ReadPacket implements PacketReader. It returns io.EOF once Run exits.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packets:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable, subscribing SubTopic until ctx is done.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.received))
	<-ctx.Done()
	close(p.done)
	sub.Close()
	return ctx.Err()
}

// received never blocks the MQTT client, packets are dropped when the
// backlog is full.
func (p *ReadWriter) received(topic string, payload []byte) {
	select {
	case p.packets <- payload:
	case <-p.done:
	default:
		glog.Warningf("drop packet from %q: backlog full", topic)
	}
}
