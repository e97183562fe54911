package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is a packet transport, e.g. a framed stream, a
// websocket or an MQTT topic pair.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

var (
	errNotCommand = errors.New("message is not a command")
	errNotEvent   = errors.New("message is not an event")
)

// Pipe exchanges Typed messages over a PacketReadWriter.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock  sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command, or a command reply with the sequence of
// the command.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		return errors.Wrapf(errNotCommand, "%T", msg)
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return errors.Wrapf(errNotEvent, "%T", msg)
	}
	return p.SendTyped(typed)
}

// SendTyped encodes and writes a Typed message. Writers are serialized.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable. It reads packets until the transport fails or
// ctx is done, which closes the transport.
func (p *Pipe) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { p.Close() })
	defer stop()
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := p.dispatch(ctx, pkt); err != nil {
			return err
		}
	}
}

func (p *Pipe) dispatch(ctx context.Context, pkt []byte) error {
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		return errors.Wrap(err, "decode packet")
	}
	msg, err := typed.Decode()
	if err != nil {
		glog.V(2).Infof("decode message %x: %v", typed.TypeId, err)
		// Unknown commands get a CommandErr so the caller doesn't wait for
		// expiration. Other unknown messages are dropped.
		if typed.IsCommand() && !typed.IsReply() {
			return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
		}
		return nil
	}
	if p.Handler == nil {
		return nil
	}
	return p.Handler.HandleTypedMsg(ctx, msg, typed)
}

// Close closes the transport once if it's closable.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		if closer, ok := p.ReadWriter.(io.Closer); ok {
			p.closeErr = closer.Close()
		}
	})
	return p.closeErr
}

// AddToLoop implements LoopAdder. A transport needing its own goroutine,
// e.g. MQTT subscription, is added as well.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}
