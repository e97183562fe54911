package comm

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// ErrAlreadyReplied is returned when a command is replied more than once.
var ErrAlreadyReplied = errors.New("command already replied")

// Registrar serves an L1 controller over a Pipe. Received commands and
// events are posted to the loop as messages.
type Registrar struct {
	pipe Pipe
}

// Init initializes the Registrar with defaults.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.handleTypedMsg)
}

func (r *Registrar) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	switch {
	case typed.IsReply():
		glog.V(4).Infof("drop unexpected reply %T", msg)
		return nil
	case typed.IsCommand():
		msg = &l1.CommandMsg{Command: &receivedCommand{seq: typed.Sequence, msg: msg, pipe: &r.pipe}}
	}
	loopCtl := fx.LoopCtlFrom(ctx)
	loopCtl.PostMessage(msg)
	loopCtl.TriggerNext()
	return nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// Run serves a peer without adding the Registrar to a loop. ctx must
// carry the loop control, e.g. the context of a Runnable in the loop.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

type receivedCommand struct {
	seq     uint32
	msg     fx.Message
	pipe    *Pipe
	replied atomic.Bool
}

func (c *receivedCommand) Msg() fx.Message {
	return c.msg
}

func (c *receivedCommand) Done(reply fx.Message) error {
	if c.replied.Swap(true) {
		return ErrAlreadyReplied
	}
	return c.pipe.SendCommandMsg(reply, c.seq)
}

// RegistrarMux publishes an L1 controller through multiple Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// SendEvent implements Registrar. An event is sent to every registrar
// even if some fail.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// UnsupportedCommands replies commands left by all controllers with
// ErrUnsupportedCommand, so callers fail fast instead of expiring.
type UnsupportedCommands struct{}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	fx.TakeMessages(cc.Messages(), func(cmd *l1.CommandMsg) {
		glog.V(2).Infof("unsupported command %T", cmd.Command.Msg())
		cmd.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
	})
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
