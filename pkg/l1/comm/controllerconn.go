package comm

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ErrConnClosed fails the commands pending when the connection closes.
var ErrConnClosed = errors.New("connection closed")

// ControllerConn implements l1.ControllerConn over a Pipe. Replies are
// matched to commands by sequence number, and commands without a reply
// within Expiration fail with context.DeadlineExceeded.
type ControllerConn struct {
	Expiration time.Duration
	// Clock measures command expiration, nil means the wall clock.
	Clock clock.Clock

	pipe Pipe

	lock sync.Mutex
	seq  uint32
	// pending is ordered by expiration as Expiration is the same for all.
	pending []*commandFuture
	bySeq   map[uint32]*commandFuture
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.bySeq = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq = 1
	}
	f := newCommandFuture(c.seq, c.clock().Now().Add(c.Expiration))
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		glog.V(2).Infof("send command %T#%d error: %v", msg, f.seq, err)
		f.settle(l1.Result{Err: err})
		return f
	}
	c.pending = append(c.pending, f)
	c.bySeq[f.seq] = f
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.bySeq)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

// Close closes the transport and fails pending commands.
func (c *ControllerConn) Close() error {
	err := c.pipe.Close()
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, f := range c.pending {
		if c.bySeq[f.seq] == f {
			f.settle(l1.Result{Err: ErrConnClosed})
		}
	}
	c.pending, c.bySeq = nil, make(map[uint32]*commandFuture)
	return err
}

func (c *ControllerConn) clock() clock.Clock {
	if c.Clock == nil {
		return clock.New()
	}
	return c.Clock
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	f := c.bySeq[typed.Sequence]
	delete(c.bySeq, typed.Sequence)
	c.lock.Unlock()
	if f == nil {
		glog.V(4).Infof("drop reply %T#%d: no pending command", msg, typed.Sequence)
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.settle(result)
	return nil
}

// purgeExpired fails expired commands. Replied commands are only removed
// from bySeq, and are dropped from pending here.
func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := c.clock().Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	n := 0
	for _, f := range c.pending {
		if c.bySeq[f.seq] != f {
			n++
			continue
		}
		if f.expireAt.After(now) {
			break
		}
		delete(c.bySeq, f.seq)
		f.settle(l1.Result{Err: context.DeadlineExceeded})
		n++
	}
	c.pending = c.pending[n:]
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
}

func newCommandFuture(seq uint32, expireAt time.Time) *commandFuture {
	return &commandFuture{seq: seq, expireAt: expireAt, result: make(chan l1.Result, 1)}
}

// settle must be called at most once.
func (f *commandFuture) settle(res l1.Result) {
	f.result <- res
	close(f.result)
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
