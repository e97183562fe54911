package comm

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm/stream"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

type capsController struct{}

func (c *capsController) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		if _, ok := cmdMsg.Command.Msg().(*msgs.BaseCapsQuery); ok {
			mctx.MessageTaken()
			cmdMsg.Command.Done(&msgs.BaseCaps{LinearSpeedMax: 0.5, Holonomic: true})
		}
	}))
	return nil
}

func startLoop(t *testing.T, l *fx.Loop, closers ...net.Conn) {
	l.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		for _, c := range closers {
			c.Close()
		}
		wg.Wait()
	})
}

func connect(t *testing.T) (*ControllerConn, *Registrar, chan fx.Message) {
	controllerSide, connSide := net.Pipe()

	reg := &Registrar{}
	reg.Init(stream.New(controllerSide))
	ctlLoop := fx.NewLoop()
	ctlLoop.Add(reg)
	ctlLoop.AddController(fx.PrLvControl, &capsController{})
	ctlLoop.Add(&UnsupportedCommands{})
	startLoop(t, ctlLoop, controllerSide)

	conn := &ControllerConn{}
	conn.Init(stream.New(connSide))
	events := make(chan fx.Message, 4)
	connLoop := fx.NewLoop()
	connLoop.Add(conn)
	connLoop.AddController(fx.PrLvSense, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			mctx.MessageTaken()
			events <- mctx.CurrentMessage()
		}))
		return nil
	}))
	startLoop(t, connLoop, connSide)
	return conn, reg, events
}

func waitResult(t *testing.T, f l1.CommandFuture) l1.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no result")
	}
	return l1.Result{}
}

func TestCommandReply(t *testing.T) {
	conn, _, _ := connect(t)
	res := waitResult(t, conn.DoCommand(&msgs.BaseCapsQuery{}))
	require.NoError(t, res.Err)
	caps, ok := res.Msg.(*msgs.BaseCaps)
	require.True(t, ok)
	assert.Equal(t, 0.5, caps.LinearSpeedMax)
	assert.True(t, caps.Holonomic)
}

func TestUnsupportedCommand(t *testing.T) {
	conn, _, _ := connect(t)
	res := waitResult(t, conn.DoCommand(&msgs.Twist{LinearX: 1}))
	require.Error(t, res.Err)
	var cmdErr *msgs.CommandErr
	require.ErrorAs(t, res.Err, &cmdErr)
	assert.Equal(t, msgs.ErrUnsupportedCommand.Error(), cmdErr.Message)
}

func TestEventDelivery(t *testing.T) {
	_, reg, events := connect(t)
	require.NoError(t, reg.SendEvent(context.Background(), &msgs.LaserScan{Ranges: []float64{1, 2}}))
	select {
	case msg := <-events:
		scan, ok := msg.(*msgs.LaserScan)
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2}, scan.Ranges)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no event")
	}
}

func TestCommandExpiration(t *testing.T) {
	conn := &ControllerConn{}
	conn.Init(&discardWriter{})
	conn.Expiration = time.Millisecond
	l := fx.NewLoop()
	l.AddController(fx.PrLvIdle, fx.ControlFunc(conn.purgeExpired))
	startLoop(t, l)
	res := waitResult(t, conn.DoCommand(&msgs.BaseCapsQuery{}))
	assert.Equal(t, context.DeadlineExceeded, res.Err)
}

type discardWriter struct{}

func (w *discardWriter) ReadPacket() ([]byte, error) { select {} }
func (w *discardWriter) WritePacket([]byte) error   { return nil }

func TestCloseFailsPending(t *testing.T) {
	conn := &ControllerConn{}
	conn.Init(&discardWriter{})
	f := conn.DoCommand(&msgs.BaseCapsQuery{})
	assert.Equal(t, 1, conn.Pending())
	require.NoError(t, conn.Close())
	res := waitResult(t, f)
	assert.ErrorIs(t, res.Err, ErrConnClosed)
	assert.Zero(t, conn.Pending())
}

func TestSendNonEvent(t *testing.T) {
	p := NewPipe(&discardWriter{})
	assert.ErrorIs(t, p.SendEventMsg(&msgs.Twist{}), errNotEvent)
	assert.ErrorIs(t, p.SendCommandMsg(&msgs.LaserScan{}, 1), errNotCommand)
}

func TestCommandRepliedOnce(t *testing.T) {
	cmd := &receivedCommand{seq: 1, msg: &msgs.BaseCapsQuery{}, pipe: NewPipe(&discardWriter{})}
	require.NoError(t, cmd.Done(&msgs.BaseCaps{}))
	assert.ErrorIs(t, cmd.Done(&msgs.BaseCaps{}), ErrAlreadyReplied)
}
