package framework

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

type otherMsg struct{}

func (m *otherMsg) NewMessage() Message { return &otherMsg{} }

func runLoop(t *testing.T, l *Loop) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestLoopPriorityOrder(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Millisecond
	orderCh := make(chan []int, 1)
	var order []int
	record := func(lv int) Controller {
		return ControlFunc(func(cc ControlContext) error {
			assert.Equal(t, lv, cc.PriorityLevel())
			order = append(order, lv)
			if lv == PrLvIdle {
				select {
				case orderCh <- order:
				default:
				}
				order = nil
			}
			return nil
		})
	}
	l.AddController(PrLvIdle, record(PrLvIdle))
	l.AddController(PrLvControl, record(PrLvControl))
	l.AddController(PrLvSense, record(PrLvSense))
	runLoop(t, l)
	select {
	case got := <-orderCh:
		assert.Equal(t, []int{PrLvSense, PrLvControl, PrLvIdle}, got)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "loop not running")
	}
}

func TestLoopMessages(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	received := make(chan int, 4)
	leftover := make(chan int, 4)
	l.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if m, ok := mctx.CurrentMessage().(*testMsg); ok {
				mctx.MessageTaken()
				received <- m.val
			}
		}))
		return nil
	}))
	l.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			mctx.MessageTaken()
			if _, ok := mctx.CurrentMessage().(*otherMsg); ok {
				leftover <- 0
			} else {
				leftover <- 1
			}
		}))
		return nil
	}))
	runLoop(t, l)
	l.PostMessage(&testMsg{val: 1})
	l.PostMessage(&otherMsg{})
	l.PostMessage(&testMsg{val: 2})
	l.TriggerNext()

	for _, expected := range []int{1, 2} {
		select {
		case val := <-received:
			assert.Equal(t, expected, val)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "message not received")
		}
	}
	select {
	case val := <-leftover:
		assert.Equal(t, 0, val)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "leftover message not received")
	}
}

func TestLoopWithRate(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewLoop().Interval)
	assert.Equal(t, 20*time.Millisecond, NewLoop().WithRate(50).Interval)
	assert.Equal(t, DefaultInterval, NewLoop().WithRate(0).Interval)
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errA := errors.New("a")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		RunFunc(func(context.Context) error { return context.Canceled }),
		NamedRun("ok", RunFunc(func(context.Context) error { return nil })),
	)
	err := r.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, "a", err.Error())
}

func TestRunnerStopOnError(t *testing.T) {
	errA := errors.New("a")
	r := NewRunner()
	r.StopOnError = true
	r.Go(
		RunFunc(func(context.Context) error { return errA }),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	assert.ErrorIs(t, r.Wait(), errA)
}

func TestLoopStopOnError(t *testing.T) {
	errA := errors.New("a")
	l := NewLoop()
	l.StopOnError = true
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		LoopCtlFrom(ctx).TriggerNext()
		return errA
	}))
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Run(context.Background())
	}()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, errA)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "loop not stopped")
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	assert.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("x"))
	assert.Equal(t, "x", errs.Aggregate().Error())
	errs.Add(nil, context.Canceled)
	assert.Equal(t, "2 errors; x; context canceled", errs.Aggregate().Error())
	assert.ErrorIs(t, errs.Aggregate(), context.Canceled)
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	var canceled bool
	go cancel()
	err := RunWithContextCancel(ctx, func() {
		canceled = true
		close(stop)
	}, func() error {
		<-stop
		return nil
	})
	assert.Equal(t, context.Canceled, err)
	assert.True(t, canceled)
}

type recordingProcessor struct {
	seen []int
	stop int
	take bool
}

func (p *recordingProcessor) ProcessMessage(mctx MessageProcessingContext) {
	m := mctx.CurrentMessage().(*testMsg)
	p.seen = append(p.seen, m.val)
	if p.take {
		mctx.MessageTaken()
	}
	if m.val == p.stop {
		mctx.StopProcessing()
	}
}

func TestProcessMessagesStop(t *testing.T) {
	iter := &iteration{messages: []Message{&testMsg{val: 1}, &testMsg{val: 2}, &testMsg{val: 3}}}
	proc := &recordingProcessor{stop: 2, take: true}
	iter.ProcessMessages(proc)
	assert.Equal(t, []int{1, 2}, proc.seen)

	rest := &recordingProcessor{}
	iter.ProcessMessages(rest)
	assert.Equal(t, []int{3}, rest.seen)
}

func TestProcessMessagesAppend(t *testing.T) {
	iter := &iteration{messages: []Message{&testMsg{val: 1}, &testMsg{val: 2}}}
	iter.ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
		if mctx.CurrentMessage().(*testMsg).val == 1 {
			mctx.AddMessages(&testMsg{val: 3})
		}
	}))
	proc := &recordingProcessor{}
	iter.ProcessMessages(proc)
	assert.Equal(t, []int{1, 2, 3}, proc.seen)
}

func TestTakeMessages(t *testing.T) {
	iter := &iteration{messages: []Message{&testMsg{val: 1}, &otherMsg{}, &testMsg{val: 2}}}
	var vals []int
	TakeMessages(iter, func(m *testMsg) {
		vals = append(vals, m.val)
	})
	assert.Equal(t, []int{1, 2}, vals)
	require.Len(t, iter.messages, 1)
	assert.IsType(t, &otherMsg{}, iter.messages[0])
}
