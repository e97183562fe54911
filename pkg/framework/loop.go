package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
)

// DefaultInterval is the default iteration interval (10 Hz).
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers periodically in the order of priority levels.
// Messages posted between two iterations are visible to all controllers
// of the next iteration, and dropped afterwards unless re-added.
type Loop struct {
	Interval time.Duration
	// Clock drives the iteration ticker, nil means the wall clock.
	Clock clock.Clock
	// StopOnError stops the loop once a Runnable fails.
	StopOnError bool

	levels  [PriorityLevels]level
	runners []Runnable

	lock     sync.Mutex
	inbox    []Message
	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type level struct {
	lock        sync.Mutex
	preHooks    []Controller
	controllers []Controller
	postHooks   []Controller
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets LoopControl from context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// CtlCtxFrom gets ControlContext from the context of an iteration.
func CtlCtxFrom(ctx context.Context) ControlContext {
	return ctx.Value(loopCtxKey).(ControlContext)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// WithRate sets the interval from a frequency in Hz.
func (l *Loop) WithRate(hz float64) *Loop {
	if hz > 0 {
		l.Interval = time.Duration(float64(time.Second) / hz)
	}
	return l
}

func (l *Loop) clock() clock.Clock {
	if l.Clock == nil {
		return clock.New()
	}
	return l.Clock
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// which are also Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lv := &l.levels[priorityLevel]
	lv.controllers = append(lv.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.StopOnError = l.StopOnError
	runner.Go(l.runners...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clk := l.clock()
	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-runner.Context.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		start := clk.Now()
		l.runIteration(ctx, start)
		if elapsed := clk.Since(start); elapsed > interval {
			glog.V(2).Infof("iteration took %s, longer than %s", elapsed, interval)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop until
// interrupted.
func (l *Loop) RunOrFail() {
	if err := NewRunner().HandleSignals().Go(NamedRun("loop", l)).Wait(); err != nil {
		log.Fatalln(err)
	}
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.preHooks = append(lv.preHooks, hooks...)
	lv.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.postHooks = append(lv.postHooks, hooks...)
	lv.lock.Unlock()
}

// PostMessage implements LoopControl. It's safe to call from any goroutine.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.inbox = append(l.inbox, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) runIteration(ctx context.Context, now time.Time) {
	l.lock.Lock()
	msgs := l.inbox
	l.inbox = nil
	l.lock.Unlock()

	iter := &iteration{Loop: l, time: now, messages: msgs}
	iter.ctx = context.WithValue(ctx, loopCtxKey, ControlContext(iter))
	for lv := range l.levels {
		iter.priorityLevel = lv
		l.levels[lv].run(iter)
	}
}

func (lv *level) run(iter *iteration) {
	lv.lock.Lock()
	hooks := lv.preHooks
	lv.preHooks = nil
	lv.lock.Unlock()
	runControllers(iter, hooks)
	runControllers(iter, lv.controllers)
	lv.lock.Lock()
	hooks, lv.postHooks = lv.postHooks, nil
	lv.lock.Unlock()
	runControllers(iter, hooks)
}

func runControllers(iter *iteration, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(iter); err != nil {
			glog.Errorf("controller error at level %d: %v", iter.priorityLevel, err)
		}
	}
}

// iteration implements ControlContext and MessageStore for a single run
// of all controllers.
type iteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
	messages      []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) PriorityLevel() int       { return t.priorityLevel }
func (t *iteration) Messages() MessageStore   { return t }

func (t *iteration) PostRun(hooks ...Controller) {
	t.PostRunAt(t.priorityLevel, hooks...)
}

// ProcessMessages implements MessageStore. Messages added while processing
// are appended after the remaining ones.
func (t *iteration) ProcessMessages(proc MessageProcessor) {
	pending := t.messages
	t.messages = nil
	remains := make([]Message, 0, len(pending))
	for i, msg := range pending {
		mctx := &messageContext{iter: t, msg: msg}
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains = append(remains, msg)
		}
		if mctx.stop {
			remains = append(remains, pending[i+1:]...)
			break
		}
	}
	t.messages = append(remains, t.messages...)
}

// AddMessages implements MessageAppender.
func (t *iteration) AddMessages(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

type messageContext struct {
	iter  *iteration
	msg   Message
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.iter.AddMessages(msgs...) }
