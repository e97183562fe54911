package movebase

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/tf"
)

var (
	// ErrSensorNotReady indicates no scan or sensor offset is available yet.
	ErrSensorNotReady = errors.New("no scan received or sensor offset unknown")
	// ErrGoalTimeout indicates the goal exceeded the configured time budget.
	ErrGoalTimeout = errors.New("goal timed out")
	// ErrBlocked indicates the path towards the goal is blocked.
	ErrBlocked = errors.New("path blocked")
	// ErrPreempted indicates the goal is preempted.
	ErrPreempted = errors.New("preempted")
)

// GoalState is the execution state of a goal.
type GoalState uint32

// Goal states.
const (
	GoalIdle      = GoalState(msgs.GoalStateIdle)
	GoalRunning   = GoalState(msgs.GoalStateRunning)
	GoalSucceeded = GoalState(msgs.GoalStateSucceeded)
	GoalAborted   = GoalState(msgs.GoalStateAborted)
	GoalPreempted = GoalState(msgs.GoalStatePreempted)
)

func (s GoalState) String() string {
	switch s {
	case GoalIdle:
		return "idle"
	case GoalRunning:
		return "running"
	case GoalSucceeded:
		return "succeeded"
	case GoalAborted:
		return "aborted"
	case GoalPreempted:
		return "preempted"
	}
	return "unknown"
}

// IsTerminal determines if no more commands are issued in this state.
func (s GoalState) IsTerminal() bool {
	return s == GoalSucceeded || s == GoalAborted || s == GoalPreempted
}

// Goal is a target pose in a named frame.
type Goal struct {
	ID    string
	Frame string
	Pose  tf.Transform
}

// GoalFromMsg converts a PoseStamped target.
func GoalFromMsg(id string, pose *msgs.PoseStamped) (Goal, error) {
	if pose == nil || pose.Pose == nil {
		return Goal{}, errors.New("target pose required")
	}
	g := Goal{ID: id, Pose: tf.FromPose(pose.Pose)}
	if h := pose.Header; h != nil {
		g.Frame = tf.NormalizeFrame(h.FrameId)
	}
	if g.Frame == "" {
		return Goal{}, errors.New("target pose frame required")
	}
	return g, nil
}

// Result is the terminal outcome of a goal.
type Result struct {
	GoalID   string
	State    GoalState
	Distance float64
	YawError float64
	// Err explains why the goal did not succeed.
	Err error
}

// Status converts to the GoalStatus message.
func (r Result) Status() *msgs.GoalStatus {
	st := &msgs.GoalStatus{
		GoalId:   r.GoalID,
		State:    uint32(r.State),
		Distance: r.Distance,
		YawError: r.YawError,
	}
	if r.Err != nil {
		st.Text = r.Err.Error()
	}
	return st
}

// Feedback is reported after each control tick of a running goal.
type Feedback struct {
	GoalID   string
	Distance float64
	YawError float64
	Action   Action
	Command  VelocityCommand
}

// VelocitySink accepts velocity commands, without acknowledgment.
type VelocitySink interface {
	SendVelocity(context.Context, VelocityCommand) error
}

// VelocitySinkFunc is the func form of VelocitySink.
type VelocitySinkFunc func(context.Context, VelocityCommand) error

// SendVelocity implements VelocitySink.
func (f VelocitySinkFunc) SendVelocity(ctx context.Context, cmd VelocityCommand) error {
	return f(ctx, cmd)
}

// PreemptToken carries a preempt request to a running goal.
type PreemptToken struct {
	once sync.Once
	ch   chan struct{}
}

// NewPreemptToken creates a PreemptToken.
func NewPreemptToken() *PreemptToken {
	return &PreemptToken{ch: make(chan struct{})}
}

// Preempt requests preemption, it can be called multiple times.
func (p *PreemptToken) Preempt() {
	p.once.Do(func() { close(p.ch) })
}

// Requested determines if preemption is requested.
func (p *PreemptToken) Requested() bool {
	select {
	case <-p.ch:
		return true
	default:
		return false
	}
}

// Done is closed when preemption is requested.
func (p *PreemptToken) Done() <-chan struct{} {
	return p.ch
}

// Executor runs the control loop of a single goal.
type Executor struct {
	Config      *Config
	Scans       *ScanHolder
	Transformer Transformer
	Sink        VelocitySink
	Clock       clock.Clock
	// Feedback is invoked after every tick which issued a motion command.
	Feedback func(Feedback)
}

// NewExecutor creates an Executor.
func NewExecutor(conf *Config, scans *ScanHolder, transformer Transformer, sink VelocitySink) *Executor {
	return &Executor{Config: conf, Scans: scans, Transformer: transformer, Sink: sink}
}

func (e *Executor) clock() clock.Clock {
	if e.Clock == nil {
		return clock.New()
	}
	return e.Clock
}

type goalRun struct {
	*Executor
	goal     Goal
	preempt  *PreemptToken
	deadline <-chan time.Time
	result   Result
}

// Execute drives the base towards the goal until it succeeds, aborts or is
// preempted. It always returns a terminal result and issues a zero command
// before returning if any motion was commanded.
func (e *Executor) Execute(ctx context.Context, goal Goal, preempt *PreemptToken) Result {
	if preempt == nil {
		preempt = NewPreemptToken()
	}
	r := &goalRun{Executor: e, goal: goal, preempt: preempt}
	r.result.GoalID = goal.ID

	scan, offsetKnown := e.Scans.LatestScan(), e.Scans.OffsetKnown()
	if scan == nil || !offsetKnown {
		glog.Warningf("goal %s: %v, aborting", goal.ID, ErrSensorNotReady)
		return r.terminate(GoalAborted, ErrSensorNotReady)
	}

	glog.Infof("goal %s: executing, moving to (%f, %f) in %s", goal.ID, goal.Pose.X, goal.Pose.Y, goal.Frame)

	clk := e.clock()
	if e.Config.GoalTimeout > 0 {
		timer := clk.Timer(e.Config.GoalTimeout)
		defer timer.Stop()
		r.deadline = timer.C
	}
	ticker := clk.Ticker(e.Config.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.stop(ctx, GoalAborted, ctx.Err())
		case <-r.deadline:
			return r.stop(ctx, GoalAborted, ErrGoalTimeout)
		case <-ticker.C:
		}
		if state, err := r.tick(ctx); state.IsTerminal() {
			return r.stop(ctx, state, err)
		}
	}
}

// tick runs one control iteration, GoalRunning means the goal continues.
func (r *goalRun) tick(ctx context.Context) (GoalState, error) {
	target, err := r.resolveTarget(ctx)
	if r.preempt.Requested() {
		glog.Infof("goal %s: preempted", r.goal.ID)
		return GoalPreempted, ErrPreempted
	}
	if err != nil {
		return GoalAborted, err
	}

	dist, bearing := target.Distance(), target.Bearing()
	r.result.Distance, r.result.YawError = dist, target.Yaw

	scan := r.Scans.LatestScan()
	offset, _ := r.Scans.Offset()
	ev := Evaluate(scan, offset, bearing, dist, r.Config.BlockageParams())
	if ev.Blocked {
		glog.Warningf("goal %s: blocked! reason: %s", r.goal.ID, ev.Reason)
		if dist <= r.Config.GoalThresholdAcceptable {
			glog.Infof("goal %s: succeeded (blocked, but closer to goal than acceptable goal threshold)", r.goal.ID)
			return GoalSucceeded, nil
		}
		return GoalAborted, errors.Wrapf(ErrBlocked, "%s", ev.Reason)
	}

	if !scan.Covers(bearing, r.Config.RequiredAperture) {
		glog.V(2).Infof("goal %s: driving blind, aperture around %.3f not covered by scan", r.goal.ID, bearing)
	}

	cmd, action := Synthesize(r.Config, target, ev.SpeedMultiplier)
	if action == ActionArrived {
		glog.Infof("goal %s: succeeded", r.goal.ID)
		return GoalSucceeded, nil
	}
	glog.V(4).Infof("goal %s: %s %s dist=%.3f yaw=%.3f m=%.3f", r.goal.ID, action, cmd, dist, target.Yaw, ev.SpeedMultiplier)
	r.send(ctx, cmd)
	if fn := r.Feedback; fn != nil {
		fn(Feedback{GoalID: r.goal.ID, Distance: dist, YawError: target.Yaw, Action: action, Command: cmd})
	}
	return GoalRunning, nil
}

// resolveTarget transforms the goal into the footprint frame, retrying on
// unavailable transforms until success, preemption, timeout or cancellation.
func (r *goalRun) resolveTarget(ctx context.Context) (BodyTarget, error) {
	footprint := r.Config.FootprintFrame
	for {
		tr, err := r.Transformer.LookupTransform(ctx, footprint, r.goal.Frame, time.Time{}, r.Config.TransformTimeout)
		if err == nil {
			pose := tr.Compose(r.goal.Pose)
			return BodyTarget{X: pose.X, Y: pose.Y, Yaw: tf.NormalizeAngle(pose.Yaw)}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return BodyTarget{}, ctxErr
		}
		glog.Warningf("goal %s: transform exception: %v", r.goal.ID, err)
		timer := r.clock().Timer(r.Config.TransformBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return BodyTarget{}, ctx.Err()
		case <-r.deadline:
			timer.Stop()
			return BodyTarget{}, ErrGoalTimeout
		case <-r.preempt.Done():
			timer.Stop()
			return BodyTarget{}, ErrPreempted
		case <-timer.C:
		}
	}
}

func (r *goalRun) send(ctx context.Context, cmd VelocityCommand) {
	if err := r.Sink.SendVelocity(ctx, cmd); err != nil {
		glog.Errorf("goal %s: send velocity %s error: %v", r.goal.ID, cmd, err)
	}
}

// stop issues a zero command and terminates the goal. The zero command is
// sent even when ctx is canceled.
func (r *goalRun) stop(ctx context.Context, state GoalState, err error) Result {
	r.send(context.WithoutCancel(ctx), VelocityCommand{})
	return r.terminate(state, err)
}

func (r *goalRun) terminate(state GoalState, err error) Result {
	r.result.State, r.result.Err = state, err
	if state == GoalAborted {
		glog.Warningf("goal %s: aborted: %v", r.goal.ID, err)
	}
	return r.result
}
