// Package nav simulates the kinematics of a mobile base.
package nav

import (
	"math"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/sim"
	"github.com/robotalks/movebase.go/pkg/sim/physics"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// Engine implements physics.Base
type Engine struct {
	Object sim.Placeable2D
	Caps   msgs.BaseCaps
	// CommandTimeout stops the base when no Twist is received in time,
	// 0 disables it.
	CommandTimeout time.Duration

	state       *motionState
	lastCommand time.Time
}

// New creates the engine.
func New(obj sim.Placeable2D) *Engine {
	return &Engine{Object: obj}
}

// CapsQuery executes BaseCapsQuery command.
func (e *Engine) CapsQuery(ctx physics.Context, msg *msgs.BaseCapsQuery) *msgs.BaseCaps {
	caps := e.Caps
	return &caps
}

// Move executes Twist command.
func (e *Engine) Move(ctx physics.Context, msg *msgs.Twist) {
	vx, vy, wz := msg.LinearX, msg.LinearY, msg.AngularZ
	if !e.Caps.Holonomic {
		vy = 0
	}
	if limit := e.Caps.LinearSpeedMax; limit > 0 {
		if speed := math.Hypot(vx, vy); speed > limit {
			vx, vy = vx*limit/speed, vy*limit/speed
		}
	}
	if limit := e.Caps.AngularSpeedMax; limit > 0 {
		wz = math.Max(-limit, math.Min(limit, wz))
	}
	now := ctx.Time()
	e.state = newMotionState(e.estimatePose(now), now, vx, vy, wz)
	e.lastCommand = now
}

// Moving determines if the base is in motion.
func (e *Engine) Moving() bool {
	return e.state != nil
}

// AddToLoop implements LoopAdder.
func (e *Engine) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, fx.ControlFunc(e.HandleCommand))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(e.Execute))
}

// HandleCommand is a controller processing commands.
func (e *Engine) HandleCommand(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg); ok {
			switch m := cmdMsg.Command.Msg().(type) {
			case *msgs.BaseCapsQuery:
				mctx.MessageTaken()
				cmdMsg.Command.Done(e.CapsQuery(cc, m))
			case *msgs.Twist:
				mctx.MessageTaken()
				e.Move(cc, m)
				cmdMsg.Command.Done(msgs.NewCommandOK())
			}
		}
	}))
	return nil
}

// Execute is a controller for acuation.
func (e *Engine) Execute(ctx fx.ControlContext) error {
	e.Step(ctx)
	return nil
}

// Step moves the object to the pose at current time.
func (e *Engine) Step(ctx physics.Context) {
	if e.state == nil {
		return
	}
	now := ctx.Time()
	pose := e.estimatePose(now)
	if e.CommandTimeout > 0 && now.Sub(e.lastCommand) >= e.CommandTimeout {
		glog.V(2).Infof("no command in %s, stop", e.CommandTimeout)
		e.state = nil
	}
	e.Object.SetPose2D(pose)
}

func (e *Engine) estimatePose(now time.Time) tf.Transform {
	if s := e.state; s != nil {
		return e.Object.SetPose2D(s.estimate(now))
	}
	return e.Object.Pose2D()
}
