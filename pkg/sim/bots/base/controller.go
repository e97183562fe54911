// Package base simulates a mobile base carrying a planar range scanner.
package base

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	env "github.com/robotalks/movebase.go/pkg/l1/env/controller"
	"github.com/robotalks/movebase.go/pkg/sim"
	"github.com/robotalks/movebase.go/pkg/sim/lidar"
	"github.com/robotalks/movebase.go/pkg/sim/physics/nav"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// StaticInterval is the interval republishing static transforms.
const StaticInterval = time.Second

// Controller is the L1 controller.
type Controller struct {
	ID     string
	Events l1.Registrar

	R          float64
	Pose       tf.Transform
	Nav        *nav.Engine
	Scanner    *lidar.Scanner
	LaserMount tf.Transform

	OdomFrame      string
	FootprintFrame string
	LaserFrame     string

	sim.ObjectsChangeCaster

	changes          int
	lastStatic       time.Time
	obstaclesVisible bool
}

// NewController creates the controller.
func NewController(e *env.Env) *Controller {
	c := &Controller{
		ID:      e.Config.Info.Ref.Name(),
		Events:  e.Registrar,
		changes: 1, // send initial object change.
	}
	c.Nav = nav.New(c)
	return c
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.ID
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.Add(c.Nav)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyChanges))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.Publish))
}

// Radius implements sim.Round.
func (c *Controller) Radius() float64 {
	return c.R
}

// Pose2D implements Placeable2D.
func (c *Controller) Pose2D() tf.Transform {
	return c.Pose
}

// SetPose2D implements Placeable2D.
func (c *Controller) SetPose2D(pose tf.Transform) tf.Transform {
	if pose != c.Pose {
		c.Pose = pose
		c.changes = 1
	}
	return c.Pose
}

// LaserScan sweeps the obstacles from the current pose.
func (c *Controller) LaserScan(now time.Time) *msgs.LaserScan {
	s := c.Scanner
	return &msgs.LaserScan{
		Header:         &msgs.Header{FrameId: c.LaserFrame, Stamp: tf.NanosFromStamp(now)},
		AngleMin:       s.AngleMin,
		AngleMax:       s.AngleMax,
		AngleIncrement: s.AngleIncrement,
		RangeMin:       s.RangeMin,
		RangeMax:       s.RangeMax,
		Ranges:         s.Scan(c.Pose.Compose(c.LaserMount)),
	}
}

// Publish is a controller publishing odometry, static transforms and scans.
func (c *Controller) Publish(cc fx.ControlContext) error {
	now := cc.Time()
	events := []fx.Message{
		tf.Stamped{Parent: c.OdomFrame, Child: c.FootprintFrame, Stamp: now, Transform: c.Pose}.ToMsg(false),
	}
	if now.Sub(c.lastStatic) >= StaticInterval {
		c.lastStatic = now
		events = append(events, tf.Stamped{Parent: c.FootprintFrame, Child: c.LaserFrame, Stamp: now, Transform: c.LaserMount}.ToMsg(true))
	}
	if c.Scanner != nil {
		events = append(events, c.LaserScan(now))
	}
	for _, ev := range events {
		if err := c.Events.SendEvent(cc.Context(), ev); err != nil {
			glog.Warningf("send event %T: %v", ev, err)
		}
	}
	return nil
}

// NotifyChanges notifies object changes.
func (c *Controller) NotifyChanges(cc fx.ControlContext) error {
	changes := c.changes
	c.changes = 0
	if changes > 0 {
		objs := []sim.Object{c}
		if !c.obstaclesVisible && c.Scanner != nil {
			// obstacles never move.
			for _, o := range c.Scanner.Obstacles {
				objs = append(objs, o)
			}
			c.obstaclesVisible = true
		}
		c.ObjectsChanged(cc, objs...)
	}
	return nil
}
