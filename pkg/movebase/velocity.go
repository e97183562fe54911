package movebase

import (
	"fmt"
	"math"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// VelocityCommand is the velocity sent to the base.
type VelocityCommand struct {
	LinearX  float64
	LinearY  float64
	AngularZ float64
}

// IsZero determines if the command stops the base.
func (c VelocityCommand) IsZero() bool {
	return c.LinearX == 0 && c.LinearY == 0 && c.AngularZ == 0
}

// Twist converts to the Twist message.
func (c VelocityCommand) Twist() *msgs.Twist {
	return &msgs.Twist{LinearX: c.LinearX, LinearY: c.LinearY, AngularZ: c.AngularZ}
}

func (c VelocityCommand) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", c.LinearX, c.LinearY, c.AngularZ)
}

// BodyTarget is the goal pose expressed in the footprint frame.
type BodyTarget struct {
	X   float64
	Y   float64
	Yaw float64
}

// Distance to the goal position.
func (t BodyTarget) Distance() float64 {
	return math.Hypot(t.X, t.Y)
}

// Bearing of the goal position, 0 is straight ahead.
func (t BodyTarget) Bearing() float64 {
	return math.Atan2(t.Y, t.X)
}

// Action is the branch chosen by Synthesize.
type Action int

// Actions.
const (
	ActionArrived Action = iota
	ActionStrafe
	ActionDrive
	ActionRotate
)

func (a Action) String() string {
	switch a {
	case ActionArrived:
		return "arrived"
	case ActionStrafe:
		return "strafe"
	case ActionDrive:
		return "drive"
	case ActionRotate:
		return "rotate"
	}
	return "unknown"
}

// Synthesize computes the velocity command towards target, throttled by
// speedMultiplier. The translation speed never drops below MinSpeed.
func Synthesize(conf *Config, target BodyTarget, speedMultiplier float64) (VelocityCommand, Action) {
	dist := target.Distance()
	speed := math.Max(conf.MaxSpeed*speedMultiplier, conf.MinSpeed)
	switch {
	case conf.Holonomic && dist > conf.GoalThreshold:
		return VelocityCommand{
			LinearX: target.X / dist * speed,
			LinearY: target.Y / dist * speed,
		}, ActionStrafe
	case dist > conf.GoalThreshold:
		return VelocityCommand{
			LinearX:  speed,
			AngularZ: target.Bearing() * conf.AngularSpeed,
		}, ActionDrive
	case math.Abs(target.Yaw) > conf.YawGoalTolerance:
		cmd := VelocityCommand{AngularZ: conf.RotateSpeed}
		if target.Yaw <= 0 {
			cmd.AngularZ = -conf.RotateSpeed
		}
		return cmd, ActionRotate
	}
	return VelocityCommand{}, ActionArrived
}
