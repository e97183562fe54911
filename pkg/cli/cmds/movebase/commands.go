package movebase

import (
	"math"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/cli/sh"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// DefaultFrame is the goal frame when not specified.
const DefaultFrame = "odom"

// ParseGoal parses X Y [YAW(degrees) [FRAME]].
func ParseGoal(args []string) (*msgs.MoveBaseGoal, error) {
	if len(args) < 2 {
		return nil, errors.New("X and Y required")
	}
	var pose tf.Transform
	var err error
	if pose.X, err = strconv.ParseFloat(args[0], 64); err != nil {
		return nil, errors.Wrap(err, "invalid X")
	}
	if pose.Y, err = strconv.ParseFloat(args[1], 64); err != nil {
		return nil, errors.Wrap(err, "invalid Y")
	}
	if len(args) > 2 {
		deg, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid YAW")
		}
		pose.Yaw = tf.NormalizeAngle(deg * math.Pi / 180)
	}
	frame := DefaultFrame
	if len(args) > 3 {
		frame = args[3]
	}
	return &msgs.MoveBaseGoal{
		TargetPose: &msgs.PoseStamped{
			Header: &msgs.Header{FrameId: frame},
			Pose:   pose.ToPose(),
		},
	}, nil
}

var (
	// GoalCmd exposes MoveBaseGoal command.
	GoalCmd = ishell.Cmd{
		Name:    "movebase.goal",
		Aliases: []string{"goal"},
		Help:    "X(m) Y(m) [YAW(degrees) [FRAME]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseGoal(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// CancelCmd exposes MoveBaseCancel command.
	CancelCmd = ishell.Cmd{
		Name:    "movebase.cancel",
		Aliases: []string{"cancel"},
		Help:    "[GOAL_ID]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var msg msgs.MoveBaseCancel
			if len(c.Args) > 0 {
				msg.GoalId = c.Args[0]
			}
			sh.DoCommand(c, &msg)
		}),
	}

	// StatusCmd exposes MoveBaseStatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "movebase.status",
		Aliases: []string{"status"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.MoveBaseStatusQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&GoalCmd,
		&CancelCmd,
		&StatusCmd,
	)
}
