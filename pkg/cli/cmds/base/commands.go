package base

import (
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/cli/sh"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// ParseTwist parses LINEAR_X [ANGULAR_Z [LINEAR_Y]].
func ParseTwist(args []string) (*msgs.Twist, error) {
	if len(args) < 1 {
		return nil, errors.New("LINEAR_X required")
	}
	var vals [3]float64
	names := []string{"LINEAR_X", "ANGULAR_Z", "LINEAR_Y"}
	for n, arg := range args {
		if n >= len(vals) {
			return nil, errors.New("too many arguments")
		}
		val, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", names[n])
		}
		vals[n] = val
	}
	return &msgs.Twist{LinearX: vals[0], AngularZ: vals[1], LinearY: vals[2]}, nil
}

var (
	// BaseCapsQueryCmd exposes BaseCapsQuery command.
	BaseCapsQueryCmd = ishell.Cmd{
		Name:    "base.caps",
		Aliases: []string{"bcaps"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.BaseCapsQuery{})
		}),
	}

	// TwistCmd exposes Twist command.
	TwistCmd = ishell.Cmd{
		Name:    "base.twist",
		Aliases: []string{"bt"},
		Help:    "LINEAR_X(m/s) [ANGULAR_Z(rad/s) [LINEAR_Y(m/s)]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseTwist(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// StopCmd sends a zero Twist.
	StopCmd = ishell.Cmd{
		Name:    "base.stop",
		Aliases: []string{"bs"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.Twist{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&BaseCapsQueryCmd,
		&TwistCmd,
		&StopCmd,
	)
}
