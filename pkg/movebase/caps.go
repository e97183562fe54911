package movebase

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
	"github.com/robotalks/movebase.go/pkg/tf"
)

// QueryBaseCaps asks the base controller for its capabilities.
func QueryBaseCaps(ctx context.Context, conn l1.ControllerConn) (*msgs.BaseCaps, error) {
	reply, err := l1.Await(ctx, conn.DoCommand(&msgs.BaseCapsQuery{}))
	if err != nil {
		return nil, err
	}
	caps, ok := reply.(*msgs.BaseCaps)
	if !ok {
		return nil, errors.Errorf("unexpected reply %T", reply)
	}
	return caps, nil
}

// CheckBaseCaps lists the settings the base can't honor.
func (c *Config) CheckBaseCaps(caps *msgs.BaseCaps) []string {
	var issues []string
	if c.Holonomic && !caps.Holonomic {
		issues = append(issues, "holonomic is set but the base can't move sideways")
	}
	if limit := caps.LinearSpeedMax; limit > 0 && c.MaxSpeed > limit {
		issues = append(issues, fmt.Sprintf("max-speed %v exceeds the base limit %v", c.MaxSpeed, limit))
	}
	if limit := caps.AngularSpeedMax; limit > 0 && c.RotateSpeed > limit {
		issues = append(issues, fmt.Sprintf("rotate-speed %v exceeds the base limit %v", c.RotateSpeed, limit))
	}
	if frame := tf.NormalizeFrame(caps.FootprintFrame); frame != "" && frame != tf.NormalizeFrame(c.FootprintFrame) {
		issues = append(issues, fmt.Sprintf("footprint-frame %q differs from the base %q", c.FootprintFrame, frame))
	}
	return issues
}

// CapsChecker logs the mismatches between Config and the base once the
// connection is up.
type CapsChecker struct {
	Config  *Config
	Conn    l1.ControllerConn
	Timeout time.Duration
}

// Run implements Runnable. Failures are logged, never returned.
func (c *CapsChecker) Run(ctx context.Context) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	caps, err := QueryBaseCaps(qctx, c.Conn)
	if err != nil {
		glog.Warningf("query base caps: %v", err)
		return nil
	}
	glog.Infof("base caps: %s", caps)
	for _, issue := range c.Config.CheckBaseCaps(caps) {
		glog.Warning(issue)
	}
	return nil
}
